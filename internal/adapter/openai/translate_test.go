package openai

import (
	"reflect"
	"testing"

	"google.golang.org/genai"
)

func TestToContents_TextRoundTrip(t *testing.T) {
	messages := []Message{
		{Role: "user", Content: "What is 2+2?"},
		{Role: "assistant", Content: "4"},
		{Role: "user", Content: "Why?"},
	}

	system, contents := ToContents(messages)
	if system != "" {
		t.Errorf("expected no system instruction, got %q", system)
	}
	if len(contents) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(contents))
	}

	wantRoles := []string{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	wantTexts := []string{"What is 2+2?", "4", "Why?"}
	for i, c := range contents {
		if c.Role != wantRoles[i] {
			t.Errorf("turn %d: expected role %s, got %s", i, wantRoles[i], c.Role)
		}
		if len(c.Parts) != 1 || c.Parts[0].Text != wantTexts[i] {
			t.Errorf("turn %d: expected single text part %q, got %+v", i, wantTexts[i], c.Parts)
		}
	}
}

func TestToContents_SystemConcatenation(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "Be helpful."},
		{Role: "system", Content: "Be brief."},
		{Role: "user", Content: "hi"},
	}

	system, contents := ToContents(messages)
	if system != "Be helpful.\n\nBe brief." {
		t.Errorf("expected blank-line joined instruction, got %q", system)
	}
	if len(contents) != 1 {
		t.Errorf("system messages must not become turns, got %d turns", len(contents))
	}
}

func TestToContents_ToolResultCollapsing(t *testing.T) {
	messages := []Message{
		{Role: "assistant", ToolCalls: []ToolCall{
			{ID: "A", Type: "function", Function: FunctionCall{Name: "foo", Arguments: `{"x":1}`}},
		}},
		{Role: "tool", ToolCallID: "A", Content: "x"},
		{Role: "tool", ToolCallID: "B", Content: "y"},
		{Role: "user", Content: "go on"},
	}

	_, contents := ToContents(messages)
	if len(contents) != 3 {
		t.Fatalf("expected assistant + collapsed tool turn + user, got %d turns", len(contents))
	}

	toolTurn := contents[1]
	if toolTurn.Role != genai.RoleUser {
		t.Errorf("tool results must flush as a user turn, got %s", toolTurn.Role)
	}
	if len(toolTurn.Parts) != 2 {
		t.Fatalf("consecutive tool results must collapse into one turn, got %d parts", len(toolTurn.Parts))
	}

	first := toolTurn.Parts[0].FunctionResponse
	if first == nil || first.Name != "foo" {
		t.Errorf("expected first result resolved to foo via the call reference, got %+v", first)
	}
	if first.Response["result"] != "x" {
		t.Errorf("expected result x, got %v", first.Response)
	}

	second := toolTurn.Parts[1].FunctionResponse
	if second == nil || second.Name != fallbackFunctionName {
		t.Errorf("unresolvable tool result must use the fallback name, got %+v", second)
	}
}

func TestToContents_TrailingToolResultsFlush(t *testing.T) {
	messages := []Message{
		{Role: "assistant", ToolCalls: []ToolCall{
			{ID: "A", Type: "function", Function: FunctionCall{Name: "foo"}},
		}},
		{Role: "tool", ToolCallID: "A", Content: "done"},
	}

	_, contents := ToContents(messages)
	if len(contents) != 2 {
		t.Fatalf("trailing tool results must flush at end of list, got %d turns", len(contents))
	}
	last := contents[1]
	if last.Role != genai.RoleUser || len(last.Parts) != 1 || last.Parts[0].FunctionResponse == nil {
		t.Errorf("expected one function-response part in a user turn, got %+v", last)
	}
}

func TestToContents_ExplicitNameWinsOverLookup(t *testing.T) {
	messages := []Message{
		{Role: "assistant", ToolCalls: []ToolCall{
			{ID: "A", Type: "function", Function: FunctionCall{Name: "foo"}},
		}},
		{Role: "tool", ToolCallID: "A", Name: "bar", Content: "r"},
	}

	_, contents := ToContents(messages)
	fr := contents[1].Parts[0].FunctionResponse
	if fr.Name != "bar" {
		t.Errorf("explicit name field must win over the id lookup, got %q", fr.Name)
	}
}

func TestToContents_MalformedArgumentsDegrade(t *testing.T) {
	messages := []Message{
		{Role: "assistant", ToolCalls: []ToolCall{
			{ID: "A", Type: "function", Function: FunctionCall{Name: "foo", Arguments: "{not json"}},
		}},
	}

	_, contents := ToContents(messages)
	fc := contents[0].Parts[0].FunctionCall
	if fc == nil {
		t.Fatal("expected a function-call part")
	}
	want := map[string]any{"raw": "{not json"}
	if !reflect.DeepEqual(fc.Args, want) {
		t.Errorf("expected raw fallback args %v, got %v", want, fc.Args)
	}
}

func TestToContents_AssistantTextAndCalls(t *testing.T) {
	messages := []Message{
		{Role: "assistant", Content: "checking", ToolCalls: []ToolCall{
			{ID: "A", Type: "function", Function: FunctionCall{Name: "foo", Arguments: `{"x":1}`}},
		}},
	}

	_, contents := ToContents(messages)
	parts := contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected text part + call part, got %d", len(parts))
	}
	if parts[0].Text != "checking" {
		t.Errorf("expected leading text part, got %+v", parts[0])
	}
	if parts[1].FunctionCall == nil || parts[1].FunctionCall.Args["x"] != float64(1) {
		t.Errorf("expected parsed call args, got %+v", parts[1].FunctionCall)
	}
}

func TestToContents_EmptyAssistantTextOmitted(t *testing.T) {
	messages := []Message{
		{Role: "assistant", Content: "", ToolCalls: []ToolCall{
			{ID: "A", Type: "function", Function: FunctionCall{Name: "foo"}},
		}},
	}

	_, contents := ToContents(messages)
	if len(contents[0].Parts) != 1 || contents[0].Parts[0].FunctionCall == nil {
		t.Errorf("empty assistant text must not produce a text part, got %+v", contents[0].Parts)
	}
}

func TestExtractText_PartList(t *testing.T) {
	content := []any{
		map[string]any{"type": "text", "text": "hello "},
		map[string]any{"type": "image_url", "image_url": map[string]any{"url": "ignored"}},
		map[string]any{"type": "text", "text": "world"},
	}
	if got := extractText(content); got != "hello world" {
		t.Errorf("expected text parts concatenated and others ignored, got %q", got)
	}
}

func TestToTools_FiltersAndPassesSchemaThrough(t *testing.T) {
	params := map[string]any{
		"type":       "object",
		"properties": map[string]any{"city": map[string]any{"type": "string"}},
	}
	tools := []Tool{
		{Type: "function", Function: ToolFunction{Name: "get_weather", Description: "weather", Parameters: params}},
		{Type: "custom", Function: ToolFunction{Name: "skipped"}},
	}

	out := ToTools(tools)
	if len(out) != 1 || len(out[0].FunctionDeclarations) != 1 {
		t.Fatalf("expected one tool with one declaration, got %+v", out)
	}
	decl := out[0].FunctionDeclarations[0]
	if decl.Name != "get_weather" || decl.Description != "weather" {
		t.Errorf("unexpected declaration %+v", decl)
	}
	if !reflect.DeepEqual(decl.ParametersJsonSchema, params) {
		t.Errorf("parameter schema must pass through verbatim, got %v", decl.ParametersJsonSchema)
	}
}

func TestToTools_EmptyFilterYieldsNoTools(t *testing.T) {
	if out := ToTools([]Tool{{Type: "custom"}}); out != nil {
		t.Errorf("expected no tools for an empty filtered result, got %+v", out)
	}
	if out := ToTools(nil); out != nil {
		t.Errorf("expected no tools for no declarations, got %+v", out)
	}
}
