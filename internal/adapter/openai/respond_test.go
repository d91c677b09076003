package openai

import (
	"strings"
	"testing"

	"google.golang.org/genai"
)

func event(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: parts},
		}},
	}
}

func TestExtract_TextAndCalls(t *testing.T) {
	resp := event(
		&genai.Part{Text: "hello "},
		&genai.Part{FunctionCall: &genai.FunctionCall{Name: "foo", Args: map[string]any{"x": 1}}},
		&genai.Part{Text: "world"},
	)

	text, calls := Extract(resp)
	if text != "hello world" {
		t.Errorf("expected concatenated text, got %q", text)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	call := calls[0]
	if call.Type != "function" || call.Function.Name != "foo" {
		t.Errorf("unexpected call %+v", call)
	}
	if call.Function.Arguments != `{"x":1}` {
		t.Errorf("expected re-serialized args, got %q", call.Function.Arguments)
	}
	if !strings.HasPrefix(call.ID, "call_") || len(call.ID) != len("call_")+12 {
		t.Errorf("expected call_ plus 12 hex characters, got %q", call.ID)
	}
	if call.ID != strings.ToLower(call.ID) {
		t.Errorf("expected lowercase id, got %q", call.ID)
	}
}

func TestExtract_FreshIDsPerExtraction(t *testing.T) {
	seen := map[string]bool{}
	for range 4 {
		_, calls := Extract(event(&genai.Part{FunctionCall: &genai.FunctionCall{Name: "foo"}}))
		if len(calls) != 1 {
			t.Fatal("expected one call")
		}
		if seen[calls[0].ID] {
			t.Fatalf("id %q reused across extractions", calls[0].ID)
		}
		seen[calls[0].ID] = true
	}
}

func TestExtract_AbsentArgsSerializeAsEmptyObject(t *testing.T) {
	_, calls := Extract(event(&genai.Part{FunctionCall: &genai.FunctionCall{Name: "foo"}}))
	if calls[0].Function.Arguments != "{}" {
		t.Errorf("expected {}, got %q", calls[0].Function.Arguments)
	}
}

func TestExtract_EmptyEvent(t *testing.T) {
	text, calls := Extract(nil)
	if text != "" || calls != nil {
		t.Errorf("expected empty extraction from nil event, got %q / %v", text, calls)
	}
	text, calls = Extract(&genai.GenerateContentResponse{})
	if text != "" || calls != nil {
		t.Errorf("expected empty extraction from candidate-less event, got %q / %v", text, calls)
	}
}

func TestBuildCompletion_Stop(t *testing.T) {
	out := BuildCompletion("chatcmpl-1", "gpt-test", "hello", nil)
	if out.Object != "chat.completion" {
		t.Errorf("unexpected object %q", out.Object)
	}
	choice := out.Choices[0]
	if choice.FinishReason != "stop" {
		t.Errorf("expected stop, got %q", choice.FinishReason)
	}
	if choice.Message.Content == nil || *choice.Message.Content != "hello" {
		t.Errorf("expected content hello, got %v", choice.Message.Content)
	}
	if choice.Message.ToolCalls != nil {
		t.Error("expected no tool calls")
	}
	if out.Usage != (Usage{}) {
		t.Errorf("usage must stay zeroed, got %+v", out.Usage)
	}
}

func TestBuildCompletion_ToolCalls(t *testing.T) {
	calls := []ToolCall{{ID: "call_abc", Type: "function", Function: FunctionCall{Name: "foo", Arguments: "{}"}}}
	out := BuildCompletion("chatcmpl-1", "gpt-test", "ignored", calls)
	choice := out.Choices[0]
	if choice.FinishReason != "tool_calls" {
		t.Errorf("expected tool_calls, got %q", choice.FinishReason)
	}
	if choice.Message.Content != nil {
		t.Errorf("expected null content alongside tool calls, got %v", *choice.Message.Content)
	}
	if len(choice.Message.ToolCalls) != 1 {
		t.Errorf("expected the call list, got %+v", choice.Message.ToolCalls)
	}
}

func TestChunkBuilders(t *testing.T) {
	open := RoleChunk("id", "m")
	if open.Object != "chat.completion.chunk" {
		t.Errorf("unexpected object %q", open.Object)
	}
	if d := open.Choices[0].Delta; d.Role != "assistant" || d.Content != "" || d.ToolCalls != nil {
		t.Errorf("opening delta must carry only the role, got %+v", d)
	}
	if open.Choices[0].FinishReason != nil {
		t.Error("opening chunk must not carry a finish reason")
	}

	content := ContentChunk("id", "m", "hi")
	if d := content.Choices[0].Delta; d.Content != "hi" || d.Role != "" {
		t.Errorf("content delta must carry only content, got %+v", d)
	}

	stop := FinishChunk("id", "m", nil)
	if fr := stop.Choices[0].FinishReason; fr == nil || *fr != "stop" {
		t.Errorf("expected stop finish, got %v", fr)
	}
	if d := stop.Choices[0].Delta; d.Content != "" || d.ToolCalls != nil {
		t.Errorf("stop delta must be empty, got %+v", d)
	}

	calls := []ToolCall{{ID: "call_1", Type: "function", Function: FunctionCall{Name: "foo", Arguments: "{}"}}}
	toolStop := FinishChunk("id", "m", calls)
	if fr := toolStop.Choices[0].FinishReason; fr == nil || *fr != "tool_calls" {
		t.Errorf("expected tool_calls finish, got %v", fr)
	}
	if len(toolStop.Choices[0].Delta.ToolCalls) != 1 {
		t.Errorf("closing chunk must carry the accumulated calls, got %+v", toolStop.Choices[0].Delta)
	}
}
