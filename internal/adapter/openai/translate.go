package openai

import (
	"encoding/json"
	"strings"

	"google.golang.org/genai"
)

// fallbackFunctionName labels tool results whose originating call cannot be
// resolved by id or explicit name. Over-inclusion beats silent loss.
const fallbackFunctionName = "unknown_function"

// ToContents converts the ordered message list into the backend turn
// structure: an optional concatenated system instruction plus one
// *genai.Content per conversational turn. This function never fails;
// malformed input degrades to best-effort structures.
//
// Consecutive tool-result messages collapse into a single user-role turn of
// function-response parts, flushed before the next non-tool message and at
// the end of the list. The backend protocol has no turn type for tool
// results of their own.
func ToContents(messages []Message) (string, []*genai.Content) {
	callNames := toolCallNames(messages)

	var (
		system   strings.Builder
		contents []*genai.Content
		pending  []*genai.Part
	)

	flush := func() {
		if len(pending) == 0 {
			return
		}
		contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: pending})
		pending = nil
	}

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			flush()
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(extractText(msg.Content))

		case "user":
			flush()
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: extractText(msg.Content)}},
			})

		case "assistant":
			flush()
			var parts []*genai.Part
			if text := extractText(msg.Content); text != "" {
				parts = append(parts, &genai.Part{Text: text})
			}
			for _, tc := range msg.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						Name: tc.Function.Name,
						Args: parseArguments(tc.Function.Arguments),
					},
				})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})

		case "tool":
			name := msg.Name
			if name == "" {
				name = callNames[msg.ToolCallID]
			}
			if name == "" {
				name = fallbackFunctionName
			}
			pending = append(pending, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					Name:     name,
					Response: map[string]any{"result": extractText(msg.Content)},
				},
			})
		}
	}
	flush()

	return system.String(), contents
}

// toolCallNames builds the request-scoped id → function name reference from
// every assistant message's tool calls.
func toolCallNames(messages []Message) map[string]string {
	names := map[string]string{}
	for _, msg := range messages {
		if msg.Role != "assistant" {
			continue
		}
		for _, tc := range msg.ToolCalls {
			if tc.ID != "" && tc.Function.Name != "" {
				names[tc.ID] = tc.Function.Name
			}
		}
	}
	return names
}

// parseArguments parses an opaque tool-call argument string. The string is
// not necessarily valid JSON; on failure the raw string is preserved under a
// single key instead of aborting conversion.
func parseArguments(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return map[string]any{"raw": raw}
	}
	return args
}

// extractText pulls the plain text out of a message content field, which is
// either a string or a list of typed parts. Non-text part types are ignored,
// not errors.
func extractText(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case []any:
		var sb strings.Builder
		for _, item := range v {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if part["type"] != "text" {
				continue
			}
			if text, ok := part["text"].(string); ok {
				sb.WriteString(text)
			}
		}
		return sb.String()
	default:
		return ""
	}
}

// ToTools filters the declared tools to function-type entries and maps them
// to backend function declarations. Parameter schemas pass through verbatim,
// unvalidated. An empty filtered result yields no tools at all rather than a
// single empty declaration.
func ToTools(tools []Tool) []*genai.Tool {
	var decls []*genai.FunctionDeclaration
	for _, t := range tools {
		if t.Type != "function" {
			continue
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:                 t.Function.Name,
			Description:          t.Function.Description,
			ParametersJsonSchema: t.Function.Parameters,
		})
	}
	if len(decls) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}
