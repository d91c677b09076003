package openai

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// newCallID synthesizes a caller-visible tool-call id: "call_" plus 12
// lowercase hex characters from a process-wide random source. Fresh per
// extracted function call, never inherited from the inbound conversation.
// Uniqueness is probabilistic.
func newCallID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "call_" + hex[:12]
}

// newCompletionID mints the generation-scoped response id shared by all
// chunks of one request.
func newCompletionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "chatcmpl-" + hex[:24]
}

// Extract pulls the text and tool invocations out of one generation event:
// the concatenation of all text parts in part order, and one outbound tool
// call per function-call part, each with a freshly synthesized id. Text and
// calls are reported separately because they travel in different response
// fields.
func Extract(resp *genai.GenerateContentResponse) (string, []ToolCall) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var (
		text  strings.Builder
		calls []ToolCall
	)
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if fc := part.FunctionCall; fc != nil {
			calls = append(calls, ToolCall{
				ID:   newCallID(),
				Type: "function",
				Function: FunctionCall{
					Name:      fc.Name,
					Arguments: marshalArguments(fc.Args),
				},
			})
		}
	}
	return text.String(), calls
}

// marshalArguments re-serializes structured call arguments into the OpenAI
// argument string. Absent arguments become an empty object.
func marshalArguments(args map[string]any) string {
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// BuildCompletion assembles the non-streaming completion object. Tool calls
// present means a null content and a tool_calls finish reason; otherwise the
// extracted text with a stop finish reason. Usage is always zeroed.
func BuildCompletion(id, model, text string, calls []ToolCall) ChatCompletionResponse {
	msg := ResponseMessage{Role: "assistant"}
	finish := "stop"
	if len(calls) > 0 {
		msg.ToolCalls = calls
		finish = "tool_calls"
	} else {
		msg.Content = &text
	}

	return ChatCompletionResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []Choice{{Index: 0, Message: msg, FinishReason: finish}},
	}
}

// buildChunk assembles one streaming chunk around the given delta.
func buildChunk(id, model string, delta Delta, finish *string) StreamChunk {
	return StreamChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []StreamChoice{{Index: 0, Delta: delta, FinishReason: finish}},
	}
}

// RoleChunk is the opening chunk carrying only the assistant role.
func RoleChunk(id, model string) StreamChunk {
	return buildChunk(id, model, Delta{Role: "assistant"}, nil)
}

// ContentChunk carries one text fragment.
func ContentChunk(id, model, text string) StreamChunk {
	return buildChunk(id, model, Delta{Content: text}, nil)
}

// FinishChunk is the single closing chunk. With accumulated tool calls it
// carries the full list and signals tool_calls; otherwise it signals stop
// with no content field.
func FinishChunk(id, model string, calls []ToolCall) StreamChunk {
	finish := "stop"
	delta := Delta{}
	if len(calls) > 0 {
		finish = "tool_calls"
		delta.ToolCalls = calls
	}
	return buildChunk(id, model, delta, &finish)
}
