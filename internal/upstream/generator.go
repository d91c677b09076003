package upstream

import (
	"context"

	"google.golang.org/genai"
)

// GenerateRequest is one fully-converted generation payload. Contents carry
// the conversation as backend turns; the caller tag is informational only
// (the upstream is already authenticated).
type GenerateRequest struct {
	Model             string
	Contents          []*genai.Content
	SystemInstruction string
	Tools             []*genai.Tool
	Temperature       *float32
	TopP              *float32
	MaxOutputTokens   int32
	Caller            string
}

// StreamEvent is one emission of a streamed generation. Exactly one of
// Response and Err is set; a terminal Err ends the stream.
type StreamEvent struct {
	Response *genai.GenerateContentResponse
	Err      error
}

// Generator produces content from the upstream generation backend, either as
// one aggregate response or as an ordered finite event stream. The stream
// channel is closed when the generation ends; it may close after zero events.
type Generator interface {
	GenerateContent(ctx context.Context, req *GenerateRequest) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, req *GenerateRequest) (<-chan StreamEvent, error)
}

// AliasResolver maps a caller-facing model name to the effective upstream
// model. Pure; injected into the request handler.
type AliasResolver func(string) string
