package testutil

import (
	"context"

	"google.golang.org/genai"

	"github.com/zhengjr9/gemini-bridge/internal/upstream"
)

// GenerationEvent aliases the backend event type so test packages can build
// scripted streams without importing genai directly.
type GenerationEvent = genai.GenerateContentResponse

// FakeGenerator is a scripted upstream.Generator for tests. Blocking calls
// return Response; streaming calls replay Events in order. Err fails the
// call before any event is produced; StreamErr is injected as a terminal
// in-stream error after the scripted events.
type FakeGenerator struct {
	Response  *genai.GenerateContentResponse
	Events    []*genai.GenerateContentResponse
	Err       error
	StreamErr error

	// LastRequest captures the most recent request for assertions.
	LastRequest *upstream.GenerateRequest
}

func (f *FakeGenerator) GenerateContent(ctx context.Context, req *upstream.GenerateRequest) (*genai.GenerateContentResponse, error) {
	f.LastRequest = req
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Response, nil
}

func (f *FakeGenerator) GenerateContentStream(ctx context.Context, req *upstream.GenerateRequest) (<-chan upstream.StreamEvent, error) {
	f.LastRequest = req
	if f.Err != nil {
		return nil, f.Err
	}

	ch := make(chan upstream.StreamEvent, len(f.Events)+1)
	go func() {
		defer close(ch)
		for _, ev := range f.Events {
			ch <- upstream.StreamEvent{Response: ev}
		}
		if f.StreamErr != nil {
			ch <- upstream.StreamEvent{Err: f.StreamErr}
		}
	}()
	return ch, nil
}

// TextResponse builds a one-candidate generation event carrying plain text.
func TextResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

// FunctionCallResponse builds a generation event carrying one function call.
func FunctionCallResponse(name string, args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{{
					FunctionCall: &genai.FunctionCall{Name: name, Args: args},
				}},
			},
		}},
	}
}
