package upstream

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/zhengjr9/gemini-bridge/internal/config"
)

// Client is the production Generator backed by the genai SDK. Authentication
// and transport belong to the SDK; an empty API key defers to its own
// credential discovery.
type Client struct {
	genai *genai.Client
}

// NewClient constructs the genai-backed Generator from config.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.VertexAI {
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	}

	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{genai: gc}, nil
}

// GenerateContent performs one blocking generation and returns the single
// aggregate response.
func (c *Client) GenerateContent(ctx context.Context, req *GenerateRequest) (*genai.GenerateContentResponse, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, req.Model, req.Contents, generationConfig(req))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return resp, nil
}

// GenerateContentStream starts a streamed generation and bridges the SDK's
// iterator into a channel of StreamEvents. The channel is closed when the
// event sequence ends or after a terminal error event.
func (c *Client) GenerateContentStream(ctx context.Context, req *GenerateRequest) (<-chan StreamEvent, error) {
	seq := c.genai.Models.GenerateContentStream(ctx, req.Model, req.Contents, generationConfig(req))
	return bridgeStream(ctx, seq), nil
}

// bridgeStream forwards the SDK's event iterator into a channel. Sends race
// against ctx so a consumer that stops reading mid-stream (client gone, A2A
// yield refused) cannot strand the producer on a full buffer; the goroutine
// exits and the channel closes either way.
func bridgeStream(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) <-chan StreamEvent {
	ch := make(chan StreamEvent, 16)
	go func() {
		defer close(ch)
		for resp, err := range seq {
			ev := StreamEvent{Response: resp}
			if err != nil {
				ev = StreamEvent{Err: fmt.Errorf("generate content stream: %w", err)}
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
			if ev.Err != nil {
				return
			}
		}
	}()
	return ch
}

// generationConfig maps the request knobs onto the genai config. The
// upstream may ignore any of them.
func generationConfig(req *GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		MaxOutputTokens: req.MaxOutputTokens,
		Tools:           req.Tools,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}
	return cfg
}
