package a2a

import (
	"fmt"
	"iter"
	"strings"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/zhengjr9/gemini-bridge/internal/upstream"
)

// AgentConfig holds the configuration for the bridge-backed A2A agent.
type AgentConfig struct {
	// Name is the agent name exposed via A2A AgentCard.
	Name string
	// Description is exposed via A2A AgentCard.
	Description string
	// Generator is the pre-constructed upstream generation client.
	Generator upstream.Generator
	// Model is the upstream model driven by this agent.
	Model string
}

// New returns an agent.Agent whose Run logic streams from the upstream
// generation backend and converts the events into session.Events that the
// ADK runner understands.
func New(cfg AgentConfig) (agent.Agent, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("a2a agent: Name must not be empty")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("a2a agent: Generator must not be nil")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("a2a agent: Model must not be empty")
	}

	return agent.New(agent.Config{
		Name:        cfg.Name,
		Description: cfg.Description,
		Run:         runFunc(cfg),
	})
}

// runFunc returns the Run closure that drives one agent invocation.
func runFunc(cfg AgentConfig) func(agent.InvocationContext) iter.Seq2[*session.Event, error] {
	return func(ctx agent.InvocationContext) iter.Seq2[*session.Event, error] {
		return func(yield func(*session.Event, error) bool) {
			userContent := ctx.UserContent()
			if userContent == nil || len(userContent.Parts) == 0 {
				ev := session.NewEvent(ctx.InvocationID())
				ev.Author = cfg.Name
				ev.LLMResponse = model.LLMResponse{
					Content: textContent("(empty input)"),
				}
				yield(ev, nil)
				return
			}

			genReq := &upstream.GenerateRequest{
				Model:    cfg.Model,
				Contents: []*genai.Content{userContent},
				Caller:   "a2a",
			}

			streamCh, err := cfg.Generator.GenerateContentStream(ctx, genReq)
			if err != nil {
				yield(nil, fmt.Errorf("streaming generation failed: %w", err))
				return
			}

			var fullText strings.Builder
			for ev := range streamCh {
				if ev.Err != nil {
					yield(nil, fmt.Errorf("generation stream error: %w", ev.Err))
					return
				}

				text := eventText(ev.Response)
				if text == "" {
					continue
				}
				fullText.WriteString(text)

				// Emit a partial event so streaming A2A clients see tokens as they arrive.
				partialEv := session.NewEvent(ctx.InvocationID())
				partialEv.Author = cfg.Name
				partialEv.Branch = ctx.Branch()
				partialEv.LLMResponse = model.LLMResponse{
					Content: textContent(text),
					Partial: true,
				}
				if !yield(partialEv, nil) {
					return
				}
			}

			// Emit the final (non-partial) event with the complete answer so that
			// IsFinalResponse() returns true and the runner closes the invocation.
			finalEv := session.NewEvent(ctx.InvocationID())
			finalEv.Author = cfg.Name
			finalEv.Branch = ctx.Branch()
			finalEv.LLMResponse = model.LLMResponse{
				Content: textContent(fullText.String()),
				Partial: false,
			}
			yield(finalEv, nil)
		}
	}
}

// eventText concatenates the text parts of one generation event.
func eventText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// textContent is a small helper that wraps a string into a *genai.Content.
func textContent(text string) *genai.Content {
	return &genai.Content{
		Role:  genai.RoleModel,
		Parts: []*genai.Part{{Text: text}},
	}
}
