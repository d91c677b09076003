package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/zhengjr9/gemini-bridge/internal/errors"
	"github.com/zhengjr9/gemini-bridge/internal/httputil"
	"github.com/zhengjr9/gemini-bridge/internal/upstream"
)

// Handler implements the OpenAI chat completions endpoint over the upstream
// Generator. Each request is stateless and self-contained; no conversation
// state survives it.
type Handler struct {
	gen     upstream.Generator
	resolve upstream.AliasResolver
	timeout time.Duration
}

// NewHandler constructs a Handler. gen may be nil when the backend failed to
// initialize at startup; requests then fail with a server error.
func NewHandler(gen upstream.Generator, resolve upstream.AliasResolver, timeout time.Duration) *Handler {
	return &Handler{gen: gen, resolve: resolve, timeout: timeout}
}

// ServeHTTP handles POST /v1/chat/completions and its unprefixed alias.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := httputil.RequestIDFromContext(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("read request body", "request_id", reqID, "error", err, "elapsed", time.Since(start).String())
		apierrors.WriteJSONError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		// Client fault, not a server one: no backend call has happened.
		slog.Info("malformed request body", "request_id", reqID, "error", err, "elapsed", time.Since(start).String())
		apierrors.WriteJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Messages) == 0 {
		slog.Info("empty messages array", "request_id", reqID, "elapsed", time.Since(start).String())
		apierrors.WriteJSONError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	if h.gen == nil {
		slog.Error("generation backend not initialized", "request_id", reqID, "elapsed", time.Since(start).String())
		apierrors.WriteJSONError(w, http.StatusInternalServerError, apierrors.ErrBackendUnavailable.Error())
		return
	}

	// Conversion never fails; malformed pieces degrade in place.
	system, contents := ToContents(req.Messages)
	tools := ToTools(req.Tools)

	model := h.resolve(req.Model)
	slog.Debug("dispatching generation",
		"request_id", reqID,
		"requested_model", req.Model,
		"model", model,
		"messages", len(req.Messages),
		"stream", req.Stream,
	)

	genReq := &upstream.GenerateRequest{
		Model:             model,
		Contents:          contents,
		SystemInstruction: system,
		Tools:             tools,
		Caller:            "chat-completions",
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		genReq.Temperature = &t
	}
	if req.TopP != nil {
		p := float32(*req.TopP)
		genReq.TopP = &p
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		genReq.MaxOutputTokens = int32(*req.MaxTokens)
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if req.Stream {
		h.streamResponse(ctx, w, req.Model, genReq, reqID, start)
		return
	}
	h.writeResponse(ctx, w, req.Model, genReq, reqID, start)
}

// writeResponse awaits the single aggregate generation event and emits one
// completion object.
func (h *Handler) writeResponse(ctx context.Context, w http.ResponseWriter, model string, genReq *upstream.GenerateRequest, reqID string, start time.Time) {
	resp, err := h.gen.GenerateContent(ctx, genReq)
	if err != nil {
		slog.Error("generation failed", "request_id", reqID, "error", err, "elapsed", time.Since(start).String())
		apierrors.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	text, calls := Extract(resp)
	out := BuildCompletion(newCompletionID(), model, text, calls)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		slog.Error("encode response", "request_id", reqID, "error", err, "elapsed", time.Since(start).String())
	}
}

// streamResponse drives the event stream: a role-only opening chunk, one
// content chunk per text-bearing event, and exactly one closing chunk. Tool
// calls accumulate across events and surface only in the closing chunk. The
// stream always ends with the [DONE] sentinel, even after an error.
func (h *Handler) streamResponse(ctx context.Context, w http.ResponseWriter, model string, genReq *upstream.GenerateRequest, reqID string, start time.Time) {
	events, err := h.gen.GenerateContentStream(ctx, genReq)
	if err != nil {
		// Nothing sent yet: a clean JSON error is still possible.
		slog.Error("streaming generation failed", "request_id", reqID, "error", err, "elapsed", time.Since(start).String())
		apierrors.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httputil.SetSSEHeaders(w)

	id := newCompletionID()
	if err := httputil.WriteSSEData(w, RoleChunk(id, model)); err != nil {
		return
	}

	var accumulated []ToolCall
	for ev := range events {
		if ev.Err != nil {
			// Headers are out; degrade to an in-stream error event.
			slog.Error("generation stream error", "request_id", reqID, "error", ev.Err, "elapsed", time.Since(start).String())
			_ = httputil.WriteSSEData(w, apierrors.ErrorResponse{Error: apierrors.ErrorDetail{Message: ev.Err.Error()}})
			_ = httputil.WriteSSEDone(w)
			return
		}

		text, calls := Extract(ev.Response)
		accumulated = append(accumulated, calls...)
		if text != "" {
			if err := httputil.WriteSSEData(w, ContentChunk(id, model, text)); err != nil {
				// Client gone; keep draining is pointless, but the
				// sentinel contract only applies to writable streams.
				return
			}
		}
	}

	_ = httputil.WriteSSEData(w, FinishChunk(id, model, accumulated))
	_ = httputil.WriteSSEDone(w)

	slog.Debug("stream complete", "request_id", reqID, "tool_calls", len(accumulated), "elapsed", time.Since(start).String())
}
