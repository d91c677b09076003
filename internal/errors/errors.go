package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	ErrMalformedBody      = errors.New("malformed request body")
	ErrBackendUnavailable = errors.New("generation backend not initialized")
)

// ErrorResponse is the OpenAI-compatible error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the human-readable failure message.
type ErrorDetail struct {
	Message string `json:"message"`
}

// WriteJSONError writes an OpenAI-shaped error body with the given status code.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorDetail{Message: message}})
}
