package httputil

import "context"

type requestIDKey struct{}

// ContextWithRequestID stores the correlation id assigned by the server
// middleware so handlers can tag their log lines with it.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the correlation id, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
