// Package trace carries a request identifier through a context so every
// attempt of a fetch can be correlated on the server side and in logs.
package trace

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"

	// HeaderXRequestID is the header used to propagate the request identifier
	HeaderXRequestID = "X-Request-ID"
)

// WithRequestID returns a context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request identifier stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return id, true
	}
	return "", false
}

// EnsureRequestID returns the identifier from ctx or a freshly generated UUID.
func EnsureRequestID(ctx context.Context) string {
	if id, ok := RequestIDFromContext(ctx); ok {
		return id
	}
	return uuid.NewString()
}

// ApplyRequestID sets the X-Request-ID header unless the caller already set one,
// and returns the value that ends up on the request.
func ApplyRequestID(ctx context.Context, h http.Header) string {
	if existing := h.Get(HeaderXRequestID); existing != "" {
		return existing
	}
	id := EnsureRequestID(ctx)
	h.Set(HeaderXRequestID, id)
	return id
}
