package requestid

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey struct{}

// WithContext stores id in ctx.
func WithContext(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, contextKey{}, id)
	return context.WithValue(ctx, middleware.RequestIDKey, id)
}

// FromContext returns the request id or an empty string.
// Ids set by chi's middleware.RequestID are found as well.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return middleware.GetReqID(ctx)
}
