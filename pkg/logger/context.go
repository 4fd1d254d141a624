package logger

import "context"

// correlationIDKey marks the context storage slot for the correlation
// identifier.
type correlationIDKey struct{}

// WithCorrelationID returns a context carrying the given correlation
// identifier.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the correlation identifier stored in
// ctx, or an empty string when absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}

	return ""
}
