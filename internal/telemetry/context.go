package telemetry

import "context"

// requestIDKey is the context key type used to store a request ID.
type requestIDKey struct{}

// WithRequestID returns a child context carrying the provided request ID.
// If ctx is nil, context.Background() is used.
func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID from ctx, if present.
// Returns "", false if the value is missing or not a non-empty string.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(requestIDKey{}).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
