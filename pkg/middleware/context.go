package middleware

import "context"

type contextKey string

const (
	RequestIDKey   contextKey = "request_id"
	RequesterIDKey contextKey = "requester_id"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderRequesterID = "X-Requester-ID"
)

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequesterFromContext returns the authenticated requester, if any.
func RequesterFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequesterIDKey).(string)
	return id, ok && id != ""
}

func WithRequester(ctx context.Context, requesterID string) context.Context {
	return context.WithValue(ctx, RequesterIDKey, requesterID)
}
