package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns the default logger annotated with the request id, if any.
func FromContext(ctx context.Context) *slog.Logger {
	if id := GetRequestID(ctx); id != "" {
		return slog.Default().With("request_id", id)
	}
	return slog.Default()
}
