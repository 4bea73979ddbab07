package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// With derives a context whose logger carries the given attrs on every
// record logged through From.
func With(ctx context.Context, attrs ...any) context.Context {
	return context.WithValue(ctx, contextKey{}, From(ctx).With(attrs...))
}

// From returns the request-scoped logger, falling back to the process one.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
