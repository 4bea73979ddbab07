package internal

import (
	"context"
	"time"
)

// Caller is the identity the scheduling core assumes for every request.
// Authentication itself is an external collaborator; the core only needs
// a user id and whether the caller may run privileged operations
// (bulk edits, sweeps, confirmation toggles, leave decisions).
type Caller struct {
	UserID     int64
	Privileged bool
}

type ctxKey string

const contextCallerKey ctxKey = "caller"

func CallerFromContext(ctx context.Context) (*Caller, bool) {
	if ctx == nil {
		return nil, false
	}
	caller, ok := ctx.Value(contextCallerKey).(*Caller)
	return caller, ok
}

func ContextWithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, contextCallerKey, caller)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
