package requestctx

import (
	"context"
	"time"
)

type contextKey string

const fiberLocalsKey = "requestctx"

// Key is the typed context key used for storing the request Context.
var Key contextKey = "gemini-relay/requestctx"

// Context captures per-request diagnostics shared by handlers and the relay service.
type Context struct {
	RequestID string
	Route     string
	StartedAt time.Time
}

// Elapsed returns the time since the request started.
func (c *Context) Elapsed() time.Duration {
	if c == nil || c.StartedAt.IsZero() {
		return 0
	}
	return time.Since(c.StartedAt)
}

// WithContext embeds the request context into the parent context.
func WithContext(parent context.Context, rc *Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithValue(parent, Key, rc)
}

// FromContext retrieves the request context if present.
func FromContext(ctx context.Context) (*Context, bool) {
	if ctx == nil {
		return nil, false
	}
	rc, ok := ctx.Value(Key).(*Context)
	return rc, ok
}

// FiberLocalsKey returns the key used in fiber.Locals for request context storage.
func FiberLocalsKey() string {
	return fiberLocalsKey
}
