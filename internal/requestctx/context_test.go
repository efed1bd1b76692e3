package requestctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	rc := &Context{RequestID: "req-1", Route: "/api/chat", StartedAt: time.Now().Add(-time.Second)}
	ctx := WithContext(context.Background(), rc)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Same(t, rc, got)
	require.GreaterOrEqual(t, got.Elapsed(), time.Second)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)

	var rc *Context
	require.Zero(t, rc.Elapsed())
}
