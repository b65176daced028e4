package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiterAllowSlidingWindow(t *testing.T) {
	_, client := newRedis(t)

	now := time.Unix(1_700_000_000, 0)
	limiter := NewLimiter(client, "test:")
	limiter.now = func() time.Time { return now }

	ctx := context.Background()
	window := 2 * time.Second
	max := 2

	for i := 0; i < max; i++ {
		decision, err := limiter.Allow(ctx, "key", window, max)
		require.NoError(t, err)
		require.True(t, decision.Allowed, "request %d", i)
		require.Equal(t, max-(i+1), decision.Remaining)
		now = now.Add(100 * time.Millisecond)
	}

	decision, err := limiter.Allow(ctx, "key", window, max)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Zero(t, decision.Remaining)

	now = now.Add(window + time.Millisecond)
	decision, err = limiter.Allow(ctx, "key", window, max)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestLimiterDisabledAllows(t *testing.T) {
	decision, err := Limiter{}.Allow(context.Background(), "key", time.Second, 1)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.Equal(t, 1, decision.Remaining)
}
