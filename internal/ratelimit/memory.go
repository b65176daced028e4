package ratelimit

import (
	"context"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// MemoryLimiter is a fixed-window limiter held in process memory. It backs the
// compute route when no Redis is configured, so limits apply per replica.
type MemoryLimiter struct {
	store limiter.Store
}

// NewMemoryLimiter builds a limiter whose expired counters are swept every
// cleanup interval.
func NewMemoryLimiter(prefix string, cleanup time.Duration) MemoryLimiter {
	if cleanup <= 0 {
		cleanup = limiter.DefaultCleanUpInterval
	}
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          prefix,
		CleanUpInterval: cleanup,
	})
	return MemoryLimiter{store: store}
}

// Allow counts one event for key in the current window.
func (m MemoryLimiter) Allow(ctx context.Context, key string, window time.Duration, max int) (Decision, error) {
	decision := Decision{Allowed: true, Limit: max, Remaining: max, ResetAt: time.Now().Add(window)}
	if m.store == nil || max <= 0 || window <= 0 {
		return decision, nil
	}

	res, err := limiter.New(m.store, limiter.Rate{Period: window, Limit: int64(max)}).Get(ctx, key)
	if err != nil {
		return decision, err
	}
	decision.Allowed = !res.Reached
	decision.Remaining = int(res.Remaining)
	decision.ResetAt = time.Unix(res.Reset, 0)
	return decision, nil
}
