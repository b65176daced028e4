package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter implements a sliding window rate limiter backed by Redis sorted sets.
// Every event is a member scored by its timestamp; members older than the window
// are trimmed before counting.
type Limiter struct {
	Client redis.Cmdable
	Prefix string

	now func() time.Time
}

// NewLimiter constructs a limiter storing windows under prefix.
func NewLimiter(client redis.Cmdable, prefix string) Limiter {
	return Limiter{Client: client, Prefix: prefix}
}

// Allow registers an event for key and reports whether it is within max events
// per window. A disabled limiter always allows.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (Decision, error) {
	now := l.clock()
	decision := Decision{Allowed: true, Limit: max, Remaining: max, ResetAt: now.Add(window)}
	if l.Client == nil || max <= 0 || window <= 0 {
		return decision, nil
	}

	redisKey := l.Prefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return decision, err
	}

	current := int(countCmd.Val())
	decision.Allowed = current <= max
	decision.Remaining = max - current
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	return decision, nil
}

func (l Limiter) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}
