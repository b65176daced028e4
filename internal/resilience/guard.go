package resilience

import (
	"context"
	"time"
)

// Policy bounds how a single guarded call is attempted.
type Policy struct {
	// Attempts is the total number of tries including the first one.
	Attempts int
	Base     time.Duration
	Jitter   float64
	// Timeout applies to each attempt, not to the call as a whole.
	Timeout time.Duration
}

// Guard applies a per-attempt timeout, bounded retries and an optional breaker
// to calls against a dependency.
type Guard struct {
	Target  string
	Policy  Policy
	Breaker *Breaker
	// Transient reports whether a failed attempt may be retried. Nil disables retries.
	Transient func(error) bool
	// Expected reports errors that are normal outcomes (for example "no rows")
	// and must not count as failures.
	Expected func(error) bool
}

// Do runs fn under the guard. ErrOpenCircuit is returned without calling fn
// when the breaker rejects the call.
func (g Guard) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := g.Policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if g.Breaker != nil && !g.Breaker.Allow(ctx) {
			return ErrOpenCircuit
		}
		err = g.once(ctx, fn)
		if ctx.Err() != nil {
			// the caller gave up; not the dependency's fault
			if g.Breaker != nil {
				g.Breaker.release()
			}
			if err == nil {
				err = ctx.Err()
			}
			return err
		}
		failed := err != nil && (g.Expected == nil || !g.Expected(err))
		if g.Breaker != nil {
			g.Breaker.Report(ctx, !failed)
		}
		if !failed || attempt == attempts || g.Transient == nil || !g.Transient(err) {
			return err
		}
		StoreRetries.WithLabelValues(g.targetLabel()).Inc()
		timer := time.NewTimer(Backoff(g.Policy.Base, attempt, g.Policy.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func (g Guard) once(ctx context.Context, fn func(context.Context) error) error {
	if g.Policy.Timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, g.Policy.Timeout)
	defer cancel()
	return fn(attemptCtx)
}

func (g Guard) targetLabel() string {
	if g.Target == "" {
		return "default"
	}
	return g.Target
}
