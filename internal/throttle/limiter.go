package throttle

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum wall-clock interval between successive calls.
// A bounded random jitter can be added on top so outgoing requests don't
// form a fixed-cadence fingerprint.
type Limiter struct {
	limiter *rate.Limiter
	jitter  time.Duration
}

// NewLimiter creates a limiter with the given minimum inter-call interval.
// jitter may be zero.
func NewLimiter(minInterval, jitter time.Duration) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		jitter:  jitter,
	}
}

// Wait blocks until at least the minimum interval has elapsed since the
// previous call, plus a random jitter, then records the new call time.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	if l.jitter <= 0 {
		return nil
	}
	delay := time.Duration(rand.Int64N(int64(l.jitter)))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
