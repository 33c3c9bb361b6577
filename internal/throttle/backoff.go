package throttle

import (
	"context"
	"sync"
	"time"
)

// Backoff computes capped exponential retry delays. It is safe for
// concurrent use.
type Backoff struct {
	base   time.Duration
	factor float64
	max    time.Duration

	mu      sync.Mutex
	attempt int
}

// NewBackoff creates a backoff yielding base, base*factor, base*factor^2, ...
// capped at max.
func NewBackoff(base time.Duration, factor float64, max time.Duration) *Backoff {
	return &Backoff{base: base, factor: factor, max: max}
}

// NextDelay returns the delay for the current attempt and increments the
// internal attempt counter.
func (b *Backoff) NextDelay() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := float64(b.base)
	for i := 0; i < b.attempt; i++ {
		delay *= b.factor
		if time.Duration(delay) >= b.max {
			delay = float64(b.max)
			break
		}
	}
	b.attempt++

	d := time.Duration(delay)
	if d > b.max {
		d = b.max
	}
	return d
}

// Reset zeros the attempt counter after a success.
func (b *Backoff) Reset() {
	b.mu.Lock()
	b.attempt = 0
	b.mu.Unlock()
}

// Attempts returns the number of delays handed out since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempt
}

// Policy bundles a retry budget with its backoff and a retryability
// classifier. A nil Retryable retries every error.
type Policy struct {
	MaxAttempts int
	Backoff     *Backoff
	Retryable   func(error) bool
}

// Retry runs op up to MaxAttempts times, sleeping the backoff delay between
// attempts. Terminal errors (per the classifier) abort immediately. The
// backoff is reset on success.
func Retry(ctx context.Context, p Policy, op func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err = op(ctx)
		if err == nil {
			if p.Backoff != nil {
				p.Backoff.Reset()
			}
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}
		delay := time.Duration(0)
		if p.Backoff != nil {
			delay = p.Backoff.NextDelay()
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
