package throttle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmakela/bottlecat/internal/throttle"
)

func TestBackoff_DelaySequence(t *testing.T) {
	b := throttle.NewBackoff(1000*time.Millisecond, 2, 8000*time.Millisecond)

	want := []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
		8000 * time.Millisecond,
		8000 * time.Millisecond,
	}
	for i, w := range want {
		assert.Equal(t, w, b.NextDelay(), "attempt %d", i)
	}
}

func TestBackoff_ResetRestartsSequence(t *testing.T) {
	b := throttle.NewBackoff(1000*time.Millisecond, 2, 8000*time.Millisecond)

	b.NextDelay()
	b.NextDelay()
	b.NextDelay()
	require.Equal(t, 3, b.Attempts())

	b.Reset()
	assert.Equal(t, 0, b.Attempts())
	assert.Equal(t, 1000*time.Millisecond, b.NextDelay())
}

func TestLimiter_EnforcesMinimumInterval(t *testing.T) {
	l := throttle.NewLimiter(100*time.Millisecond, 0)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiter_WaitHonorsContextCancellation(t *testing.T) {
	l := throttle.NewLimiter(time.Minute, 0)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Wait(ctx))
	cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestRetry_StopsOnSuccessAndResetsBackoff(t *testing.T) {
	b := throttle.NewBackoff(time.Millisecond, 2, 10*time.Millisecond)
	calls := 0

	err := throttle.Retry(context.Background(), throttle.Policy{MaxAttempts: 5, Backoff: b}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, b.Attempts())
}

func TestRetry_TerminalErrorAbortsImmediately(t *testing.T) {
	terminal := errors.New("blocked")
	calls := 0

	err := throttle.Retry(context.Background(), throttle.Policy{
		MaxAttempts: 5,
		Backoff:     throttle.NewBackoff(time.Millisecond, 2, 10*time.Millisecond),
		Retryable:   func(err error) bool { return !errors.Is(err, terminal) },
	}, func(context.Context) error {
		calls++
		return terminal
	})

	assert.ErrorIs(t, err, terminal)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsBudgetAndReturnsLastError(t *testing.T) {
	last := errors.New("still failing")
	calls := 0

	err := throttle.Retry(context.Background(), throttle.Policy{
		MaxAttempts: 3,
		Backoff:     throttle.NewBackoff(time.Millisecond, 2, 5*time.Millisecond),
	}, func(context.Context) error {
		calls++
		return last
	})

	assert.ErrorIs(t, err, last)
	assert.Equal(t, 3, calls)
}
