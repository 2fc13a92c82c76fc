// Package retry runs an operation repeatedly with a growing delay between
// attempts. It backs the payment lookup, whose record is created by the
// backend asynchronously after the order.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned when every attempt failed.
// The last attempt's error is wrapped alongside it.
var ErrExhausted = errors.New("retry budget exhausted")

// Policy describes how many extra attempts to make and how long to wait
// before each of them. Delay receives the zero-based retry index.
type Policy struct {
	MaxRetries int
	Delay      func(retry int) time.Duration
	// Retryable decides whether an error is worth another attempt.
	// A nil Retryable retries everything except context errors.
	Retryable func(error) bool
}

// PaymentLookup is 1 attempt plus 3 retries, 1s/2s/4s apart.
var PaymentLookup = Policy{
	MaxRetries: 3,
	Delay:      ExponentialDelay(time.Second, 5*time.Second),
}

// ExponentialDelay returns base*2^n capped at limit.
func ExponentialDelay(base, limit time.Duration) func(int) time.Duration {
	return func(n int) time.Duration {
		d := base
		for i := 0; i < n && d < limit; i++ {
			d *= 2
		}
		return min(d, limit)
	}
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do calls op until it succeeds, a non-retryable error occurs, or the
// policy runs out. It returns the result of the first successful call.
func Do[T any](ctx context.Context, p Policy, sleep Sleeper, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if sleep == nil {
		sleep = Sleep
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = defaultRetryable
	}

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, p.Delay(attempt-1)); err != nil {
				return zero, err
			}
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !retryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, p.MaxRetries+1, lastErr)
}

func defaultRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
