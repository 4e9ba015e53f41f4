// Package retry implements the unbounded fixed-delay retry policy used by the
// client connect loop and the server bind loop.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy retries an operation forever, waiting Delay between attempts.
// It is stateless and may be shared.
type Policy struct {
	Delay time.Duration
}

// Fixed returns a policy with the given delay. Negative delays are treated as zero.
func Fixed(delay time.Duration) Policy {
	if delay < 0 {
		delay = 0
	}
	return Policy{Delay: delay}
}

// Notify is called after each failed attempt, before waiting.
// attempt starts at 1.
type Notify func(attempt int, err error, next time.Duration)

// Do runs op until it succeeds or ctx is cancelled. op receives the attempt
// number starting at 1. An error wrapped with Permanent stops the loop and
// is returned unwrapped. On cancellation the context error is returned.
func (p Policy) Do(ctx context.Context, op func(attempt int) error, notify Notify) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attempt := 0
	operation := func() error {
		attempt++
		return op(attempt)
	}
	var onErr backoff.Notify
	if notify != nil {
		onErr = func(err error, next time.Duration) {
			notify(attempt, err, next)
		}
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(p.Delay), ctx)
	return backoff.RetryNotify(operation, b, onErr)
}

// Permanent marks err as not retryable.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Sleep waits for d or until ctx is done, whichever comes first.
// It returns the context error if ctx ended the wait.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
