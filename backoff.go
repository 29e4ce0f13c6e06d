package aiproxy

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxRetries   = 3
	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 10 * time.Second
)

// RetryPolicy controls how buffered calls are retried.
//
// Only server errors (status >= 500) and transport failures other than the
// client timeout are retried. The delay before retry k (0-indexed) is
// min(InitialDelay * 2^k, MaxDelay).
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps every delay.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns 3 retries with delays of 1s, 2s, 4s, capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   defaultMaxRetries,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
	}
}

// Attempts returns the maximum number of attempts for one call.
func (p RetryPolicy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

// Delay returns the delay before retry attempt k (0-indexed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	b := p.newBackOff()
	d := b.NextBackOff()
	for i := 0; i < attempt && d < p.MaxDelay; i++ {
		d = b.NextBackOff()
	}
	return d
}

// newBackOff returns a jitter-free exponential schedule that never stops on
// its own; the attempt budget is enforced by the caller.
func (p RetryPolicy) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
