// Package retry provides the retry policy value object shared by the store
// call sites and the offline queue's sync loop.
package retry

import (
	"context"
	"time"

	"classbook/shared/failure"
)

// Policy describes a bounded exponential backoff.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

// DefaultStorePolicy bounds the short-lived automatic retries around store
// round trips. Only the offline queue is allowed long-lived schedules.
func DefaultStorePolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		Multiplier:  2,
		MaxDelay:    time.Second,
	}
}

// Delay returns the backoff before the given attempt (1-based). The first
// attempt runs immediately.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delay := p.BaseDelay
	for i := 2; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.Multiplier)
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}

	if delay > p.MaxDelay {
		return p.MaxDelay
	}

	return delay
}

// Do runs fn up to MaxAttempts times, sleeping per the policy between
// attempts. Only transient-classified failures are retried; validation,
// conflict and transition errors are permanent for a given input and
// returned immediately.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	var err error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if delay := policy.Delay(attempt); delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}

		if !failure.IsTransient(err) {
			return err
		}
	}

	return err
}
