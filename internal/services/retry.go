package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"finances/internal/core"
)

// RetryPolicy bounds the retries of idempotent store reads.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: 2 * time.Second}
}

// NoRetry runs every read exactly once.
func NoRetry() RetryPolicy {
	return RetryPolicy{Attempts: 1}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d <= 0 || (p.MaxDelay > 0 && d > p.MaxDelay) {
		return p.MaxDelay
	}
	return d
}

// retryable reports whether err may succeed on a second attempt. Domain
// outcomes and cancellation are final.
func retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrAlreadyExists),
		core.IsValidation(err),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

func withRetry[T any](ctx context.Context, p RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var (
		result T
		err    error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		result, err = fn(ctx)
		if !retryable(err) || attempt == attempts-1 {
			return result, err
		}

		wait := p.delay(attempt)
		slog.WarnContext(ctx, "Store read failed, retrying",
			"operation", op,
			"attempt", attempt+1,
			"backoff", wait,
			"error", err)

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}
	}
	return result, err
}
