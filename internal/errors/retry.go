package errors

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy controls WithRetry. MaxAttempts counts the first call, so a
// policy of 3 performs at most two retries.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Multiplier     float64
	MaxBackoff     time.Duration

	// Sleep allows tests to observe and shortcut backoff waits. Nil means
	// a context-aware timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy matches the gateway contract: 3 attempts, backing off
// 1s then 2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		Multiplier:     2.0,
		MaxBackoff:     30 * time.Second,
	}
}

// WithRetry runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is exhausted. Only errors marked retryable by IsRetryable
// trigger another attempt.
func WithRetry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	sleep := policy.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	backoff := policy.InitialBackoff
	var err error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = fn()
		if err == nil {
			return nil
		}

		if !IsRetryable(err) || attempt == policy.MaxAttempts {
			return err
		}

		if sleepErr := sleep(ctx, backoff); sleepErr != nil {
			return sleepErr
		}

		backoff = time.Duration(float64(backoff) * policy.Multiplier)
		if policy.MaxBackoff > 0 && backoff > policy.MaxBackoff {
			backoff = policy.MaxBackoff
		}
	}

	return err
}

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Retryable
	}

	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
