package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vistopia/internal/services"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// RetryPolicy bounds how often an attempt is repeated. Only timeouts are
// retried; every other failure ends the sequence at once.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Timeout     time.Duration
}

// DefaultRetryPolicy allows 3 attempts of at most 60s, 10s apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 10 * time.Second, Timeout: 60 * time.Second}
}

// ErrRetriesExhausted marks a sequence in which every attempt timed out.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, services.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// Do runs attempt until it succeeds, fails with a non-retryable error, or
// MaxAttempts is reached. Each attempt gets its own Timeout-bound context.
// onRetry, when set, is called before each wait.
func (p RetryPolicy) Do(ctx context.Context, sleep Sleeper, attempt func(ctx context.Context) error, onRetry func(n int, err error)) error {
	if sleep == nil {
		sleep = contextSleep
	}
	attempts := max(p.MaxAttempts, 1)
	var lastErr error
	for n := 1; n <= attempts; n++ {
		err := p.runOnce(ctx, attempt)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !Retryable(err) {
			return err
		}
		lastErr = err
		if n == attempts {
			break
		}
		if onRetry != nil {
			onRetry(n, err)
		}
		if err := sleep(ctx, p.Delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, lastErr)
}

func (p RetryPolicy) runOnce(ctx context.Context, attempt func(ctx context.Context) error) error {
	if p.Timeout <= 0 {
		return attempt(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	return attempt(attemptCtx)
}
