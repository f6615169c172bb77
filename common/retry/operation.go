package retry

import (
	"context"
	"fmt"
	"time"
)

// ErrFailedPermanently is returned when an operation fails at every attempt.
// It wraps the last error.
type ErrFailedPermanently struct {
	attempts int
	LastErr  error
}

func (e *ErrFailedPermanently) Error() string {
	return fmt.Sprintf("operation failed permanently after %d attempts: %v", e.attempts, e.LastErr)
}

func (e *ErrFailedPermanently) Unwrap() error {
	return e.LastErr
}

// Do retries op up to maxAttempts times, sleeping per the strategy between
// attempts, and stops early when ctx is done.
func Do[T any](ctx context.Context, maxAttempts int, strategy Strategy, op func() (T, error)) (T, error) {
	var empty T
	if maxAttempts < 1 {
		return empty, fmt.Errorf("need at least 1 attempt to run op, but have %d max attempts", maxAttempts)
	}

	var attempt int
	for {
		if ctx.Err() != nil {
			return empty, ctx.Err()
		}
		ret, err := op()
		if err == nil {
			return ret, nil
		}
		attempt++
		if attempt == maxAttempts {
			return empty, &ErrFailedPermanently{attempts: maxAttempts, LastErr: err}
		}
		timer := time.NewTimer(strategy.Duration(attempt - 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return empty, ctx.Err()
		case <-timer.C:
		}
	}
}
