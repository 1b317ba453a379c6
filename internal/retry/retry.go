// Package retry runs collaborator calls with exponential backoff and a
// per-attempt deadline.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/derekjytan/xai/internal/domain"
)

// Config configures retry behavior.
type Config struct {
	Attempts       int           // total attempts, including the first
	InitialDelay   time.Duration // delay before the second attempt
	MaxDelay       time.Duration // cap on the delay between attempts
	Multiplier     float64       // backoff growth factor
	AttemptTimeout time.Duration // deadline of a single attempt, 0 for none
}

// ChatDefaults is used for chat completions.
func ChatDefaults() Config {
	return Config{
		Attempts:       3,
		InitialDelay:   2 * time.Second,
		MaxDelay:       10 * time.Second,
		Multiplier:     2,
		AttemptTimeout: 60 * time.Second,
	}
}

// EmbeddingDefaults is used for embedding calls.
func EmbeddingDefaults() Config {
	return Config{
		Attempts:       2,
		InitialDelay:   1 * time.Second,
		MaxDelay:       5 * time.Second,
		Multiplier:     2,
		AttemptTimeout: 30 * time.Second,
	}
}

// OnRetry is called before each retry with the 1-based number of the attempt
// that just failed.
type OnRetry func(attempt int, err error)

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds, returns a Permanent error, or attempts run
// out. Exhaustion is reported as domain.ErrCollaboratorUnavailable wrapping
// the last error. Cancellation of ctx stops immediately with ctx.Err().
func Do(ctx context.Context, cfg Config, onRetry OnRetry, fn func(ctx context.Context) error) error {
	attempts := max(cfg.Attempts, 1)
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = runAttempt(ctx, cfg.AttemptTimeout, fn)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == attempts {
			break
		}

		if onRetry != nil {
			onRetry(attempt, lastErr)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = next(delay, cfg)
	}

	return fmt.Errorf("%w: failed after %d attempts: %w", domain.ErrCollaboratorUnavailable, attempts, lastErr)
}

func runAttempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}

func next(delay time.Duration, cfg Config) time.Duration {
	mult := cfg.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := time.Duration(float64(delay) * mult)
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return d
}
