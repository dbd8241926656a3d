package git

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/pixel/internal/process"
)

// RetryConfig configures retries of remote listings.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (default: 3).
	MaxAttempts int
	// InitialDelay is the delay before the second attempt (default: 2s).
	InitialDelay time.Duration
	// MaxDelay caps the delay between attempts (default: 10s).
	MaxDelay time.Duration
	// Multiplier grows the delay after each attempt (default: 2.0).
	Multiplier float64
}

// DefaultRetryConfig returns the retry configuration for git ls-remote.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}

// withRetry calls attempt until it succeeds, returns an error that is not
// worth retrying, or cfg.MaxAttempts is reached. It returns the number of
// attempts made.
func withRetry[R any](ctx context.Context, cfg RetryConfig, attempt func(context.Context) (R, error)) (result R, attempts int, err error) {
	logger := zerolog.Ctx(ctx)
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	for attempts = 1; ; attempts++ {
		result, err = attempt(ctx)
		if err == nil || attempts >= cfg.MaxAttempts || !retryable(ctx, err) {
			return result, attempts, err
		}

		logger.Warn().Err(err).Int("attempt", attempts).Dur("delay", delay).Msg("remote listing failed, retrying")

		select {
		case <-ctx.Done():
			return result, attempts, context.Cause(ctx)
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}

// retryable reports whether err looks transient. Interrupts and a canceled
// parent context are final.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var pe *process.ProcessError
	if errors.As(err, &pe) {
		return !pe.Interrupted()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
