// Package resilience provides bounded retry with exponential backoff for
// calls to external services (ClinicalTrials.gov, the geocoder, the LLM).
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls retry behavior.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first.
	// Defaults to 3.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry. Defaults to 500ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between attempts. Defaults to 15s.
	MaxBackoff time.Duration

	// ShouldRetry decides whether an error is worth retrying. Nil means
	// IsTransient.
	ShouldRetry func(error) bool
}

// DefaultRetryConfig returns the retry settings used for API calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     15 * time.Second,
	}
}

func (cfg RetryConfig) withDefaults() RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 15 * time.Second
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = IsTransient
	}
	return cfg
}

// Do runs fn, retrying transient failures with exponential backoff and
// jitter. Context cancellation stops retrying immediately and returns the
// last error.
func Do(ctx context.Context, cfg RetryConfig, fn func(context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for functions that return a value.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !cfg.ShouldRetry(err) || attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := backoff(attempt, cfg)
		zap.L().Debug("resilience: retrying after error",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

// backoff returns the exponential delay for the given zero-based attempt,
// with ±25% jitter, capped at MaxBackoff.
func backoff(attempt int, cfg RetryConfig) time.Duration {
	d := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt))
	if max := float64(cfg.MaxBackoff); d > max {
		d = max
	}
	jitter := 1 + (rand.Float64()-0.5)/2
	return time.Duration(d * jitter)
}
