// Package retry runs idempotent operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mentorexpress/mentorexpress-web/pkg/circuitbreaker"
	apperrors "github.com/mentorexpress/mentorexpress-web/pkg/errors"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"go.uber.org/zap"
)

// Config holds retry configuration
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Jitter spreads each delay by ±25%
	Jitter bool
	// ShouldRetry reports whether a failed attempt may be repeated. Nil retries everything.
	ShouldRetry func(error) bool
}

// DefaultConfig retries any error three times
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// StoreStartupConfig is used while waiting for the session store at boot
func StoreStartupConfig() Config {
	config := DefaultConfig()
	config.MaxRetries = 5
	config.InitialDelay = 250 * time.Millisecond
	config.MaxDelay = 2 * time.Second
	return config
}

// BackendReadConfig is used for idempotent reads from the external backend.
// Only transport failures are retried; a backend rejection is relayed as-is.
func BackendReadConfig() Config {
	config := DefaultConfig()
	config.MaxRetries = 2
	config.InitialDelay = 200 * time.Millisecond
	config.MaxDelay = 2 * time.Second
	config.ShouldRetry = IsRetryable
	return config
}

// Do runs fn until it succeeds, fails with a non-retryable error or runs out of attempts
func Do(ctx context.Context, config Config, operation string, fn func() error) error {
	_, err := DoWithResult(ctx, config, operation, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for operations that produce a value
func DoWithResult[T any](ctx context.Context, config Config, operation string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		res, err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Info("Operation succeeded after retry",
					zap.String("operation", operation),
					zap.Int("attempt", attempt))
			}
			return res, nil
		}
		lastErr = err

		if config.ShouldRetry != nil && !config.ShouldRetry(err) {
			return zero, err
		}
		if attempt == config.MaxRetries {
			break
		}

		delay := backoff(attempt, config)
		logger.Warn("Operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", config.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	logger.Error("Operation failed after all retries",
		zap.String("operation", operation),
		zap.Int("max_retries", config.MaxRetries),
		zap.Error(lastErr))

	return zero, fmt.Errorf("%s failed after %d retries: %w", operation, config.MaxRetries, lastErr)
}

func backoff(attempt int, config Config) time.Duration {
	delay := math.Min(
		float64(config.InitialDelay)*math.Pow(config.Multiplier, float64(attempt)),
		float64(config.MaxDelay),
	)
	if config.Jitter {
		//nolint:gosec // G404: jitter does not need crypto/rand
		delay += delay * 0.25 * (rand.Float64()*2 - 1)
	}
	return time.Duration(delay)
}

// IsRetryable is true for backend transport failures. Cancellation, an open
// breaker and backend rejections are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if circuitbreaker.IsBreakerError(err) {
		return false
	}
	return apperrors.Is(err, apperrors.ErrBackendUnavailable)
}
