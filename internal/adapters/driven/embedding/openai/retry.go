package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Default retry behaviour for transient API failures.
const (
	maxAttempts       = 3
	baseDelay         = 500 * time.Millisecond
	maxDelay          = 8 * time.Second
	backoffMultiplier = 2.0
)

// apiError is an error returned by the OpenAI API.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("openai error (status %d): %s", e.StatusCode, e.Message)
}

// retryConfig controls retry behaviour with exponential backoff.
type retryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
}

// defaultRetryConfig returns sensible retry defaults.
func defaultRetryConfig() retryConfig {
	return retryConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		Multiplier:  backoffMultiplier,
	}
}

// retryWithBackoff executes fn with exponential backoff on retryable errors.
// Rate limits and server-side failures are retried; client errors are not.
func retryWithBackoff[T any](ctx context.Context, cfg retryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	delay := cfg.BaseDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		// Context cancellation wins over any pending retry.
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return zero, err
		}

		// No point sleeping after the final attempt.
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, lastErr
}

// isRetryable reports whether an error is worth retrying.
func isRetryable(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	// Network-level failures (connection refused, timeouts) are retryable.
	return true
}
