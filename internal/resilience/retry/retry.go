// Package retry retries transient failures with exponential backoff and jitter.
//
// Only errors classified by IsRetryable are retried: network timeouts,
// refused or reset connections, and HTTP 408, 429 or 5xx responses
// reported as *HTTPError. Everything else is returned on the first attempt.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"

	"card-news/internal/observability/logging"
	"card-news/internal/observability/metrics"
)

// Config holds the configuration for retry logic.
type Config struct {
	// Operation names the call in logs and the retry_attempts_total metric.
	Operation string

	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int

	// InitialDelay is the wait before the second call.
	InitialDelay time.Duration

	// MaxDelay caps the wait between calls, before jitter.
	MaxDelay time.Duration

	// Multiplier grows the delay after each failed call.
	Multiplier float64

	// JitterFraction adds up to this fraction of the delay at random (0.0 to 1.0).
	JitterFraction float64
}

// DefaultConfig returns a default retry configuration.
func DefaultConfig() Config {
	return Config{
		Operation:      "default",
		MaxAttempts:    3,
		InitialDelay:   time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// FeedConfig is used for RSS/Atom feeds. Runs happen twice a day, so a slow
// recovery is preferable to a feed missing from the run.
func FeedConfig() Config {
	cfg := DefaultConfig()
	cfg.Operation = "feed_fetch"
	cfg.MaxAttempts = 5
	return cfg
}

// ListingConfig is used for HTML listing pages.
func ListingConfig() Config {
	cfg := DefaultConfig()
	cfg.Operation = "listing_scrape"
	cfg.MaxDelay = 10 * time.Second
	return cfg
}

// PublisherConfig is used for story event publishers. Cloud SDKs retry
// internally, so only a couple of outer attempts are made.
func PublisherConfig() Config {
	return Config{
		Operation:      "story_publish",
		MaxAttempts:    2,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// WithBackoff calls fn until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached. The last error is wrapped once attempts run out.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	_, err := Do(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Do is WithBackoff for calls that return a value.
//
// Example:
//
//	items, err := retry.Do(ctx, retry.FeedConfig(), func() ([]entity.FeedItem, error) {
//	    return fetcher.Fetch(ctx, feedURL)
//	})
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	logger := logging.FromContext(ctx)
	var zero T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		v, err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info("operation succeeded after retry",
					slog.String("operation", cfg.Operation),
					slog.Int("attempt", attempt))
			}
			return v, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			if attempt > 1 {
				logger.Warn("non-retryable error, aborting",
					slog.String("operation", cfg.Operation),
					slog.Int("attempt", attempt),
					slog.Any("error", err))
			}
			return zero, err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		logger.Warn("operation failed, retrying",
			slog.String("operation", cfg.Operation),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", err))
		metrics.RecordRetry(cfg.Operation)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("retry aborted: %w", ctx.Err())
		}

		delay = cfg.next(delay)
	}

	return zero, fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}

// next returns the delay after d: grown by Multiplier, capped at MaxDelay,
// then jittered.
func (c Config) next(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * c.Multiplier)
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return addJitter(d, c.JitterFraction)
}

// IsRetryable reports whether err is a transient failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode >= 500 && httpErr.StatusCode < 600:
			return true
		case httpErr.StatusCode == http.StatusTooManyRequests,
			httpErr.StatusCode == http.StatusRequestTimeout:
			return true
		}
	}
	return false
}

// HTTPError is a non-2xx response from a feed, listing page or webhook.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func addJitter(duration time.Duration, jitterFraction float64) time.Duration {
	if jitterFraction <= 0 {
		return duration
	}
	if jitterFraction > 1.0 {
		jitterFraction = 1.0
	}
	// #nosec G404 -- jitter does not need cryptographic randomness.
	jitter := time.Duration(rand.Float64() * float64(duration) * jitterFraction)
	return duration + jitter
}
