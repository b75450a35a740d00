package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"card-news/internal/domain/entity"

	"github.com/google/uuid"
)

const (
	maxAttempts       = 2
	defaultRetryDelay = 5 * time.Second
	defaultRetryAfter = 5 * time.Second
	truncationSuffix  = "..."
)

// RateLimitError represents a 429 rate limit error from a webhook service.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string // Optional custom message
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from a webhook service.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from a webhook service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// is429Error checks if the error is a rate limit error and extracts retry_after.
func is429Error(err error) (*RateLimitError, bool) {
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return rateLimitErr, true
	}
	return nil, false
}

// isRetryableError reports whether err is worth another attempt.
// Server and network errors are; client errors are not. Rate limits are handled separately.
func isRetryableError(err error) bool {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return false
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return false
	}

	return !errors.Is(err, context.Canceled)
}

// truncateRunes shortens text to maxRunes runes, suffix included.
func truncateRunes(text string, maxRunes int, suffix string) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	keep := maxRunes - utf8.RuneCountInString(suffix)
	if keep < 0 {
		keep = 0
	}
	return string([]rune(text)[:keep]) + suffix
}

// retryAfterBody is the rate limit body shape shared by Slack and Discord.
type retryAfterBody struct {
	RetryAfter float64 `json:"retry_after"` // In seconds
}

// extractRetryAfter reads the wait time from a 429 response. The JSON body
// wins over the Retry-After header; 5s is used when neither is present.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var parsed retryAfterBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.RetryAfter > 0 {
		return time.Duration(parsed.RetryAfter * float64(time.Second))
	}

	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return defaultRetryAfter
}

// webhook posts JSON payloads to one incoming webhook URL.
type webhook struct {
	service     string // "Slack" or "Discord", used in errors and logs
	url         string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retryDelay  time.Duration
}

func newWebhook(service, url string, timeout time.Duration, limiter *RateLimiter) *webhook {
	return &webhook{
		service:     service,
		url:         url,
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: limiter,
		retryDelay:  defaultRetryDelay,
	}
}

// send performs a single POST and maps the response status to a typed error.
func (w *webhook) send(ctx context.Context, payload any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    w.service + " rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API client error: %s", w.service, string(body)),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API server error: %s", w.service, string(body)),
		}
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// deliver rate-limits and sends payload with up to maxAttempts attempts.
//
// Retry strategy:
//   - 429: wait for retry_after, then try again
//   - 5xx and network errors: linear backoff (retryDelay * attempt)
//   - other 4xx: fail immediately
func (w *webhook) deliver(ctx context.Context, post *entity.Post, payload any) error {
	requestID := uuid.New().String()
	logger := slog.With(
		slog.String("request_id", requestID),
		slog.String("service", w.service),
		slog.String("output_dir", post.OutputDir),
		slog.String("url", post.Story.SourceURL))

	if err := w.rateLimiter.Allow(ctx); err != nil {
		logger.Error("rate limiter error", slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := w.send(ctx, payload)
		if err == nil {
			logger.Info("notification delivered", slog.Int("attempt", attempt))
			return nil
		}
		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			logger.Warn("rate limit hit, backing off",
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))
			if attempt == maxAttempts {
				break
			}
			if err := sleepCtx(ctx, rateLimitErr.RetryAfter); err != nil {
				return fmt.Errorf("context canceled during rate limit backoff: %w", err)
			}
			continue
		}

		if !isRetryableError(err) {
			logger.Error("notification failed with non-retryable error",
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < maxAttempts {
			delay := w.retryDelay * time.Duration(attempt)
			logger.Warn("webhook request failed, retrying",
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))
			if err := sleepCtx(ctx, delay); err != nil {
				return fmt.Errorf("context canceled during retry backoff: %w", err)
			}
		}
	}

	logger.Error("notification failed after all retries",
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))
	return fmt.Errorf("%s notification failed after %d attempts: %w", w.service, maxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
