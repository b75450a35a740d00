package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket shared by all requests to one webhook.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing requestsPerSecond with the given burst.
//
// Example:
//
//	limiter := NewRateLimiter(1.0, 1) // Slack: one message per second
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Allow blocks until a token is available or the context is done.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
