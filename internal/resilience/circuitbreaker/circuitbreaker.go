// Package circuitbreaker guards calls to feeds, article hosts, event
// publishers and the history database with github.com/sony/gobreaker.
//
// Every breaker reports its state to the circuit_breaker_state gauge so a
// stuck source is visible on the worker's /metrics endpoint.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"card-news/internal/observability/metrics"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name identifies the breaker in logs and metrics.
	Name string

	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32

	// Interval is the closed-state window after which counts are cleared.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureThreshold trips the breaker once the failure ratio within
	// Interval reaches it, e.g. 0.6 for 60%.
	FailureThreshold float64

	// MinRequests is the number of requests needed before the ratio counts.
	MinRequests uint32

	// ConsecutiveFailures trips the breaker after this many failures in a
	// row regardless of the ratio. Zero disables the rule.
	ConsecutiveFailures uint32
}

// DefaultConfig returns a ratio-based configuration named name.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// FeedConfig guards RSS/Atom feed requests. A run fetches each feed once,
// so the breaker mostly protects repeated retries against a dead host.
func FeedConfig() Config {
	return Config{
		Name:                "feed-fetch",
		MaxRequests:         5,
		Interval:            time.Minute,
		Timeout:             2 * time.Minute,
		FailureThreshold:    0.7,
		MinRequests:         10,
		ConsecutiveFailures: 5,
	}
}

// ListingConfig guards HTML listing pages. Listing markup breaks without
// notice, so an open breaker waits an hour before probing.
func ListingConfig() Config {
	return Config{
		Name:                "listing-scrape",
		MaxRequests:         3,
		Interval:            time.Minute,
		Timeout:             time.Hour,
		FailureThreshold:    0.8,
		MinRequests:         5,
		ConsecutiveFailures: 5,
	}
}

// ArticleConfig guards article body fetches. Hosts differ per item, so only
// a sustained failure rate trips it.
func ArticleConfig() Config {
	return DefaultConfig("content-fetch")
}

// PublisherConfig guards one story event publisher.
func PublisherConfig(id string) Config {
	return Config{
		Name:                "publisher-" + id,
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             2 * time.Minute,
		FailureThreshold:    1.0,
		MinRequests:         3,
		ConsecutiveFailures: 3,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a circuit breaker from cfg. Cancellation by the caller is
// not counted as a failure of the guarded service.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.shouldTrip(counts)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitState(name, int(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	metrics.RecordCircuitState(cfg.Name, int(gobreaker.StateClosed))
	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

func (cfg Config) shouldTrip(counts gobreaker.Counts) bool {
	if cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
		return true
	}
	if counts.Requests < cfg.MinRequests || counts.Requests == 0 {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
}

// Execute runs fn through the breaker. While open it returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// Do runs fn through cb and returns its typed result.
//
// Example:
//
//	items, err := circuitbreaker.Do(cb, func() ([]entity.FeedItem, error) {
//	    return f.doFetch(ctx, feedURL)
//	})
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the name of the circuit breaker.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether the breaker is rejecting calls.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
