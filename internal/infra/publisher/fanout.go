package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"card-news/internal/domain/entity"
	"card-news/internal/observability/metrics"
	"card-news/internal/resilience/circuitbreaker"
	"card-news/internal/resilience/retry"
)

type guardedPublisher struct {
	Publisher
	breaker *circuitbreaker.CircuitBreaker
}

// Fanout sends every event to all configured publishers. Each publisher is
// retried and guarded by its own circuit breaker.
type Fanout struct {
	publishers  []guardedPublisher
	retryConfig retry.Config
	now         func() time.Time
}

// FanoutOption configures a Fanout.
type FanoutOption func(*Fanout)

// WithRetryConfig overrides the per-publisher retry policy.
func WithRetryConfig(cfg retry.Config) FanoutOption {
	return func(f *Fanout) { f.retryConfig = cfg }
}

// WithClock sets the clock used for event timestamps.
func WithClock(now func() time.Time) FanoutOption {
	return func(f *Fanout) { f.now = now }
}

// NewFanout wraps publishers for fan-out delivery.
func NewFanout(publishers []Publisher, opts ...FanoutOption) *Fanout {
	f := &Fanout{
		retryConfig: retry.PublisherConfig(),
		now:         time.Now,
	}
	for _, p := range publishers {
		f.publishers = append(f.publishers, guardedPublisher{
			Publisher: p,
			breaker:   circuitbreaker.New(circuitbreaker.PublisherConfig(p.ID())),
		})
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Len returns the number of publishers.
func (f *Fanout) Len() int {
	return len(f.publishers)
}

// PublishPost builds the story.packaged event for post and publishes it.
func (f *Fanout) PublishPost(ctx context.Context, post *entity.Post) error {
	if post == nil || len(f.publishers) == 0 {
		return nil
	}
	return f.Publish(ctx, NewEvent(post, f.now()))
}

// Publish sends evt to every publisher. A failing publisher does not stop the
// others; all failures are joined into the returned error.
func (f *Fanout) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range f.publishers {
		err := retry.WithBackoff(ctx, f.retryConfig, func() error {
			_, err := circuitbreaker.Do(p.breaker, func() (struct{}, error) {
				return struct{}{}, p.Publish(ctx, evt)
			})
			return err
		})
		metrics.RecordEventPublished(p.ID(), err)
		if err != nil {
			slog.Warn("story event publish failed",
				slog.String("publisher", p.ID()),
				slog.String("event_id", evt.ID),
				slog.String("breaker_state", p.breaker.State().String()),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("publisher %s: %w", p.ID(), err))
			continue
		}
		slog.Debug("story event published",
			slog.String("publisher", p.ID()),
			slog.String("event_id", evt.ID))
	}
	return errors.Join(errs...)
}

// Close releases publisher clients.
func (f *Fanout) Close() error {
	pubs := make([]Publisher, 0, len(f.publishers))
	for _, p := range f.publishers {
		pubs = append(pubs, p.Publisher)
	}
	return closeAll(pubs)
}
