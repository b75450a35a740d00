package publisher

import (
	"context"
	"fmt"
)

// Publisher delivers an event to one destination.
type Publisher interface {
	ID() string
	Publish(ctx context.Context, evt Event) error
}

// Build creates the publisher described by cfg.
func Build(ctx context.Context, cfg Config) (Publisher, error) {
	switch cfg.Type {
	case TypeQueue:
		return newQueuePublisher(ctx, cfg)
	case TypeHTTP:
		return newHTTPPublisher(cfg)
	default:
		return nil, fmt.Errorf("no publisher registered for type %q", cfg.Type)
	}
}

// BuildAll creates a publisher for every enabled config. Publishers built
// before a failure are closed again.
func BuildAll(ctx context.Context, cfgs []Config) ([]Publisher, error) {
	var out []Publisher
	for _, cfg := range Enabled(cfgs) {
		p, err := Build(ctx, cfg)
		if err != nil {
			_ = closeAll(out)
			return nil, fmt.Errorf("build publisher %q: %w", cfg.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

type closer interface {
	Close() error
}

func closeAll(pubs []Publisher) error {
	var firstErr error
	for _, p := range pubs {
		if c, ok := p.(closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
