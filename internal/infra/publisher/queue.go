package publisher

import (
	"context"
	"fmt"
)

// queueSender abstracts provider-specific queue senders.
type queueSender interface {
	Send(ctx context.Context, evt Event) error
}

// queuePublisher dispatches events to a cloud queue provider.
type queuePublisher struct {
	id       string
	provider string
	sender   queueSender
}

func newQueuePublisher(ctx context.Context, cfg Config) (Publisher, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("publisher %q missing queue configuration", cfg.ID)
	}

	var (
		sender queueSender
		err    error
	)
	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newSQSSender(ctx, cfg.Queue.SQS)
	case QueueProviderAWSSNS:
		sender, err = newSNSSender(ctx, cfg.Queue.SNS)
	case QueueProviderGCP:
		sender, err = newPubSubSender(ctx, cfg.Queue.GCP)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queuePublisher{id: cfg.ID, provider: cfg.Queue.Provider, sender: sender}, nil
}

func (p *queuePublisher) ID() string { return p.id }

// Publish forwards the event to the configured queue provider.
func (p *queuePublisher) Publish(ctx context.Context, evt Event) error {
	if err := p.sender.Send(ctx, evt); err != nil {
		return fmt.Errorf("queue provider %s send failed: %w", p.provider, err)
	}
	return nil
}

// Close releases the sender's client when it holds one.
func (p *queuePublisher) Close() error {
	if c, ok := p.sender.(closer); ok {
		return c.Close()
	}
	return nil
}
