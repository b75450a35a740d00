package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// pubsubSender publishes events to a Google Cloud Pub/Sub topic.
// PUBSUB_EMULATOR_HOST is honored by the client library.
type pubsubSender struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func newPubSubSender(ctx context.Context, cfg *GCPConfig) (queueSender, error) {
	if cfg == nil {
		return nil, errors.New("gcp queue configuration is missing")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubSender{client: client, topic: client.Topic(cfg.Topic)}, nil
}

// Send publishes the event and waits for the server to acknowledge it.
func (s *pubsubSender) Send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	res := s.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: evt.attributes(),
	})
	msgID, err := res.Get(ctx)
	if err != nil {
		return fmt.Errorf("send message to pubsub: %w", err)
	}

	slog.Debug("pubsub publisher delivered event",
		slog.String("event_id", evt.ID),
		slog.String("message_id", msgID))
	return nil
}

// Close flushes pending messages and closes the client.
func (s *pubsubSender) Close() error {
	s.topic.Stop()
	return s.client.Close()
}
