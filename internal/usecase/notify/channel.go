// Package notify fans new post announcements out to the configured chat channels.
// Every channel is sent to in its own goroutine, bounded by a worker pool and
// guarded by a per-channel failure circuit.
package notify

import (
	"context"

	"card-news/internal/domain/entity"
	"card-news/internal/infra/notifier"
)

// Channel is one announcement destination.
//
// Retry Policy Contract:
//   - Transient failures (5xx, network errors): retried by the channel, at most 2 attempts
//   - Rate limits (429): wait for retry_after, then retry
//   - Client errors (4xx except 429): no retry
//
// All methods must be safe for concurrent use.
type Channel interface {
	// Name returns the lowercase channel identifier used in logs, metrics and health output.
	Name() string

	// IsEnabled reports whether the channel receives announcements.
	IsEnabled() bool

	// Send delivers the announcement for post.
	//
	// Returns:
	//   - ErrChannelDisabled: If called on a disabled channel
	//   - ErrInvalidPost: If post is nil or carries no hook title
	//   - Network/API errors from the webhook
	Send(ctx context.Context, post *entity.Post) error
}

// WebhookChannel adapts a notifier.Notifier to the Channel interface.
type WebhookChannel struct {
	name     string
	notifier notifier.Notifier
	enabled  bool
}

// NewSlackChannel creates the "slack" channel. A disabled config gets a NoOpNotifier.
func NewSlackChannel(config notifier.SlackConfig) *WebhookChannel {
	var n notifier.Notifier = notifier.NewNoOpNotifier()
	if config.Enabled {
		n = notifier.NewSlackNotifier(config)
	}
	return NewWebhookChannel("slack", n, config.Enabled)
}

// NewDiscordChannel creates the "discord" channel. A disabled config gets a NoOpNotifier.
func NewDiscordChannel(config notifier.DiscordConfig) *WebhookChannel {
	var n notifier.Notifier = notifier.NewNoOpNotifier()
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	}
	return NewWebhookChannel("discord", n, config.Enabled)
}

// NewWebhookChannel wraps any notifier under the given channel name.
func NewWebhookChannel(name string, n notifier.Notifier, enabled bool) *WebhookChannel {
	return &WebhookChannel{name: name, notifier: n, enabled: enabled}
}

// Name implements Channel.
func (c *WebhookChannel) Name() string {
	return c.name
}

// IsEnabled implements Channel.
func (c *WebhookChannel) IsEnabled() bool {
	return c.enabled
}

// Send implements Channel.
func (c *WebhookChannel) Send(ctx context.Context, post *entity.Post) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if post == nil || post.Story.HookTitle == "" {
		return ErrInvalidPost
	}
	return c.notifier.NotifyPost(ctx, post)
}
