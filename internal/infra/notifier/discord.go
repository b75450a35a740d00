package notifier

import (
	"context"
	"time"

	"card-news/internal/domain/entity"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	// Enabled indicates whether Discord notifications are enabled
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

// DiscordNotifier sends post announcements to Discord via webhook.
type DiscordNotifier struct {
	config  DiscordConfig
	webhook *webhook
}

// NewDiscordNotifier creates a new DiscordNotifier with the specified configuration.
//
// The notifier is initialized with:
//   - HTTP client with configured timeout
//   - Rate limiter set to 1 request/second with burst of 1
//
// Parameters:
//   - config: Discord configuration including webhook URL and timeout
//
// Returns:
//   - *DiscordNotifier: Configured Discord notifier instance
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		config:  config,
		webhook: newWebhook("Discord", config.WebhookURL, config.Timeout, NewRateLimiter(1.0, 1)),
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp,omitempty"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	// Discord limits
	maxTitleLength       = 256
	maxDescriptionLength = 4096

	// Discord blue color (#5865F2)
	discordBlueColor = 5793266
)

// buildEmbedPayload creates a Discord webhook payload for a post.
// The embed links the hook title to the source article and carries the caption;
// the footer names the source domain.
func (d *DiscordNotifier) buildEmbedPayload(post *entity.Post) DiscordWebhookPayload {
	embed := DiscordEmbed{
		Title:       truncateRunes(post.Story.HookTitle, maxTitleLength, ""),
		Description: truncateRunes(post.Caption, maxDescriptionLength, truncationSuffix),
		URL:         post.Story.SourceURL,
		Color:       discordBlueColor,
		Footer:      DiscordEmbedFooter{Text: post.Story.SourceDomain},
	}
	if !post.Metadata.GeneratedAt.IsZero() {
		embed.Timestamp = post.Metadata.GeneratedAt.Format(time.RFC3339)
	}

	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

// NotifyPost sends a Discord embed for a newly packaged post.
// This method implements the Notifier interface.
func (d *DiscordNotifier) NotifyPost(ctx context.Context, post *entity.Post) error {
	return d.webhook.deliver(ctx, post, d.buildEmbedPayload(post))
}
