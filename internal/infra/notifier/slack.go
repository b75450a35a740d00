package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"card-news/internal/domain/entity"
)

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	// Enabled indicates whether Slack notifications are enabled
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration
}

// SlackNotifier sends post announcements to Slack via Incoming Webhook.
type SlackNotifier struct {
	config  SlackConfig
	webhook *webhook
}

// NewSlackNotifier creates a new SlackNotifier with the specified configuration.
// Requests are limited to 1 per second with a burst of 1, the Incoming Webhook limit.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config:  config,
		webhook: newWebhook("Slack", config.WebhookURL, config.Timeout, NewRateLimiter(1.0, 1)),
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "section", "context", "divider"
	Text     *SlackTextObject  `json:"text,omitempty"`     // Text content (for section)
	Elements []SlackTextObject `json:"elements,omitempty"` // Elements (for context)
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"` // Actual text content
}

const (
	// Slack Block Kit limits
	maxSectionTextLength = 3000
	maxContextTextLength = 2000
	maxFallbackLength    = 150
)

// buildBlockKitPayload creates a Slack webhook payload for a post.
//
// The payload includes:
//   - Text: Fallback text (hook title + source domain)
//   - Section Block: Hook title linked to the source article, then the caption
//   - Context Block: Source domain, published date and card count
func (s *SlackNotifier) buildBlockKitPayload(post *entity.Post) SlackWebhookPayload {
	story := post.Story

	fallbackText := truncateRunes(
		fmt.Sprintf("%s - %s", story.HookTitle, story.SourceDomain),
		maxFallbackLength, truncationSuffix)

	// Format: *<url|title>*\n\ncaption
	titleLink := fmt.Sprintf("*<%s|%s>*", story.SourceURL, story.HookTitle)
	sectionText := truncateRunes(
		fmt.Sprintf("%s\n\n%s", titleLink, post.Caption),
		maxSectionTextLength, truncationSuffix)

	contextParts := []string{story.SourceDomain}
	if story.PublishedAt != "" {
		contextParts = append(contextParts, story.PublishedAt)
	}
	contextParts = append(contextParts, fmt.Sprintf("%d cards", len(post.Cards)))
	contextText := truncateRunes(strings.Join(contextParts, " • "), maxContextTextLength, truncationSuffix)

	return SlackWebhookPayload{
		Text: fallbackText,
		Blocks: []SlackBlock{
			{
				Type: "section",
				Text: &SlackTextObject{Type: "mrkdwn", Text: sectionText},
			},
			{
				Type:     "context",
				Elements: []SlackTextObject{{Type: "mrkdwn", Text: contextText}},
			},
		},
	}
}

// NotifyPost sends a Slack message for a newly packaged post.
// This method implements the Notifier interface.
func (s *SlackNotifier) NotifyPost(ctx context.Context, post *entity.Post) error {
	return s.webhook.deliver(ctx, post, s.buildBlockKitPayload(post))
}
