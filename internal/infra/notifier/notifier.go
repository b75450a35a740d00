// Package notifier delivers new post announcements to chat webhooks.
// Slack and Discord are supported; NoOpNotifier stands in when a channel is disabled.
package notifier

import (
	"context"

	"card-news/internal/domain/entity"
)

// Notifier sends one announcement for a packaged post.
// Implementations handle rate limiting, retries and logging internally.
type Notifier interface {
	// NotifyPost announces the post. It returns an error only after every
	// attempt failed or the context was cancelled.
	NotifyPost(ctx context.Context, post *entity.Post) error
}
