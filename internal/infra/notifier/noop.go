package notifier

import (
	"context"

	"card-news/internal/domain/entity"
)

// NoOpNotifier discards every announcement.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// NotifyPost returns nil immediately.
func (n *NoOpNotifier) NotifyPost(ctx context.Context, post *entity.Post) error {
	return nil
}
