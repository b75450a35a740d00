package repository

import (
	"context"
	"time"
)

// HistoryRepository records which articles have already been turned into posts.
// Keys are normalized article URLs (see entity.NormalizeURL).
type HistoryRepository interface {
	// Load returns the set of published URLs.
	Load(ctx context.Context) (map[string]struct{}, error)
	// MarkPublished records url as published at the given time.
	// Marking an already published URL overwrites its timestamp.
	MarkPublished(ctx context.Context, url string, at time.Time) error
	Count(ctx context.Context) (int, error)
}
