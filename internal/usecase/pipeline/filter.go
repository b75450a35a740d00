package pipeline

import (
	"log/slog"

	"card-news/internal/domain/entity"
)

// Deduplicate drops items whose normalized URL was already seen.
// The first occurrence wins and the input order is preserved.
func Deduplicate(items []entity.FeedItem) []entity.FeedItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]entity.FeedItem, 0, len(items))
	for _, item := range items {
		key := item.NormalizedURL()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// FilterPublished drops items whose normalized URL is in the publish history.
// Every skipped item is logged at info level.
func FilterPublished(items []entity.FeedItem, published map[string]struct{}) []entity.FeedItem {
	if len(published) == 0 {
		return items
	}
	out := make([]entity.FeedItem, 0, len(items))
	for _, item := range items {
		if _, ok := published[item.NormalizedURL()]; ok {
			slog.Info("skipping already published item",
				slog.String("url", item.URL),
				slog.String("title", item.Title))
			continue
		}
		out = append(out, item)
	}
	return out
}

// Limit returns at most n items. A non-positive n keeps everything.
func Limit(items []entity.FeedItem, n int) []entity.FeedItem {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
