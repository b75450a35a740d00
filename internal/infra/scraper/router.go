package scraper

import (
	"context"
	"fmt"
	"net/http"

	"card-news/internal/domain/entity"
)

// Router sends each configured source to the fetcher for its kind.
type Router struct {
	rss  *RSSFetcher
	html *HTMLScraper
}

// NewRouter creates a Router whose fetchers share the given HTTP client and options.
// The HTTP client should be configured with appropriate timeouts.
func NewRouter(client *http.Client, opts ...Option) *Router {
	return &Router{
		rss:  NewRSSFetcher(client, opts...),
		html: NewHTMLScraper(client, opts...),
	}
}

// Fetch reads one source. RSS and Atom go through gofeed, HTML listing pages
// through the selector scraper.
func (r *Router) Fetch(ctx context.Context, src entity.FeedSource) ([]entity.FeedItem, error) {
	switch kind := src.SourceKind(); kind {
	case entity.SourceKindRSS:
		return r.rss.Fetch(ctx, src.URL)
	case entity.SourceKindHTML:
		return r.html.Fetch(ctx, src.URL, src.Selectors)
	default:
		return nil, fmt.Errorf("unsupported source type %q: %w", kind, entity.ErrInvalidInput)
	}
}
