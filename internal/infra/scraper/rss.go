// Package scraper reads news entries from RSS/Atom feeds and HTML listing pages.
// It uses the gofeed library to parse feed content with reliability patterns.
package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"card-news/internal/domain/entity"
	"card-news/internal/resilience/circuitbreaker"
	"card-news/internal/resilience/retry"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// UserAgent is sent with every feed and listing request.
const UserAgent = "card-news/1.0"

var tagRe = regexp.MustCompile(`<[^>]+>`)

// RSSFetcher reads RSS/Atom feeds using the gofeed library.
// It includes circuit breaker and retry logic for improved reliability.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

type options struct {
	retry        *retry.Config
	allowPrivate bool
}

// Option configures a fetcher.
type Option func(*options)

// WithRetry replaces the default retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(o *options) { o.retry = &cfg }
}

// WithPrivateHosts lets the listing scraper read pages on private and
// loopback addresses. Feeds are never address-checked.
func WithPrivateHosts() Option {
	return func(o *options) { o.allowPrivate = true }
}

func applyOptions(opts []Option, defaultRetry retry.Config) (options, retry.Config) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.retry != nil {
		return o, *o.retry
	}
	return o, defaultRetry
}

// NewRSSFetcher creates a new RSSFetcher with the given HTTP client.
// It automatically configures circuit breaker and retry logic.
func NewRSSFetcher(client *http.Client, opts ...Option) *RSSFetcher {
	_, retryCfg := applyOptions(opts, retry.FeedConfig())
	return &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedConfig()),
		retryConfig:    retryCfg,
	}
}

// Fetch retrieves and parses an RSS/Atom feed from the given URL.
// Entries without a title or link are skipped.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]entity.FeedItem, error) {
	return retry.Do(ctx, f.retryConfig, func() ([]entity.FeedItem, error) {
		items, err := circuitbreaker.Do(f.circuitBreaker, func() ([]entity.FeedItem, error) {
			return f.doFetch(ctx, feedURL)
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("feed circuit breaker open, request rejected",
				slog.String("circuit", f.circuitBreaker.Name()),
				slog.String("url", feedURL))
		}
		return items, err
	})
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (f *RSSFetcher) doFetch(ctx context.Context, feedURL string) ([]entity.FeedItem, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = UserAgent
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	var statusErr gofeed.HTTPError
	if errors.As(err, &statusErr) {
		return nil, &retry.HTTPError{StatusCode: statusErr.StatusCode, Message: statusErr.Status}
	}
	if err != nil {
		return nil, err
	}

	feedDomain := entity.DomainOf(feedURL)
	items := make([]entity.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := stripTags(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" {
			slog.Debug("skipping feed entry without title or link",
				slog.String("feed", feedURL),
				slog.String("title", title))
			continue
		}

		// description first, content:encoded when the feed only carries the body
		summary := it.Description
		if summary == "" {
			summary = it.Content
		}

		published := it.Published
		if published == "" {
			published = it.Updated
		}

		domain := entity.DomainOf(link)
		if domain == "" {
			domain = feedDomain
		}

		items = append(items, entity.FeedItem{
			Title:        title,
			URL:          link,
			Summary:      stripTags(summary),
			PublishedAt:  strings.TrimSpace(published),
			SourceDomain: domain,
		})
	}

	return items, nil
}

func stripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}
