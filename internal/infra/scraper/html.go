package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"card-news/internal/domain/entity"
	"card-news/internal/infra/fetcher"
	"card-news/internal/resilience/circuitbreaker"
	"card-news/internal/resilience/retry"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"
)

const (
	maxBodySize = 10 * 1024 * 1024 // 10MB
)

// ErrNoSelectors is returned when an HTML source is fetched without selectors.
var ErrNoSelectors = errors.New("listing selectors not configured")

// HTMLScraper reads article entries from news listing pages that publish no feed.
// It uses goquery to locate entries with the CSS selectors configured per source.
type HTMLScraper struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	allowPrivate   bool
}

// NewHTMLScraper creates a new HTMLScraper with the given HTTP client.
// It automatically configures circuit breaker and retry logic for resilience.
// Page URLs resolving to private addresses are rejected unless
// WithPrivateHosts is given.
func NewHTMLScraper(client *http.Client, opts ...Option) *HTMLScraper {
	o, retryCfg := applyOptions(opts, retry.ListingConfig())
	return &HTMLScraper{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.ListingConfig()),
		retryConfig:    retryCfg,
		allowPrivate:   o.allowPrivate,
	}
}

// Fetch retrieves a listing page and extracts one FeedItem per matched entry.
// A rejected URL fails before any request and never counts against the breaker.
func (w *HTMLScraper) Fetch(ctx context.Context, pageURL string, sel *entity.ListingSelectors) ([]entity.FeedItem, error) {
	if sel == nil {
		return nil, ErrNoSelectors
	}
	if err := fetcher.ValidateURL(ctx, pageURL, !w.allowPrivate); err != nil {
		return nil, fmt.Errorf("listing URL rejected: %w", err)
	}

	return retry.Do(ctx, w.retryConfig, func() ([]entity.FeedItem, error) {
		items, err := circuitbreaker.Do(w.circuitBreaker, func() ([]entity.FeedItem, error) {
			return w.doFetch(ctx, pageURL, sel)
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("listing circuit breaker open, request rejected",
				slog.String("circuit", w.circuitBreaker.Name()),
				slog.String("url", pageURL))
		}
		return items, err
	})
}

// doFetch performs the actual scraping without retry or circuit breaker.
func (w *HTMLScraper) doFetch(ctx context.Context, pageURL string, sel *entity.ListingSelectors) ([]entity.FeedItem, error) {
	doc, err := w.fetchHTML(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch HTML failed: %w", err)
	}

	items := extractItems(doc, sel, entity.DomainOf(pageURL))
	if len(items) == 0 {
		return nil, fmt.Errorf("no items found with selector: %s", sel.Item)
	}

	return items, nil
}

// fetchHTML fetches and parses HTML from the given URL.
func (w *HTMLScraper) fetchHTML(ctx context.Context, urlStr string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	return doc, nil
}

// extractItems maps every element matching the item selector to a FeedItem.
// Entries without a title or href are skipped.
func extractItems(doc *goquery.Document, sel *entity.ListingSelectors, pageDomain string) []entity.FeedItem {
	var items []entity.FeedItem

	doc.Find(sel.Item).Each(func(i int, itemEl *goquery.Selection) {
		title := strings.TrimSpace(itemEl.Find(sel.Title).First().Text())
		if title == "" {
			slog.Debug("skipping item with empty title", slog.Int("index", i))
			return
		}

		href, _ := itemEl.Find(sel.URL).First().Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			slog.Debug("skipping item with empty URL", slog.Int("index", i), slog.String("title", title))
			return
		}
		itemURL := makeAbsoluteURL(href, sel.URLPrefix)

		item := entity.FeedItem{
			Title:        title,
			URL:          itemURL,
			SourceDomain: entity.DomainOf(itemURL),
		}
		if item.SourceDomain == "" {
			item.SourceDomain = pageDomain
		}
		if sel.Summary != "" {
			item.Summary = strings.TrimSpace(itemEl.Find(sel.Summary).First().Text())
		}
		if sel.Date != "" {
			item.PublishedAt = strings.TrimSpace(itemEl.Find(sel.Date).First().Text())
		}

		items = append(items, item)
	})

	return items
}

// makeAbsoluteURL converts a relative URL to absolute using the given prefix.
func makeAbsoluteURL(urlStr string, prefix string) string {
	if strings.HasPrefix(urlStr, "http://") || strings.HasPrefix(urlStr, "https://") {
		return urlStr
	}
	if prefix == "" {
		return urlStr
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(urlStr, "/")
}
