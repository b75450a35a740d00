package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"card-news/internal/resilience/circuitbreaker"

	"github.com/go-shiori/go-readability"
)

// UserAgent identifies the fetcher to article hosts.
const UserAgent = "card-news/1.0"

// ReadabilityFetcher downloads an article page and extracts its body text.
// Readability runs first; when it yields fewer than MinArticleRunes the
// SelectorExtractor is tried on the same HTML. The result is line-cleaned
// with CleanArticleText.
//
// Features:
//   - SSRF prevention via URL validation
//   - Circuit breaker for fault tolerance
//   - Size limiting to prevent memory exhaustion
//   - Redirect validation for security
//
// Thread safety: ReadabilityFetcher is safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	selectors      *SelectorExtractor
	config         ContentFetchConfig
}

// page is a downloaded article document.
type page struct {
	html     []byte
	finalURL *url.URL
}

// NewReadabilityFetcher creates a new ReadabilityFetcher with the given configuration.
//
// Parameters:
//   - config: Configuration for content fetching (timeouts, limits, security settings)
//
// Returns:
//   - *ReadabilityFetcher: Ready-to-use content fetcher
//
// Example:
//
//	config := DefaultConfig()
//	fetcher := NewReadabilityFetcher(config)
//	content, err := fetcher.FetchContent(ctx, "https://example.com/article")
func NewReadabilityFetcher(config ContentFetchConfig) *ReadabilityFetcher {
	fetcher := &ReadabilityFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ArticleConfig()),
		selectors:      NewSelectorExtractor(nil),
		config:         config,
	}

	// Each redirect target is validated for security (SSRF check)
	fetcher.client = &http.Client{
		Timeout: 2 * config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= fetcher.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := ValidateURL(req.Context(), req.URL.String(), fetcher.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return fetcher
}

// FetchContent fetches the article at urlStr and returns its cleaned body text.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - urlStr: Article URL to fetch (must be http:// or https://)
//
// Returns:
//   - string: Extracted article text, one paragraph per line
//   - error: Error if fetching or extraction fails
//
// Example:
//
//	content, err := fetcher.FetchContent(ctx, item.URL)
//	if err != nil {
//	    // keep the feed summary
//	}
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	if err := ValidateURL(ctx, urlStr, f.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	pg, err := circuitbreaker.Do(f.circuitBreaker, func() (*page, error) {
		return f.download(ctx, urlStr)
	})
	if err != nil {
		return "", err
	}

	return f.extract(urlStr, pg)
}

// download performs the HTTP request and reads the body with a size limit.
func (f *ReadabilityFetcher) download(ctx context.Context, urlStr string) (*page, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: request exceeded %v", ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && (errors.Is(urlErr.Err, ErrTooManyRedirects) ||
			errors.Is(urlErr.Err, ErrPrivateIP) || errors.Is(urlErr.Err, ErrInvalidURL)) {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(htmlBytes)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response size exceeds limit %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	// the final URL may differ after redirects
	finalURL, _ := url.Parse(urlStr)
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}

	return &page{html: htmlBytes, finalURL: finalURL}, nil
}

// extract turns a downloaded page into cleaned article text.
func (f *ReadabilityFetcher) extract(urlStr string, p *page) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(p.html), p.finalURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadabilityFailed, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if utf8.RuneCountInString(text) < MinArticleRunes {
		fallback, err := f.selectors.Extract(p.html)
		if err != nil {
			slog.Debug("selector extraction failed",
				slog.String("url", urlStr),
				slog.Any("error", err))
		}
		if fallback != "" {
			slog.Debug("using selector extraction instead of readability",
				slog.String("url", urlStr),
				slog.Int("readability_runes", utf8.RuneCountInString(text)))
			text = fallback
		}
	}

	cleaned := CleanArticleText(text)
	if cleaned == "" {
		return "", fmt.Errorf("%w: %s", ErrNoArticleBody, urlStr)
	}
	return cleaned, nil
}
