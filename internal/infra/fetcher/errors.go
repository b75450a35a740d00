package fetcher

import "errors"

// Sentinel errors for content fetching. Callers fall back to the feed summary on any of them.
var (
	// ErrInvalidURL indicates a malformed URL or a scheme other than http/https.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrPrivateIP indicates the host resolves to a private, loopback or link-local address.
	ErrPrivateIP = errors.New("private IP address not allowed")

	// ErrBodyTooLarge indicates the response exceeded MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("content fetch timeout")

	// ErrTooManyRedirects indicates the redirect chain exceeded MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrReadabilityFailed indicates the HTML could not be parsed into an article.
	ErrReadabilityFailed = errors.New("readability extraction failed")

	// ErrNoArticleBody indicates neither readability nor the selector fallback found article text.
	ErrNoArticleBody = errors.New("no article body found")
)
