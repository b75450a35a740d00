package entity

import "strings"

// FeedItem is a single entry read from an RSS/Atom feed.
// Optional fields use the empty string for "absent".
type FeedItem struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Summary      string `json:"summary,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"` // free-form date text as published by the feed
	SourceDomain string `json:"source_domain,omitempty"`
	FullText     string `json:"full_text,omitempty"` // scraped article body, supersedes Summary
}

// Validate checks the fields a story cannot be built without.
func (f FeedItem) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return ValidateURL(f.URL)
}

// NormalizedURL returns the key used for duplicate detection and publish history.
func (f FeedItem) NormalizedURL() string {
	return NormalizeURL(f.URL)
}

// WithFullText returns a copy of the item carrying the scraped article body.
func (f FeedItem) WithFullText(text string) FeedItem {
	f.FullText = text
	return f
}

// NormalizeURL lowercases rawURL and drops trailing slashes.
//
// Example:
//
//	NormalizeURL("https://Example.com/a/") // "https://example.com/a"
func NormalizeURL(rawURL string) string {
	return strings.ToLower(strings.TrimRight(rawURL, "/"))
}
