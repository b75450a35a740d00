package entity

import "strings"

// Feed source kinds.
const (
	SourceKindRSS  = "rss"
	SourceKindHTML = "html"
)

// FeedSource is one configured feed. Most sources are RSS/Atom; listing pages
// without a feed are scraped with CSS selectors.
type FeedSource struct {
	URL       string            `yaml:"url"`
	Name      string            `yaml:"name"`
	Enabled   *bool             `yaml:"enabled"`
	Kind      string            `yaml:"type"`
	Selectors *ListingSelectors `yaml:"selectors"`
}

// ListingSelectors locates article entries on an HTML listing page.
type ListingSelectors struct {
	Item      string `yaml:"item"`
	Title     string `yaml:"title"`
	URL       string `yaml:"url"`
	Summary   string `yaml:"summary"`
	Date      string `yaml:"date"`
	URLPrefix string `yaml:"url_prefix"`
}

// IsEnabled reports whether the source should be fetched. Sources are enabled unless
// explicitly disabled.
func (s FeedSource) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// SourceKind returns the normalized kind, defaulting to RSS.
func (s FeedSource) SourceKind() string {
	kind := strings.ToLower(strings.TrimSpace(s.Kind))
	if kind == "" {
		return SourceKindRSS
	}
	return kind
}

// Validate checks the source URL and, for HTML sources, the required selectors.
func (s FeedSource) Validate() error {
	if err := ValidateURL(s.URL); err != nil {
		return err
	}
	switch s.SourceKind() {
	case SourceKindRSS:
		return nil
	case SourceKindHTML:
		if s.Selectors == nil || s.Selectors.Item == "" || s.Selectors.Title == "" || s.Selectors.URL == "" {
			return &ValidationError{Field: "selectors", Message: "html sources need item, title and url selectors"}
		}
		return nil
	default:
		return &ValidationError{Field: "type", Message: "unknown source type: " + s.Kind}
	}
}

// RSSSources wraps plain feed URLs as enabled RSS sources.
func RSSSources(urls []string) []FeedSource {
	out := make([]FeedSource, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		out = append(out, FeedSource{URL: u, Kind: SourceKindRSS})
	}
	return out
}
