package entity_test

import (
	"errors"
	"testing"

	"card-news/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestFeedItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		item    entity.FeedItem
		wantErr bool
	}{
		{
			name:    "valid",
			item:    entity.FeedItem{Title: "Headline", URL: "https://example.com/a"},
			wantErr: false,
		},
		{
			name:    "missing title",
			item:    entity.FeedItem{Title: "  ", URL: "https://example.com/a"},
			wantErr: true,
		},
		{
			name:    "missing url",
			item:    entity.FeedItem{Title: "Headline"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			assert.Equal(t, tt.wantErr, err != nil)
			if err != nil {
				var vErr *entity.ValidationError
				assert.True(t, errors.As(err, &vErr))
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com/a", entity.NormalizeURL("https://Example.com/A/"))
	assert.Equal(t, "https://example.com/a", entity.NormalizeURL("https://example.com/a///"))
	assert.Equal(t, "", entity.NormalizeURL(""))

	item := entity.FeedItem{URL: "HTTPS://EXAMPLE.COM/news/"}
	assert.Equal(t, "https://example.com/news", item.NormalizedURL())
}

func TestFeedItem_WithFullText(t *testing.T) {
	item := entity.FeedItem{Title: "t", URL: "https://example.com"}
	enhanced := item.WithFullText("body")

	assert.Equal(t, "", item.FullText, "original must not change")
	assert.Equal(t, "body", enhanced.FullText)
}

func TestStory_Clone(t *testing.T) {
	s := entity.Story{KeyDetails: []string{"a"}, Tags: []string{"x"}}
	c := s.Clone()
	c.KeyDetails[0] = "changed"
	c.Tags[0] = "changed"

	assert.Equal(t, "a", s.KeyDetails[0])
	assert.Equal(t, "x", s.Tags[0])
}

func TestFeedSource(t *testing.T) {
	disabled := false
	tests := []struct {
		name        string
		src         entity.FeedSource
		wantKind    string
		wantEnabled bool
		wantErr     bool
	}{
		{
			name:        "plain rss",
			src:         entity.FeedSource{URL: "https://example.com/rss"},
			wantKind:    entity.SourceKindRSS,
			wantEnabled: true,
		},
		{
			name:        "disabled",
			src:         entity.FeedSource{URL: "https://example.com/rss", Enabled: &disabled},
			wantKind:    entity.SourceKindRSS,
			wantEnabled: false,
		},
		{
			name: "html with selectors",
			src: entity.FeedSource{
				URL:       "https://example.com/news",
				Kind:      "HTML",
				Selectors: &entity.ListingSelectors{Item: ".item", Title: "h3", URL: "a"},
			},
			wantKind:    entity.SourceKindHTML,
			wantEnabled: true,
		},
		{
			name:        "html without selectors",
			src:         entity.FeedSource{URL: "https://example.com/news", Kind: "html"},
			wantKind:    entity.SourceKindHTML,
			wantEnabled: true,
			wantErr:     true,
		},
		{
			name:        "unknown type",
			src:         entity.FeedSource{URL: "https://example.com/news", Kind: "json"},
			wantKind:    "json",
			wantEnabled: true,
			wantErr:     true,
		},
		{
			name:        "bad url",
			src:         entity.FeedSource{URL: "ftp://example.com/rss"},
			wantKind:    entity.SourceKindRSS,
			wantEnabled: true,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, tt.src.SourceKind())
			assert.Equal(t, tt.wantEnabled, tt.src.IsEnabled())
			err := tt.src.Validate()
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestRSSSources(t *testing.T) {
	got := entity.RSSSources([]string{" https://a.example/rss ", "", "https://b.example/rss"})

	assert.Equal(t, []entity.FeedSource{
		{URL: "https://a.example/rss", Kind: entity.SourceKindRSS},
		{URL: "https://b.example/rss", Kind: entity.SourceKindRSS},
	}, got)
}
