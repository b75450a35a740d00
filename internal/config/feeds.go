package config

import (
	"fmt"
	"log/slog"
	"os"

	"card-news/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

// FeedsFile is the layout of the NEWS_FEEDS_FILE document.
//
//	feeds:
//	  - url: https://example.com/rss
//	    name: Example
//	  - url: https://example.com/news
//	    type: html
//	    enabled: false
//	    selectors: {item: "li.news", title: "h3", url: "a"}
type FeedsFile struct {
	Feeds []entity.FeedSource `yaml:"feeds"`
}

// LoadFeedsFile reads a feeds YAML file and returns its enabled sources in file order.
// Every enabled source is validated; one invalid entry fails the whole file.
func LoadFeedsFile(path string) ([]entity.FeedSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}
	return ParseFeeds(data)
}

// ParseFeeds decodes a feeds YAML document. Disabled entries are skipped.
func ParseFeeds(data []byte) ([]entity.FeedSource, error) {
	var doc FeedsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse feeds file: %w", err)
	}

	feeds := make([]entity.FeedSource, 0, len(doc.Feeds))
	for i, src := range doc.Feeds {
		if !src.IsEnabled() {
			slog.Debug("skipping disabled feed",
				slog.String("url", src.URL),
				slog.String("name", src.Name))
			continue
		}
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("feeds[%d]: %w", i, err)
		}
		feeds = append(feeds, src)
	}
	return feeds, nil
}
