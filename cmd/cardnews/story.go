package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"card-news/internal/domain/entity"
	"card-news/internal/infra/safety"
	"card-news/internal/infra/summarizer"
)

// runStory builds a single story offline. It touches neither the network
// nor the history.
func runStory(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("story", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		item         entity.FeedItem
		fullTextFile string
		noSafety     bool
	)
	fs.StringVar(&item.Title, "title", "", "Article title (required)")
	fs.StringVar(&item.Summary, "summary", "", "Feed summary text")
	fs.StringVar(&fullTextFile, "full-text-file", "", "File holding the full article body")
	fs.StringVar(&item.URL, "url", "", "Article URL")
	fs.StringVar(&item.PublishedAt, "published", "", "Publication date as given by the feed")
	fs.StringVar(&item.SourceDomain, "domain", "", "Source domain (derived from --url when empty)")
	fs.BoolVar(&noSafety, "no-safety", false, "Skip PII redaction and cautious phrasing")
	if err := fs.Parse(args); err != nil {
		return errReported
	}

	if strings.TrimSpace(item.Title) == "" {
		return errors.New("--title is required")
	}
	if fullTextFile != "" {
		body, err := os.ReadFile(fullTextFile)
		if err != nil {
			return fmt.Errorf("read full text: %w", err)
		}
		item.FullText = string(body)
	}
	if item.SourceDomain == "" && item.URL != "" {
		item.SourceDomain = entity.DomainOf(item.URL)
	}

	story := summarizer.BuildStory(item)
	story, _ = safety.NewFilter(!noSafety).Sanitize(story)

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(story)
}
