package fetcher

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MinArticleRunes is the shortest text accepted as an article body.
const MinArticleRunes = 150

// DefaultArticleSelectors lists article body containers of the news sites the
// service reads, most specific first.
var DefaultArticleSelectors = []string{
	".story-news",   // Yonhap English
	".article-txt",  // Korea Herald
	"#article_body", // JoongAng Daily
	"#viewContent",
	"article .body",
	".article-body",
	".article_body",
	"#articleBody",
	".content-body",
	"article p",
	".story-body",
	"article",
}

// SelectorExtractor pulls article text out of a page with CSS selectors.
// It is the fallback for pages where readability finds too little text.
type SelectorExtractor struct {
	selectors []string
	minRunes  int
}

// NewSelectorExtractor creates an extractor that tries selectors in order.
// A nil slice means DefaultArticleSelectors.
func NewSelectorExtractor(selectors []string) *SelectorExtractor {
	if selectors == nil {
		selectors = DefaultArticleSelectors
	}
	return &SelectorExtractor{selectors: selectors, minRunes: MinArticleRunes}
}

// Extract returns the text of the first selector whose matches, joined by a
// space, reach MinArticleRunes. It returns "" when no selector qualifies.
func (e *SelectorExtractor) Extract(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	for _, selector := range e.selectors {
		matches := doc.Find(selector)
		if matches.Length() == 0 {
			continue
		}
		parts := make([]string, 0, matches.Length())
		matches.Each(func(_ int, s *goquery.Selection) {
			parts = append(parts, s.Text())
		})
		text := strings.TrimSpace(strings.Join(parts, " "))
		if utf8.RuneCountInString(text) >= e.minRunes {
			return text, nil
		}
	}
	return "", nil
}
