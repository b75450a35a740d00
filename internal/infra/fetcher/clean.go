package fetcher

import (
	"strings"
	"unicode/utf8"
)

var noisePhrases = []string{
	"copyright", "all rights reserved", "©",
	"subscribe", "sign up", "newsletter",
	"advertisement", "promoted content",
	"share this", "related articles",
	"photo not for sale", "not for sale",
	"getty images", "(yonhap)", "(reuters)",
	"click here", "read more", "send us",
}

// CleanArticleText drops boilerplate lines from scraped article text:
// lines with site chrome phrases, short "By ..." bylines and short lines
// without a closing period (captions, labels). Remaining lines are trimmed
// and joined with "\n".
func CleanArticleText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || isNoiseLine(line) {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

func isNoiseLine(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range noisePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	n := utf8.RuneCountInString(line)
	if strings.HasPrefix(line, "By ") && n < 40 {
		return true
	}
	return n < 15 && !strings.HasSuffix(line, ".")
}
