// Package text provides utilities for text processing and analysis.
// Every length in card-news is measured in Unicode code points so that
// Korean and English content share the same limits.
package text

import (
	"regexp"
	"strings"
)

// CountRunes counts the number of Unicode characters (runes) in the given text.
// This function correctly handles multi-byte characters including Korean,
// emoji, and other Unicode characters by counting runes instead of bytes.
//
// Examples:
//
//	CountRunes("hello")      // returns 5 (ASCII text)
//	CountRunes("안녕하세요")   // returns 5 (Korean text)
//	CountRunes("hello세계")   // returns 7 (mixed text)
//	CountRunes("")           // returns 0 (empty string)
func CountRunes(text string) int {
	return len([]rune(text))
}

// TruncateRunes returns at most max runes of text. It never splits a rune.
func TruncateRunes(text string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max])
}

var slugSeparator = regexp.MustCompile(`[^a-z0-9\x{AC00}-\x{D7A3}]+`)

// Slugify lowercases text, replaces every run of characters outside
// [a-z0-9가-힣] with "-", trims dashes at both ends and caps the result at max runes.
//
// Example:
//
//	Slugify("Seoul Subway: Service Resumes!", 40) // "seoul-subway-service-resumes"
func Slugify(text string, max int) string {
	slug := slugSeparator.ReplaceAllString(strings.ToLower(text), "-")
	slug = strings.Trim(slug, "-")
	return TruncateRunes(slug, max)
}
