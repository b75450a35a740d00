package summarizer

import (
	"strings"
	"unicode/utf8"
)

// Shorten limits text to maxRunes while keeping whole sentences where possible.
//
// Text that already fits is returned unchanged. Otherwise the longest run of
// leading sentences that fits is used. When no complete sentence fits, the
// text is cut at a word boundary, then pulled back to the last real sentence
// period if that period lies past the first third of the limit.
//
// Parameters:
//   - text: Whitespace-normalized text
//   - maxRunes: Maximum length in Unicode code points
//
// Returns:
//   - A string of at most maxRunes runes
//
// Example:
//
//	Shorten("First sentence here. Second sentence here.", 25) // "First sentence here."
func Shorten(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	result := ""
	for _, sentence := range splitSentences(text) {
		candidate := sentence
		if result != "" {
			candidate = trimSpace(result + " " + sentence)
		}
		if utf8.RuneCountInString(candidate) > maxRunes {
			break
		}
		result = candidate
	}
	if result != "" && utf8.RuneCountInString(result) > minSentenceRunes {
		return result
	}

	return cutAtBoundary(text, maxRunes)
}

// cutAtBoundary truncates text at the last word boundary before maxRunes and
// prefers ending on a period that is not part of an abbreviation.
func cutAtBoundary(text string, maxRunes int) string {
	runes := []rune(text)
	if maxRunes < 0 {
		maxRunes = 0
	}
	if maxRunes < len(runes) {
		runes = runes[:maxRunes]
	}
	truncated := string(runes)
	if i := strings.LastIndex(truncated, " "); i >= 0 {
		truncated = truncated[:i]
	}

	tr := []rune(truncated)
	lastGoodPeriod := -1
	for pos := 0; pos+1 < len(tr); pos++ {
		if tr[pos] != '.' || !isSpace(tr[pos+1]) {
			continue
		}
		if word := trailingWordRe.FindString(string(tr[:pos])); word != "" {
			if abbreviationWordRe.MatchString(word) {
				continue
			}
		}
		lastGoodPeriod = pos
	}

	if lastGoodPeriod > maxRunes/3 {
		return dropUnpairedLeadingQuote(string(tr[:lastGoodPeriod+1]))
	}
	clean := strings.TrimRight(truncated, ",;:\" '")
	return dropUnpairedLeadingQuote(strings.TrimRightFunc(clean, isSpace))
}

// dropUnpairedLeadingQuote removes an opening quote whose closing quote was
// cut off.
func dropUnpairedLeadingQuote(text string) string {
	switch {
	case strings.HasPrefix(text, "\"") && strings.Count(text, "\"") == 1:
		return strings.TrimLeftFunc(text[1:], isSpace)
	case strings.HasPrefix(text, "\u201c") && !strings.Contains(text, "\u201d"):
		return strings.TrimLeftFunc(strings.TrimPrefix(text, "\u201c"), isSpace)
	}
	return text
}
