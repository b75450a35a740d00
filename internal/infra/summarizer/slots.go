package summarizer

import (
	"strings"
	"unicode/utf8"

	"card-news/internal/domain/entity"
)

const (
	hookTitleMaxRunes   = 120
	slotMaxRunes        = 500
	supportingMaxRunes  = 300
	whatHappenedScan    = 6
	titleOverlapLimit   = 0.7
	supportingMinRunes  = 20
	keywordMatchesLimit = 2
)

// WhereWhenPending is used when neither metadata nor a time reference is available.
const WhereWhenPending = "Details pending"

// Slot names reported when a builder falls back to its default strategy.
const (
	SlotWhatHappened = "what_happened"
	SlotImpact       = "impact"
	SlotWhatNext     = "what_next"
	SlotWhereWhen    = "where_when"
)

func words(s string) wordSet {
	set := wordSet{}
	for _, w := range strings.FieldsFunc(strings.ToLower(s), isSpace) {
		set[w] = struct{}{}
	}
	return set
}

func intersectionSize(a, b wordSet) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

// findByKeywords returns up to limit sentences containing a keyword as a whole word.
func findByKeywords(sentences []string, keywords wordSet, limit int) []string {
	var results []string
	for _, s := range sentences {
		if intersectionSize(words(s), keywords) == 0 {
			continue
		}
		results = append(results, s)
		if len(results) >= limit {
			break
		}
	}
	return results
}

func joinShortened(sentences []string) string {
	parts := make([]string, len(sentences))
	for i, s := range sentences {
		parts[i] = Shorten(s, supportingMaxRunes)
	}
	return strings.Join(parts, " ")
}

// buildWhatHappened prefers early sentences that add information beyond the title.
// The second return value reports whether it fell back to the opening sentences.
func buildWhatHappened(sentences []string, title string) (string, bool) {
	if len(sentences) == 0 {
		return Shorten(CleanTitle(title), slotMaxRunes), true
	}

	titleWords := words(title)
	denominator := len(titleWords)
	if denominator == 0 {
		denominator = 1
	}

	var supporting []string
	for i, s := range sentences {
		if i >= whatHappenedScan {
			break
		}
		overlap := float64(intersectionSize(titleWords, words(s))) / float64(denominator)
		if overlap < titleOverlapLimit && utf8.RuneCountInString(s) > supportingMinRunes {
			supporting = append(supporting, Shorten(s, supportingMaxRunes))
		}
		if len(supporting) >= 2 {
			break
		}
	}

	if len(supporting) > 0 {
		return Shorten(strings.Join(supporting, " "), slotMaxRunes), false
	}
	return Shorten(strings.Join(firstN(sentences, 2), " "), slotMaxRunes), true
}

// buildImpact picks consequence sentences, then the middle sentence, then the last one.
func buildImpact(sentences []string) (string, bool) {
	if matches := findByKeywords(sentences, defaultLexicon.impact, keywordMatchesLimit); len(matches) > 0 {
		return Shorten(joinShortened(matches), slotMaxRunes), false
	}
	var result string
	switch {
	case len(sentences) > 2:
		result = sentences[len(sentences)/2]
	case len(sentences) > 0:
		result = sentences[len(sentences)-1]
	}
	return Shorten(result, slotMaxRunes), true
}

// buildWhatNext looks for forward-looking sentences in the second half first.
func buildWhatNext(sentences []string) (string, bool) {
	if len(sentences) == 0 {
		return "", true
	}
	mid := len(sentences) / 2
	if mid < 1 {
		mid = 1
	}
	matches := findByKeywords(sentences[mid:], defaultLexicon.future, keywordMatchesLimit)
	if len(matches) == 0 {
		matches = findByKeywords(sentences, defaultLexicon.future, keywordMatchesLimit)
	}
	if len(matches) > 0 {
		return Shorten(joinShortened(matches), slotMaxRunes), false
	}
	return Shorten(sentences[len(sentences)-1], slotMaxRunes), true
}

// buildWhereWhen joins publication time, source domain and the first sentence
// that mentions a day.
func buildWhereWhen(sentences []string, item entity.FeedItem) (string, bool) {
	var parts []string
	if item.PublishedAt != "" {
		parts = append(parts, item.PublishedAt)
	}
	if item.SourceDomain != "" {
		parts = append(parts, item.SourceDomain)
	}
	for _, s := range sentences {
		if containsAny(strings.ToLower(s), defaultLexicon.timeMarkers) {
			parts = append(parts, s)
			break
		}
	}
	if len(parts) == 0 {
		return WhereWhenPending, true
	}
	return strings.Join(parts, " | "), false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func firstN(s []string, n int) []string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
