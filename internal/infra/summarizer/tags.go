package summarizer

import (
	"regexp"
	"sort"
	"strings"
)

const maxTags = 8

var tagTokenRe = regexp.MustCompile(`[a-zA-Z\x{AC00}-\x{D7A3}]{2,}`)

// ExtractTags returns the most frequent non-stopword tokens of text.
// Ties keep the order in which tokens first appear.
func ExtractTags(text string) []string {
	counts := map[string]int{}
	var order []string
	for _, token := range tagTokenRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := defaultLexicon.stopwords[token]; stop {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	firstSeen := make(map[string]int, len(order))
	for i, token := range order {
		firstSeen[token] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ca, cb := counts[order[a]], counts[order[b]]
		if ca != cb {
			return ca > cb
		}
		return firstSeen[order[a]] < firstSeen[order[b]]
	})

	tags := make([]string, 0, maxTags)
	for _, token := range firstN(order, maxTags) {
		tags = append(tags, token)
	}
	return tags
}
