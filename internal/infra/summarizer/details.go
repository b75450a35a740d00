package summarizer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxKeyDetails    = 4
	detailMaxRunes   = 200
	detailOverlapMax = 0.5
)

type scoredSentence struct {
	score float64
	index int
	text  string
}

// scoreDetail rates how informative a sentence is as a standalone fact.
func scoreDetail(s string, idx, total int) float64 {
	score := 0.0
	if strings.IndexFunc(s, unicode.IsDigit) >= 0 {
		score += 2.0
	}
	if strings.ContainsAny(s, "\"\u201c") {
		score += 1.5
	}
	if idx >= 1 && idx <= total-2 {
		score += 0.5
	}
	n := utf8.RuneCountInString(s)
	if n < 50 {
		score -= 2.0
	}
	if n >= 80 {
		score += 1.0
	}
	// fragments cut mid-sentence start lowercase
	if first, _ := utf8.DecodeRuneInString(s); s != "" && unicode.IsLower(first) {
		score -= 3.0
	}
	return score
}

// buildKeyDetails selects up to maxKeyDetails data-rich sentences that do not
// repeat each other.
func buildKeyDetails(sentences []string) []string {
	if len(sentences) <= 2 {
		details := make([]string, 0, len(sentences))
		for _, s := range sentences {
			details = append(details, cleanDetail(s))
		}
		return details
	}

	scored := make([]scoredSentence, len(sentences))
	for i, s := range sentences {
		scored[i] = scoredSentence{score: scoreDetail(s, i, len(sentences)), index: i, text: s}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].score != scored[b].score {
			return scored[a].score > scored[b].score
		}
		return scored[a].index < scored[b].index
	})

	details := make([]string, 0, maxKeyDetails)
	used := wordSet{}
	for _, candidate := range scored {
		sw := words(candidate.text)
		if len(used) > 0 {
			denominator := len(sw)
			if denominator == 0 {
				denominator = 1
			}
			if float64(intersectionSize(sw, used))/float64(denominator) > detailOverlapMax {
				continue
			}
		}
		if cleaned := cleanDetail(candidate.text); cleaned != "" {
			details = append(details, cleaned)
			for w := range sw {
				used[w] = struct{}{}
			}
		}
		if len(details) >= maxKeyDetails {
			break
		}
	}
	return details
}

// cleanDetail shortens a detail to detailMaxRunes and gives it a natural ending.
func cleanDetail(text string) string {
	shortened := []rune(Shorten(StripWirePrefix(text), detailMaxRunes))

	if len(shortened) > 0 && !isTerminal(shortened[len(shortened)-1]) {
		cut := false
		for _, sep := range []rune{',', ';'} {
			if last := lastIndexRune(shortened, sep); last > len(shortened)/3 {
				shortened = []rune(strings.TrimRightFunc(string(shortened[:last]), isSpace) + ".")
				cut = true
				break
			}
		}
		if !cut {
			shortened = []rune(strings.TrimRight(string(shortened), " ,;:'\""))
			if len(shortened) > 0 && !isTerminal(shortened[len(shortened)-1]) {
				if len(shortened) >= detailMaxRunes {
					shortened = shortened[:detailMaxRunes-1]
				}
				shortened = append(shortened, '.')
			}
		}
	}

	shortened = []rune(dropUnpairedLeadingQuote(string(shortened)))

	if len(shortened) > 0 && unicode.IsLower(shortened[0]) {
		shortened[0] = unicode.ToUpper(shortened[0])
	}
	return string(shortened)
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func lastIndexRune(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
