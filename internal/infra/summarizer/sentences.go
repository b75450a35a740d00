package summarizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordJoiner is an invisible marker used to hide periods from the splitter.
const wordJoiner = "\u2060"

const minSentenceRunes = 15

// abbreviationWords ends with a period that does not close a sentence.
const abbreviationWords = `S|U|R|N|E|W|Dr|Mr|Mrs|Ms|Prof|Gen|Gov|Rep|Sen|Jr|Sr|Inc|Corp|Ltd|Co|vs|etc|approx` +
	`|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec` +
	`|No|Vol|Dept|Ave|St|Blvd|Ft`

const wordClass = `[\p{L}\p{N}_]`

var (
	// abbreviationRe matches "Dr. " style tokens. The leading word boundary is
	// checked by hand because RE2 word boundaries are ASCII only.
	abbreviationRe = regexp.MustCompile(`(?i)(?:` + abbreviationWords + `)\.` + spaceClass)

	// abbreviationWordRe reports whether a whole word is a known abbreviation.
	abbreviationWordRe = regexp.MustCompile(`(?i)^(?:` + abbreviationWords + `)$`)

	usRe = regexp.MustCompile(`U\.S\.`)

	// listMarkerRe matches numbered list markers like "1. " and "30. ". Only
	// markers after whitespace are protected; "2024. " still ends a sentence.
	listMarkerRe = regexp.MustCompile(`\p{Nd}{1,2}\.` + spaceClass)

	trailingWordRe = regexp.MustCompile(wordClass + `+$`)

	noiseRe = regexp.MustCompile(`(?im)(` +
		`photo not for sale|yonhap\)|all rights reserved|` +
		`copyright(?:[^\p{L}\p{N}_]|$)|©|getty images|afp|reuters\)|ap\)|` +
		`^` + spaceClass + `*by` + spaceClass + `+[a-z][\p{L}\p{N}_` + spaceChars + `-]{2,30}$|` +
		`^` + spaceClass + `*\([^)]*\)` + spaceClass + `*$|` +
		`^` + spaceClass + `*` + wordClass + `+@` + wordClass + `+\.` + wordClass + `+|` +
		`send us your|click here|read more|subscribe|` +
		`related article|recommended|advertisement)`)
)

// startsWord reports whether byte offset i in s begins a new word.
func startsWord(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

// afterSpace reports whether byte offset i in s follows whitespace or is the start of s.
func afterSpace(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isSpace(r)
}

// replaceMatches rewrites every match of re accepted by keep.
func replaceMatches(s string, re *regexp.Regexp, keep func(s string, start int) bool, repl func(m string) string) string {
	locs := re.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		if !keep(s, loc[0]) {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(repl(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// protectPeriods hides periods that belong to abbreviations, "U.S." and list
// markers so that splitSentences does not break on them.
func protectPeriods(text string) string {
	protected := replaceMatches(text, abbreviationRe, startsWord, func(m string) string {
		return strings.ReplaceAll(m, ". ", wordJoiner+"."+wordJoiner+" ")
	})
	protected = replaceMatches(protected, usRe, startsWord, func(string) string {
		return "U" + wordJoiner + ".S" + wordJoiner + "."
	})
	return replaceMatches(protected, listMarkerRe, afterSpace, func(m string) string {
		dot := strings.IndexByte(m, '.')
		return m[:dot] + wordJoiner + "." + wordJoiner + " "
	})
}

// splitPieces cuts text after . ! or ? followed by whitespace, and after a
// sentence-final ending whether or not whitespace follows. The whitespace is
// dropped.
func splitPieces(text string, finals [][]rune) []string {
	runes := []rune(text)
	var pieces []string
	start := 0
	for p := 1; p <= len(runes); p++ {
		prev := runes[p-1]
		terminal := prev == '.' || prev == '!' || prev == '?'
		closes := terminal && p < len(runes) && isSpace(runes[p])
		if !closes && !endsWithFinal(runes[:p], finals) {
			continue
		}
		pieces = append(pieces, string(runes[start:p]))
		q := p
		for q < len(runes) && isSpace(runes[q]) {
			q++
		}
		start = q
		p = q
	}
	pieces = append(pieces, string(runes[start:]))
	return pieces
}

func endsWithFinal(runes []rune, finals [][]rune) bool {
	for _, f := range finals {
		if len(runes) < len(f) {
			continue
		}
		tail := runes[len(runes)-len(f):]
		match := true
		for i := range f {
			if tail[i] != f[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// isNoise reports whether a sentence is a byline, credit or boilerplate line.
func isNoise(sentence string) bool {
	return noiseRe.MatchString(sentence)
}

// splitSentences splits normalized text into cleaned sentences. Fragments of
// 15 runes or fewer and noise lines are dropped.
func splitSentences(text string) []string {
	pieces := splitPieces(protectPeriods(text), defaultLexicon.sentenceFinals)
	sentences := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		s := trimSpace(strings.ReplaceAll(piece, wordJoiner, ""))
		if utf8.RuneCountInString(s) <= minSentenceRunes {
			continue
		}
		if isNoise(s) {
			continue
		}
		sentences = append(sentences, s)
	}
	return sentences
}
