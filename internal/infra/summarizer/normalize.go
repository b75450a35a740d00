package summarizer

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"card-news/internal/domain/entity"
)

// spaceClass matches one whitespace character, including the Unicode
// separators that feeds sometimes carry (ideographic space, NBSP).
const spaceClass = `[` + spaceChars + `]`

const spaceChars = `\t\n\v\f\r \x{1c}-\x{1f}\x{85}\p{Z}`

var (
	// wirePrefixRe matches wire-service slugs such as (LEAD), (2nd LD) or (ATTN: ...).
	wirePrefixRe = regexp.MustCompile(`(?i)^` + spaceClass + `*\(` +
		`(?:LEAD|URGENT|ATTN[^)]*|PHOTO[^)]*|END|RECAP|CORRECTED|` +
		`(?:1st|2nd|3rd|[0-9]+th)` + spaceClass + `+LD[^)]*)` +
		`\)` + spaceClass + `*`)

	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
)

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// normalizeWhitespace collapses every whitespace run into one space and trims the ends.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

// StripWirePrefix removes a leading wire-service slug from text and trims it.
//
// Example:
//
//	StripWirePrefix("(1st LD) Seoul subway resumes") // "Seoul subway resumes"
func StripWirePrefix(text string) string {
	return trimSpace(wirePrefixRe.ReplaceAllString(text, ""))
}

// DecodeHTML unescapes entities, replaces leftover tags with spaces and
// normalizes whitespace.
func DecodeHTML(text string) string {
	decoded := html.UnescapeString(text)
	decoded = htmlTagRe.ReplaceAllString(decoded, " ")
	decoded = strings.ReplaceAll(decoded, "\u00a0", " ")
	return normalizeWhitespace(decoded)
}

// CleanTitle returns the display form of a feed title.
func CleanTitle(title string) string {
	return DecodeHTML(StripWirePrefix(title))
}

func endsWithTerminal(s string) bool {
	if s == "" {
		return false
	}
	return strings.ContainsAny(s[len(s)-1:], ".!?")
}

// ensurePeriod terminates text with a period unless it already ends in . ! or ?.
func ensurePeriod(text string) string {
	text = strings.TrimRightFunc(text, isSpace)
	if text != "" && !endsWithTerminal(text) {
		return text + "."
	}
	return text
}

// combinedText builds the single working text for an item: the cleaned title
// followed by the full article body, or by the feed summary when no body was fetched.
func combinedText(item entity.FeedItem) string {
	title := CleanTitle(item.Title)
	if item.FullText != "" {
		cleaned := normalizeWhitespace(DecodeHTML(StripWirePrefix(item.FullText)))
		if strings.HasPrefix(strings.ToLower(cleaned), strings.ToLower(title)) {
			body := []rune(cleaned)
			n := len([]rune(title))
			if n > len(body) {
				n = len(body)
			}
			cleaned = strings.TrimLeftFunc(string(body[n:]), isSpace)
		}
		return normalizeWhitespace(ensurePeriod(title) + " " + cleaned)
	}

	parts := []string{ensurePeriod(title)}
	if item.Summary != "" {
		parts = append(parts, DecodeHTML(StripWirePrefix(item.Summary)))
	}
	return normalizeWhitespace(strings.Join(parts, " "))
}
