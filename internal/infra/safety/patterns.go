package safety

import "regexp"

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+`)

	// krIDRe matches Korean resident registration numbers (YYMMDD-NNNNNNN).
	krIDRe = regexp.MustCompile(`\d{6}-\d{7}`)

	phoneRe = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{4}`)

	addressRe = regexp.MustCompile(`(?i)` +
		`(?:\d{1,5}\s[\p{L}\p{N}_\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Court|Ct))` +
		`|(?:[\x{AC00}-\x{D7A3}]+(?:시|도|군|구|읍|면|동|리)\s[\x{AC00}-\x{D7A3}\d\s-]+)`)

	multiSpaceRe = regexp.MustCompile(`  +`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// redactors run in this order; a later pattern never sees text an earlier one removed.
var redactors = []*regexp.Regexp{emailRe, krIDRe, phoneRe, addressRe}

// Trigger phrases that mark a story as unverified. Matched as lowercase substrings.
var (
	englishTriggers = []string{
		"alleged", "reportedly", "unconfirmed", "rumor", "rumour",
		"sources say", "claims",
	}
	koreanTriggers = []string{
		"의혹", "미확인", "루머", "소문", "제보", "관계자",
		"알려졌", "전해졌", "보도됐",
	}
)

const (
	// CautionPrefixKorean is prepended to Korean stories that need hedging.
	CautionPrefixKorean = "보도에 따르면, "
	// CautionPrefixEnglish is prepended to every other story that needs hedging.
	CautionPrefixEnglish = "According to reports, "
)
