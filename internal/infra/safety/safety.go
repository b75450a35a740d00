// Package safety redacts personal data from stories and hedges unverified reports.
package safety

import (
	"strings"

	"card-news/internal/domain/entity"
)

// Report describes what a sanitize pass changed.
type Report struct {
	// Redacted is true when at least one field lost personal data.
	Redacted bool
	// CautionApplied is true when the caution prefix was added to WhatHappened.
	CautionApplied bool
}

// Filter applies PII redaction and cautious phrasing to stories.
// A disabled Filter returns stories untouched.
type Filter struct {
	enabled bool
}

// NewFilter creates a Filter.
func NewFilter(enabled bool) *Filter {
	return &Filter{enabled: enabled}
}

// Enabled reports whether the filter modifies stories.
func (f *Filter) Enabled() bool {
	return f.enabled
}

// Sanitize returns a sanitized copy of story. The input is never modified.
//
// WhatHappened, WhereWhen, Impact, WhatNext and every KeyDetails entry are
// redacted. HookTitle and Tags are carried over unchanged. The caution check
// looks at the story before redaction.
func (f *Filter) Sanitize(story entity.Story) (entity.Story, Report) {
	if !f.enabled {
		return story, Report{}
	}

	out := story.Clone()
	var report Report
	redact := func(s string) string {
		r := Redact(s)
		if r != s {
			report.Redacted = true
		}
		return r
	}

	out.WhatHappened = redact(story.WhatHappened)
	out.WhereWhen = redact(story.WhereWhen)
	out.Impact = redact(story.Impact)
	out.WhatNext = redact(story.WhatNext)
	for i, d := range story.KeyDetails {
		out.KeyDetails[i] = redact(d)
	}

	if NeedsCaution(story) {
		hedged := EnsureCautious(out.WhatHappened)
		report.CautionApplied = hedged != out.WhatHappened
		out.WhatHappened = hedged
	}
	return out, report
}

// SanitizeStory is a convenience wrapper around Filter.Sanitize.
func SanitizeStory(story entity.Story, enabled bool) entity.Story {
	out, _ := NewFilter(enabled).Sanitize(story)
	return out
}

// Redact removes e-mail addresses, Korean resident registration numbers,
// phone numbers and street addresses from text, then tidies whitespace.
func Redact(text string) string {
	for _, re := range redactors {
		text = re.ReplaceAllString(text, "")
	}
	text = strings.TrimSpace(multiSpaceRe.ReplaceAllString(text, " "))
	return blankLinesRe.ReplaceAllString(text, "\n\n")
}

// NeedsCaution reports whether the story text contains an unverified-report trigger.
func NeedsCaution(story entity.Story) bool {
	combined := strings.ToLower(strings.Join([]string{
		story.HookTitle,
		story.WhatHappened,
		story.Impact,
		story.WhatNext,
	}, " "))
	for _, triggers := range [][]string{englishTriggers, koreanTriggers} {
		for _, trigger := range triggers {
			if strings.Contains(combined, trigger) {
				return true
			}
		}
	}
	return false
}

// EnsureCautious prefixes text with the caution phrase for its language,
// unless it already starts with it.
func EnsureCautious(text string) string {
	prefix := CautionPrefixEnglish
	if containsHangul(text) {
		prefix = CautionPrefixKorean
	}
	if strings.HasPrefix(text, prefix) {
		return text
	}
	return prefix + text
}

func containsHangul(s string) bool {
	for _, r := range s {
		if r >= 0xAC00 && r <= 0xD7A3 {
			return true
		}
	}
	return false
}
