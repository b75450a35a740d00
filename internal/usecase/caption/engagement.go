// Package caption builds the social caption and the card deck for a story.
package caption

import (
	"crypto/md5" // #nosec G501 -- used for stable template selection, not security
	"encoding/binary"
)

var hookTemplates = []string{
	"Here is what you need to know:",
	"This just happened:",
	"Important update:",
	"Did you see this?",
	"You should know about this:",
	"This changes everything:",
	"Breaking it down for you:",
	"The story everyone is talking about:",
}

var ctaTemplates = []string{
	"Follow for daily news updates",
	"Save this for later",
	"Share with someone who needs to know",
	"Turn on notifications so you never miss out",
	"Follow for more news breakdowns",
	"Double tap if you found this useful",
}

var questionTemplates = []string{
	"What do you think about this?",
	"Were you expecting this?",
	"How does this affect you?",
	"Share your thoughts below",
	"Did you already know about this?",
	"What should happen next?",
}

// PickHook returns an opening line chosen deterministically from seed.
func PickHook(seed string) string {
	return pick(seed, hookTemplates, "hook")
}

// PickCTA returns a call-to-action line chosen deterministically from seed.
func PickCTA(seed string) string {
	return pick(seed, ctaTemplates, "cta")
}

// PickQuestion returns an engagement question chosen deterministically from seed.
func PickQuestion(seed string) string {
	return pick(seed, questionTemplates, "question")
}

// pick indexes templates by the first 8 hex digits of md5(salt + ":" + seed),
// read as a big-endian uint32.
func pick(seed string, templates []string, salt string) string {
	sum := md5.Sum([]byte(salt + ":" + seed)) // #nosec G401
	index := binary.BigEndian.Uint32(sum[:4]) % uint32(len(templates))
	return templates[index]
}
