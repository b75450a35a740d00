package caption

import (
	"strings"
	"unicode/utf8"

	"card-news/internal/domain/entity"
)

// MaxCaptionRunes is the Threads caption limit.
const MaxCaptionRunes = 500

const captionBullets = 3

// Compose builds the post caption for story within MaxCaptionRunes.
//
// Sections are dropped in this order until the caption fits:
//  1. hashtags
//  2. engagement question
//  3. call to action
//  4. bullet details, last one first
//
// A title that alone exceeds the limit is truncated.
func Compose(story entity.Story) string {
	seed := story.HookTitle
	cta := PickCTA(seed)
	question := PickQuestion(seed)
	hashtags := strings.Join(BuildHashtags(story.Tags, story.HookTitle), " ")
	bullets := story.KeyDetails
	if len(bullets) > captionBullets {
		bullets = bullets[:captionBullets]
	}

	attempts := []func() string{
		func() string { return assemble(story.HookTitle, bullets, cta, question, hashtags) },
		func() string { return assemble(story.HookTitle, bullets, cta, question, "") },
		func() string { return assemble(story.HookTitle, bullets, cta, "", "") },
		func() string { return assemble(story.HookTitle, bullets, "", "", "") },
	}
	for _, attempt := range attempts {
		if c := attempt(); fits(c) {
			return c
		}
	}

	for n := len(bullets) - 1; n >= 0; n-- {
		if c := assemble(story.HookTitle, bullets[:n], "", "", ""); fits(c) {
			return c
		}
	}

	c := []rune(assemble(story.HookTitle, nil, "", "", ""))
	if len(c) > MaxCaptionRunes {
		c = c[:MaxCaptionRunes]
	}
	return string(c)
}

func fits(caption string) bool {
	return utf8.RuneCountInString(caption) <= MaxCaptionRunes
}

// assemble joins the caption sections with blank lines, skipping empty ones.
func assemble(title string, bullets []string, cta, question, hashtags string) string {
	parts := []string{title}
	if len(bullets) > 0 {
		parts = append(parts, "")
		for _, d := range bullets {
			parts = append(parts, "  "+d)
		}
	}
	for _, section := range []string{cta, question, hashtags} {
		if section != "" {
			parts = append(parts, "", section)
		}
	}
	return strings.Join(parts, "\n")
}
