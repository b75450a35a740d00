package caption

import (
	"fmt"
	"strings"
	"time"

	"card-news/internal/domain/entity"
)

// NumCards is the size of every card deck.
const NumCards = 5

// Brand identifies the account that publishes the cards.
type Brand struct {
	Name   string
	Handle string
}

// publishedLayouts are the date formats feeds use for publication times.
var publishedLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339,
}

// FormatPublishedDate renders a feed publication time as "Jan 2, 2006".
// Unparseable input yields "".
func FormatPublishedDate(publishedAt string) string {
	publishedAt = strings.TrimSpace(publishedAt)
	if publishedAt == "" {
		return ""
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, publishedAt); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return ""
}

// BuildCards lays a story out as a five-card deck: cover, impact, key details,
// what's next and a closing call-to-action card.
func BuildCards(story entity.Story, brand Brand) []entity.Card {
	bullets := make([]string, len(story.KeyDetails))
	for i, d := range story.KeyDetails {
		bullets[i] = "- " + d
	}

	cards := []entity.Card{
		{
			Title:  story.HookTitle,
			Body:   story.WhatHappened,
			Header: "BREAKING",
			Footer: FormatPublishedDate(story.PublishedAt),
		},
		{
			Title:  "The Impact",
			Body:   story.Impact,
			Header: "WHY IT MATTERS",
		},
		{
			Title:  "Key Details",
			Body:   strings.Join(bullets, "\n\n"),
			Header: "THE FACTS",
		},
		{
			Title:  "What's Next",
			Body:   story.WhatNext,
			Header: "LOOKING AHEAD",
		},
		{
			Body: fmt.Sprintf("%s\n\nFollow %s\nfor daily news updates\n\nSave this post\nShare with friends",
				brand.Name, brand.Handle),
		},
	}
	for i := range cards {
		cards[i].Index = i + 1
		cards[i].Total = NumCards
	}
	return cards
}
