// Package summarizer turns feed items into structured stories using
// deterministic text heuristics. The same item always yields the same story.
package summarizer

import (
	"time"
	"unicode/utf8"

	"card-news/internal/domain/entity"
)

// buildReport describes how a story was assembled.
type buildReport struct {
	sentences int
	fallbacks []string
}

// BuildStory transforms a FeedItem into a Story. It never fails: sparse
// input produces sparse fields.
//
// Field limits (in runes):
//   - HookTitle: 120
//   - WhatHappened, Impact, WhatNext: 500
//   - each KeyDetails entry: 200, at most 4 entries
//   - Tags: at most 8
func BuildStory(item entity.FeedItem) entity.Story {
	story, _ := build(item)
	return story
}

func build(item entity.FeedItem) (entity.Story, buildReport) {
	text := combinedText(item)
	sentences := splitSentences(text)
	report := buildReport{sentences: len(sentences)}

	track := func(slot string, value string, fellBack bool) string {
		if fellBack {
			report.fallbacks = append(report.fallbacks, slot)
		}
		return value
	}

	whatHappened, fb := buildWhatHappened(sentences, item.Title)
	whatHappened = track(SlotWhatHappened, whatHappened, fb)
	whereWhen, fb := buildWhereWhen(sentences, item)
	whereWhen = track(SlotWhereWhen, whereWhen, fb)
	impact, fb := buildImpact(sentences)
	impact = track(SlotImpact, impact, fb)
	whatNext, fb := buildWhatNext(sentences)
	whatNext = track(SlotWhatNext, whatNext, fb)

	story := entity.Story{
		HookTitle:    Shorten(CleanTitle(item.Title), hookTitleMaxRunes),
		WhatHappened: whatHappened,
		WhereWhen:    whereWhen,
		Impact:       impact,
		KeyDetails:   buildKeyDetails(sentences),
		WhatNext:     whatNext,
		Tags:         ExtractTags(text),
		SourceDomain: item.SourceDomain,
		SourceURL:    item.URL,
		PublishedAt:  item.PublishedAt,
	}
	return story, report
}

// Heuristic builds stories and reports metrics about each build.
type Heuristic struct {
	metrics StoryMetricsRecorder
}

// NewHeuristic creates a Heuristic. A nil recorder disables metrics.
func NewHeuristic(recorder StoryMetricsRecorder) *Heuristic {
	if recorder == nil {
		recorder = NoopStoryMetrics{}
	}
	return &Heuristic{metrics: recorder}
}

// BuildStory builds a story for item and records its metrics.
func (h *Heuristic) BuildStory(item entity.FeedItem) entity.Story {
	start := time.Now()
	story, report := build(item)

	h.metrics.RecordDuration(time.Since(start))
	h.metrics.RecordSentences(report.sentences)
	for _, slot := range report.fallbacks {
		h.metrics.RecordFallback(slot)
	}
	h.metrics.RecordFieldLength("hook_title", utf8.RuneCountInString(story.HookTitle))
	h.metrics.RecordFieldLength(SlotWhatHappened, utf8.RuneCountInString(story.WhatHappened))
	h.metrics.RecordFieldLength(SlotImpact, utf8.RuneCountInString(story.Impact))
	h.metrics.RecordFieldLength(SlotWhatNext, utf8.RuneCountInString(story.WhatNext))
	for _, d := range story.KeyDetails {
		h.metrics.RecordFieldLength("key_detail", utf8.RuneCountInString(d))
	}
	return story
}
