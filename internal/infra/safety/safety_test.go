package safety_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-news/internal/domain/entity"
	"card-news/internal/infra/safety"
)

func baseStory() entity.Story {
	return entity.Story{
		HookTitle:    "Subway service resumes",
		WhatHappened: "Service resumed after a short halt.",
		WhereWhen:    "2024-05-01 | example.com",
		Impact:       "Commuters faced delays.",
		KeyDetails:   []string{"Trains ran at reduced speed.", "Crews inspected the track."},
		WhatNext:     "A review is planned.",
		Tags:         []string{"subway", "service"},
		SourceDomain: "example.com",
		SourceURL:    "https://example.com/a",
		PublishedAt:  "2024-05-01",
	}
}

/* ───────── Redact ───────── */

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "email and resident number",
			in:   "Contact john@example.com or 900101-1234567 for details.",
			want: "Contact or for details.",
		},
		{
			name: "seoul phone number",
			in:   "Call 02-1234-5678 now.",
			want: "Call now.",
		},
		{
			name: "international phone number",
			in:   "Reach the desk at +82 10 1234 5678 today.",
			want: "Reach the desk at today.",
		},
		{
			name: "english street address",
			in:   "He lives at 221 Baker Street near the park.",
			want: "He lives at near the park.",
		},
		{
			name: "korean address",
			in:   "사무실은 강남구 역삼동 123-45 에 있다",
			want: "사무실은",
		},
		{
			name: "nothing to redact",
			in:   "Trains ran at reduced speed.",
			want: "Trains ran at reduced speed.",
		},
		{
			name: "blank lines collapsed",
			in:   "first\n\n\n\nsecond",
			want: "first\n\nsecond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safety.Redact(tt.in))
		})
	}
}

/* ───────── Sanitize ───────── */

func TestFilter_Sanitize_RedactsFields(t *testing.T) {
	story := baseStory()
	story.HookTitle = "Tips to tips@example.com"
	story.WhatHappened = "Contact john@example.com or 900101-1234567 for details."
	story.KeyDetails = []string{"Call 02-1234-5678 now.", "Crews inspected the track."}
	story.WhereWhen = "2024-05-01 | mail desk@example.com"

	got, report := safety.NewFilter(true).Sanitize(story)

	assert.True(t, report.Redacted)
	assert.False(t, report.CautionApplied)
	assert.NotContains(t, got.WhatHappened, "john@example.com")
	assert.NotContains(t, got.WhatHappened, "900101-1234567")
	assert.Equal(t, "Call now.", got.KeyDetails[0])
	assert.Equal(t, "2024-05-01 | mail", got.WhereWhen)
	// hook title and tags are not redacted
	assert.Equal(t, "Tips to tips@example.com", got.HookTitle)
	assert.Equal(t, story.Tags, got.Tags)
}

func TestFilter_Sanitize_DoesNotMutateInput(t *testing.T) {
	story := baseStory()
	story.KeyDetails = []string{"Call 02-1234-5678 now."}
	original := story.Clone()

	_, _ = safety.NewFilter(true).Sanitize(story)

	if diff := cmp.Diff(original, story); diff != "" {
		t.Errorf("input story mutated (-want +got):\n%s", diff)
	}
}

func TestFilter_Sanitize_Disabled(t *testing.T) {
	story := baseStory()
	story.WhatHappened = "Officials reportedly met john@example.com."

	got, report := safety.NewFilter(false).Sanitize(story)

	assert.Equal(t, story, got)
	assert.Equal(t, safety.Report{}, report)
	assert.False(t, safety.NewFilter(false).Enabled())
}

func TestFilter_Sanitize_CautionEnglish(t *testing.T) {
	story := baseStory()
	story.Impact = "The operator reportedly ignored earlier warnings."

	got, report := safety.NewFilter(true).Sanitize(story)

	require.True(t, report.CautionApplied)
	assert.Equal(t, "According to reports, Service resumed after a short halt.", got.WhatHappened)
}

func TestFilter_Sanitize_CautionKorean(t *testing.T) {
	story := baseStory()
	story.WhatHappened = "지하철 운행이 중단된 것으로 알려졌다."

	got, report := safety.NewFilter(true).Sanitize(story)

	require.True(t, report.CautionApplied)
	assert.Equal(t, "보도에 따르면, 지하철 운행이 중단된 것으로 알려졌다.", got.WhatHappened)
}

func TestFilter_Sanitize_CautionAppliedOnce(t *testing.T) {
	story := baseStory()
	story.HookTitle = "Alleged fare fraud under review"

	filter := safety.NewFilter(true)
	once, _ := filter.Sanitize(story)
	twice, report := filter.Sanitize(once)

	assert.Equal(t, once.WhatHappened, twice.WhatHappened)
	assert.False(t, report.CautionApplied)
	assert.Equal(t, 1, strings.Count(twice.WhatHappened, safety.CautionPrefixEnglish))
}

func TestFilter_Sanitize_TriggerRemovedByRedaction(t *testing.T) {
	// the caution check runs on the story as it was before redaction
	story := baseStory()
	story.WhatNext = "Write to claims@example.com with questions."

	got, report := safety.NewFilter(true).Sanitize(story)

	assert.True(t, report.CautionApplied)
	assert.True(t, strings.HasPrefix(got.WhatHappened, safety.CautionPrefixEnglish))
	assert.Equal(t, "Write to with questions.", got.WhatNext)
}

func TestNeedsCaution(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.Story)
		want   bool
	}{
		{name: "plain story", mutate: func(*entity.Story) {}, want: false},
		{name: "trigger in hook", mutate: func(s *entity.Story) { s.HookTitle = "UNCONFIRMED blast near port" }, want: true},
		{name: "multi-word trigger", mutate: func(s *entity.Story) { s.WhatNext = "Sources say talks resume" }, want: true},
		{name: "korean trigger", mutate: func(s *entity.Story) { s.Impact = "업계 관계자는 우려를 표했다." }, want: true},
		{name: "trigger only in key details", mutate: func(s *entity.Story) { s.KeyDetails = []string{"rumor spread online"} }, want: false},
		{name: "trigger only in where_when", mutate: func(s *entity.Story) { s.WhereWhen = "alleged site" }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			story := baseStory()
			tt.mutate(&story)
			assert.Equal(t, tt.want, safety.NeedsCaution(story))
		})
	}
}

func TestSanitizeStory(t *testing.T) {
	story := baseStory()
	story.Impact = "Contact john@example.com."

	assert.Equal(t, "Contact", safety.SanitizeStory(story, true).Impact)
	assert.Equal(t, story, safety.SanitizeStory(story, false))
}
