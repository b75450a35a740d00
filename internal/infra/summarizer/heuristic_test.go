package summarizer_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-news/internal/domain/entity"
	"card-news/internal/infra/summarizer"
)

/* ───────── BuildStory ───────── */

func TestBuildStory_EnglishSummary(t *testing.T) {
	item := entity.FeedItem{
		Title:        "Seoul Subway Line 2 Service Resumes",
		URL:          "https://example.com/a",
		Summary:      "The subway was shut down for 45 minutes due to a signaling fault. No injuries were reported. A hardware review has been scheduled.",
		PublishedAt:  "2024-05-01T09:00:00Z",
		SourceDomain: "example.com",
	}

	want := entity.Story{
		HookTitle:    "Seoul Subway Line 2 Service Resumes",
		WhatHappened: "The subway was shut down for 45 minutes due to a signaling fault. No injuries were reported.",
		WhereWhen:    "2024-05-01T09:00:00Z | example.com",
		Impact:       "No injuries were reported.",
		KeyDetails: []string{
			"The subway was shut down for 45 minutes due to a signaling fault.",
			"Seoul Subway Line 2 Service Resumes.",
			"No injuries were reported.",
			"A hardware review has been scheduled.",
		},
		WhatNext:     "A hardware review has been scheduled.",
		Tags:         []string{"subway", "seoul", "line", "service", "resumes", "shut", "down", "minutes"},
		SourceDomain: "example.com",
		SourceURL:    "https://example.com/a",
		PublishedAt:  "2024-05-01T09:00:00Z",
	}

	got := summarizer.BuildStory(item)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildStory() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildStory_KoreanSummary(t *testing.T) {
	item := entity.FeedItem{
		Title:        "서울 지하철 운행 재개",
		URL:          "https://yna.co.kr/view/1",
		Summary:      "서울 지하철 2호선 운행이 신호 장애로 45분간 중단됐다.승객 피해는 없었다고 밝혔다. 향후 정밀 점검을 진행할 예정이다.",
		SourceDomain: "yna.co.kr",
	}

	got := summarizer.BuildStory(item)

	assert.Equal(t, "서울 지하철 운행 재개", got.HookTitle)
	assert.Equal(t, "서울 지하철 2호선 운행이 신호 장애로 45분간 중단됐다.", got.WhatHappened)
	assert.Equal(t, "yna.co.kr", got.WhereWhen)
	assert.Equal(t, "승객 피해는 없었다고 밝혔다.", got.Impact)
	assert.Equal(t, "향후 정밀 점검을 진행할 예정이다.", got.WhatNext)
	assert.Equal(t, []string{
		"서울 지하철 2호선 운행이 신호 장애로 45분간 중단됐다.",
		"승객 피해는 없었다고 밝혔다.",
		"향후 정밀 점검을 진행할 예정이다.",
	}, got.KeyDetails)
	assert.Equal(t, []string{"서울", "지하철", "운행", "재개", "호선", "운행이", "신호", "장애로"}, got.Tags)
}

func TestBuildStory_WirePrefixRemovedFromHook(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"(1st LD) Seoul subway resumes", "Seoul subway resumes"},
		{"(2nd LD) Seoul subway resumes", "Seoul subway resumes"},
		{"(LEAD) Seoul subway resumes", "Seoul subway resumes"},
		{"(ATTN: fixes typo in para 3) Seoul subway resumes", "Seoul subway resumes"},
		{"(URGENT) Seoul subway resumes", "Seoul subway resumes"},
		{"Seoul subway resumes (LEAD)", "Seoul subway resumes (LEAD)"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			story := summarizer.BuildStory(entity.FeedItem{Title: tt.title, URL: "https://example.com/x"})
			assert.Equal(t, tt.want, story.HookTitle)
		})
	}
}

func TestBuildStory_TitleOnly(t *testing.T) {
	story := summarizer.BuildStory(entity.FeedItem{Title: "Quake hits", URL: "https://example.com/q"})

	assert.Equal(t, "Quake hits", story.HookTitle)
	assert.Equal(t, "Quake hits", story.WhatHappened)
	assert.Equal(t, summarizer.WhereWhenPending, story.WhereWhen)
	assert.Empty(t, story.Impact)
	assert.Empty(t, story.WhatNext)
	assert.Empty(t, story.KeyDetails)
	assert.Equal(t, []string{"quake", "hits"}, story.Tags)
}

func TestBuildStory_EmptyItem(t *testing.T) {
	story := summarizer.BuildStory(entity.FeedItem{})

	assert.Empty(t, story.HookTitle)
	assert.Empty(t, story.WhatHappened)
	assert.Equal(t, "Details pending", story.WhereWhen)
	assert.NotNil(t, story.KeyDetails)
	assert.NotNil(t, story.Tags)
}

func TestBuildStory_TimeReferenceInWhereWhen(t *testing.T) {
	item := entity.FeedItem{
		Title:    "Seoul subway resumes",
		FullText: "Seoul subway resumes\n\nThe subway reopened after a 45 minute halt on Monday.",
	}

	story := summarizer.BuildStory(item)

	assert.Equal(t, "The subway reopened after a 45 minute halt on Monday.", story.WhereWhen)
}

func TestBuildStory_FutureKeywordInSecondHalf(t *testing.T) {
	item := entity.FeedItem{
		Title: "Port strike enters second week",
		Summary: "Officials will meet union leaders in the capital. " +
			"Dock workers walked off the job last Tuesday morning. " +
			"Shipping queues grew longer along the coast. " +
			"Negotiators plan another round of talks soon.",
	}

	story := summarizer.BuildStory(item)

	// "will" appears in the first half but the second half is searched first
	assert.Equal(t, "Negotiators plan another round of talks soon.", story.WhatNext)
}

/* ───────── Invariants ───────── */

func longArticle() entity.FeedItem {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Officials said the %d percent increase would have a major impact on commuters who rely on the network every day and expect further changes. ", i+10)
	}
	b.WriteString(strings.Repeat("가", 900))
	b.WriteString(". ")
	b.WriteString(strings.Repeat("token", 150))
	return entity.FeedItem{
		Title:    strings.Repeat("Headline words keep going ", 12),
		URL:      "https://example.com/long",
		FullText: b.String(),
	}
}

func TestBuildStory_LengthBounds(t *testing.T) {
	items := map[string]entity.FeedItem{
		"long article": longArticle(),
		"single huge token": {
			Title:    strings.Repeat("x", 300),
			FullText: strings.Repeat("y", 3000),
		},
		"many short sentences": {
			Title:   "Budget vote",
			Summary: strings.Repeat("The council will vote on the budget plan today. ", 30),
		},
	}

	for name, item := range items {
		t.Run(name, func(t *testing.T) {
			story := summarizer.BuildStory(item)

			assert.LessOrEqual(t, utf8.RuneCountInString(story.HookTitle), 120)
			assert.LessOrEqual(t, utf8.RuneCountInString(story.WhatHappened), 500)
			assert.LessOrEqual(t, utf8.RuneCountInString(story.Impact), 500)
			assert.LessOrEqual(t, utf8.RuneCountInString(story.WhatNext), 500)
			require.LessOrEqual(t, len(story.KeyDetails), 4)
			for _, d := range story.KeyDetails {
				assert.LessOrEqual(t, utf8.RuneCountInString(d), 200, d)
			}
			assert.LessOrEqual(t, len(story.Tags), 8)
		})
	}
}

func TestBuildStory_Deterministic(t *testing.T) {
	item := longArticle()

	first := summarizer.BuildStory(item)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, summarizer.BuildStory(item)); diff != "" {
			t.Fatalf("BuildStory() not deterministic (-first +run %d):\n%s", i, diff)
		}
	}
}

func TestHeuristic_MatchesBuildStory(t *testing.T) {
	item := longArticle()
	h := summarizer.NewHeuristic(summarizer.NoopStoryMetrics{})

	assert.Equal(t, summarizer.BuildStory(item), h.BuildStory(item))
}

/* ───────── Shorten ───────── */

func TestShorten(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{
			name: "fits unchanged",
			text: "Short enough.",
			max:  50,
			want: "Short enough.",
		},
		{
			name: "drops whole sentences",
			text: "First sentence here. Second sentence here.",
			max:  25,
			want: "First sentence here.",
		},
		{
			name: "word boundary when no sentence fits",
			text: "alpha beta gamma delta epsilon zeta eta theta",
			max:  20,
			want: "alpha beta gamma",
		},
		{
			name: "strips dangling punctuation",
			text: "alpha beta gamma, delta epsilon zeta eta theta",
			max:  20,
			want: "alpha beta gamma",
		},
		{
			name: "does not end on abbreviation period",
			text: "Mr. Lee spoke for a long time about the merits of the plan without pause",
			max:  30,
			want: "Mr. Lee spoke for a long time",
		},
		{
			name: "opening quote dropped when its closing quote is cut",
			text: "\"Breaking\" " + strings.Repeat("x", 130),
			max:  20,
			want: "Breaking",
		},
		{
			name: "balanced quotes kept",
			text: "\"Breaking\" news today from the capital city region",
			max:  20,
			want: "\"Breaking\" news",
		},
		{
			name: "curly opening quote dropped",
			text: "\u201cWe will rebuild\u201d said the governor of the province today",
			max:  14,
			want: "We will",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarizer.Shorten(tt.text, tt.max)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.max)
		})
	}
}

/* ───────── ExtractTags ───────── */

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "ties keep first occurrence",
			text: "beta alpha beta alpha gamma",
			want: []string{"beta", "alpha", "gamma"},
		},
		{
			name: "stopwords removed",
			text: "The fares and the schedules of the subway",
			want: []string{"fares", "schedules", "subway"},
		},
		{
			name: "korean stopwords removed",
			text: "지하철 및 버스 요금 인상 등",
			want: []string{"지하철", "버스", "요금", "인상"},
		},
		{
			name: "capped at eight",
			text: "one two three four five six seven eight nine ten",
			want: []string{"one", "two", "three", "four", "five", "six", "seven", "eight"},
		},
		{
			name: "nothing extractable",
			text: "a 1 2 3",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarizer.ExtractTags(tt.text))
		})
	}
}
