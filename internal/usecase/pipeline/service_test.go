package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"card-news/internal/domain/entity"
	"card-news/internal/usecase/pipeline"
)

/* ───────── fakes ───────── */

type stubFeeds struct {
	items map[string][]entity.FeedItem
	errs  map[string]error
}

func (s *stubFeeds) Fetch(ctx context.Context, src entity.FeedSource) ([]entity.FeedItem, error) {
	if err := s.errs[src.URL]; err != nil {
		return nil, err
	}
	return s.items[src.URL], nil
}

type titleBuilder struct{}

func (titleBuilder) BuildStory(item entity.FeedItem) entity.Story {
	body := item.Summary
	if item.FullText != "" {
		body = item.FullText
	}
	return entity.Story{
		HookTitle:    item.Title,
		WhatHappened: body,
		SourceURL:    item.URL,
		SourceDomain: item.SourceDomain,
	}
}

var composer = pipeline.ComposerFunc(func(story entity.Story) ([]entity.Card, string) {
	return []entity.Card{{Index: 1, Total: 1, Title: story.HookTitle}}, "caption: " + story.HookTitle
})

type memPackager struct {
	mu       sync.Mutex
	packaged []entity.Story
	failOn   string
	keep     int
}

func (p *memPackager) Package(story entity.Story, cards []entity.Card, caption string) (*entity.Post, error) {
	if p.failOn != "" && story.HookTitle == p.failOn {
		return nil, errors.New("disk full")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.packaged = append(p.packaged, story)
	return &entity.Post{
		Story:     story,
		Cards:     cards,
		Caption:   caption,
		OutputDir: filepath.Join("out", fmt.Sprintf("post_%d", len(p.packaged))),
	}, nil
}

func (p *memPackager) Cleanup(keep int) ([]string, error) {
	p.keep = keep
	return []string{"out/old"}, nil
}

type memHistory struct {
	mu      sync.Mutex
	urls    map[string]struct{}
	loadErr error
}

func newMemHistory(urls ...string) *memHistory {
	h := &memHistory{urls: make(map[string]struct{})}
	for _, u := range urls {
		h.urls[entity.NormalizeURL(u)] = struct{}{}
	}
	return h
}

func (h *memHistory) Load(ctx context.Context) (map[string]struct{}, error) {
	if h.loadErr != nil {
		return nil, h.loadErr
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]struct{}, len(h.urls))
	for u := range h.urls {
		out[u] = struct{}{}
	}
	return out, nil
}

func (h *memHistory) MarkPublished(ctx context.Context, url string, at time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.urls[entity.NormalizeURL(url)] = struct{}{}
	return nil
}

func (h *memHistory) Count(ctx context.Context) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.urls), nil
}

func (h *memHistory) has(url string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.urls[entity.NormalizeURL(url)]
	return ok
}

type stubContent struct {
	mu    sync.Mutex
	calls []string
	text  string
	err   error
}

func (c *stubContent) FetchContent(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, url)
	c.mu.Unlock()
	return c.text, c.err
}

type recordingNotifier struct {
	mu    sync.Mutex
	posts []string
}

func (n *recordingNotifier) NotifyNewPost(ctx context.Context, post *entity.Post) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.posts = append(n.posts, post.Story.HookTitle)
	return nil
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) PublishPost(ctx context.Context, post *entity.Post) error {
	p.calls++
	return errors.New("topic not found")
}

func item(title, url, summary string) entity.FeedItem {
	return entity.FeedItem{Title: title, URL: url, Summary: summary, SourceDomain: entity.DomainOf(url)}
}

func rss(urls ...string) []entity.FeedSource {
	return entity.RSSSources(urls)
}

/* ───────── Run ───────── */

func TestService_Run_NoFeeds(t *testing.T) {
	svc := pipeline.NewService(&stubFeeds{}, titleBuilder{}, composer, &memPackager{}, newMemHistory())

	_, err := svc.Run(context.Background(), pipeline.RunOptions{})

	require.ErrorIs(t, err, pipeline.ErrNoFeeds)
}

func TestService_Run_ProcessesItemsInOrder(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {
			item("First", "https://a.example.com/1", "one"),
			item("Second", "https://a.example.com/2", "two"),
		},
		"https://b.example.com/rss": {
			item("Third", "https://b.example.com/3", "three"),
		},
	}}
	packager := &memPackager{}
	history := newMemHistory()
	notifier := &recordingNotifier{}

	svc := pipeline.NewService(feeds, titleBuilder{}, composer, packager, history,
		pipeline.WithNotifier(notifier))

	result, err := svc.Run(context.Background(), pipeline.RunOptions{
		Feeds:       rss("https://a.example.com/rss", "https://b.example.com/rss"),
		MaxItems:    10,
		KeepOutputs: 5,
	})
	require.NoError(t, err)

	require.Len(t, result.Posts, 3)
	titles := make([]string, 0, len(result.Posts))
	for _, p := range result.Posts {
		titles = append(titles, p.Story.HookTitle)
	}
	assert.Equal(t, []string{"First", "Second", "Third"}, titles)
	assert.Equal(t, []string{"First", "Second", "Third"}, notifier.posts)
	assert.Equal(t, 3, result.Stats.Processed)
	assert.Equal(t, 3, result.Stats.Fetched)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 5, packager.keep)
	assert.Equal(t, []string{"out/old"}, result.Removed)
	assert.True(t, history.has("https://a.example.com/1"))
	assert.True(t, history.has("https://b.example.com/3"))
}

func TestService_Run_DedupHistoryAndLimit(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {
			item("Old", "https://a.example.com/old", ""),
			item("New 1", "https://a.example.com/1", ""),
			item("New 1 again", "https://A.example.com/1/", ""),
			item("New 2", "https://a.example.com/2", ""),
			item("New 3", "https://a.example.com/3", ""),
		},
	}}
	packager := &memPackager{}
	history := newMemHistory("https://a.example.com/old")

	svc := pipeline.NewService(feeds, titleBuilder{}, composer, packager, history)

	result, err := svc.Run(context.Background(), pipeline.RunOptions{
		Feeds:    rss("https://a.example.com/rss"),
		MaxItems: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Stats.Fetched)
	assert.Equal(t, 1, result.Stats.Duplicates)
	assert.Equal(t, 1, result.Stats.AlreadyPublished)
	assert.Equal(t, 2, result.Stats.Selected)
	require.Len(t, result.Planned, 2)
	assert.Equal(t, "New 1", result.Planned[0].Title)
	assert.Equal(t, "New 2", result.Planned[1].Title)
	assert.Empty(t, result.Removed)
}

func TestService_Run_DryRunHasNoSideEffects(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {item("Only", "https://a.example.com/1", "")},
	}}
	packager := &memPackager{}
	history := newMemHistory()
	content := &stubContent{text: "body"}

	svc := pipeline.NewService(feeds, titleBuilder{}, composer, packager, history,
		pipeline.WithContentFetcher(content, pipeline.ContentConfig{Enabled: true}))

	result, err := svc.Run(context.Background(), pipeline.RunOptions{
		Feeds:       rss("https://a.example.com/rss"),
		DryRun:      true,
		KeepOutputs: 1,
	})
	require.NoError(t, err)

	assert.Len(t, result.Planned, 1)
	assert.Empty(t, result.Posts)
	assert.Empty(t, packager.packaged)
	assert.Empty(t, content.calls)
	assert.False(t, history.has("https://a.example.com/1"))
	assert.Zero(t, packager.keep)
}

func TestService_Run_FeedFailureContinues(t *testing.T) {
	feeds := &stubFeeds{
		items: map[string][]entity.FeedItem{
			"https://ok.example.com/rss": {item("Fine", "https://ok.example.com/1", "")},
		},
		errs: map[string]error{"https://down.example.com/rss": errors.New("503")},
	}

	svc := pipeline.NewService(feeds, titleBuilder{}, composer, &memPackager{}, newMemHistory())

	result, err := svc.Run(context.Background(), pipeline.RunOptions{
		Feeds: rss("https://down.example.com/rss", "https://ok.example.com/rss"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.FeedErrors)
	assert.Equal(t, 1, result.Stats.Processed)
}

func TestService_Run_HistoryLoadFailureTreatedAsEmpty(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {item("Again", "https://a.example.com/1", "")},
	}}
	history := newMemHistory("https://a.example.com/1")
	history.loadErr = errors.New("corrupt")

	svc := pipeline.NewService(feeds, titleBuilder{}, composer, &memPackager{}, history)

	result, err := svc.Run(context.Background(), pipeline.RunOptions{Feeds: rss("https://a.example.com/rss")})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Stats.AlreadyPublished)
	assert.Equal(t, 1, result.Stats.Processed)
}

func TestService_Run_ItemFailureIsIsolated(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {
			item("Broken", "https://a.example.com/1", ""),
			item("Works", "https://a.example.com/2", ""),
			{Title: "", URL: "https://a.example.com/3"},
		},
	}}
	packager := &memPackager{failOn: "Broken"}
	history := newMemHistory()

	svc := pipeline.NewService(feeds, titleBuilder{}, composer, packager, history)

	result, err := svc.Run(context.Background(), pipeline.RunOptions{Feeds: rss("https://a.example.com/rss")})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.Failed)
	assert.Equal(t, 1, result.Stats.Processed)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, "Works", result.Posts[0].Story.HookTitle)
	assert.False(t, history.has("https://a.example.com/1"))
	assert.True(t, history.has("https://a.example.com/2"))
}

func TestService_Run_EnhancesShortSummaries(t *testing.T) {
	long := strings.Repeat("가", 20)
	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {
			item("Short", "https://a.example.com/short", "tiny"),
			item("Long", "https://a.example.com/long", long),
		},
	}}
	content := &stubContent{text: "the whole article body"}

	svc := pipeline.NewService(feeds, titleBuilder{}, composer, &memPackager{}, newMemHistory(),
		pipeline.WithContentFetcher(content, pipeline.ContentConfig{Enabled: true, Threshold: 20}))

	result, err := svc.Run(context.Background(), pipeline.RunOptions{Feeds: rss("https://a.example.com/rss")})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example.com/short"}, content.calls)
	assert.Equal(t, 1, result.Stats.Enhanced)
	require.Len(t, result.Posts, 2)
	assert.Equal(t, "the whole article body", result.Posts[0].Story.WhatHappened)
	assert.Equal(t, long, result.Posts[1].Story.WhatHappened)
	// planned items are the originals, without fetched text
	assert.Empty(t, result.Planned[0].FullText)
}

func TestService_Run_EnhanceFailureKeepsSummary(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {item("Short", "https://a.example.com/short", "tiny")},
	}}
	content := &stubContent{err: errors.New("timeout")}

	svc := pipeline.NewService(feeds, titleBuilder{}, composer, &memPackager{}, newMemHistory(),
		pipeline.WithContentFetcher(content, pipeline.ContentConfig{Enabled: true}))

	result, err := svc.Run(context.Background(), pipeline.RunOptions{Feeds: rss("https://a.example.com/rss")})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.EnhanceFailed)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, "tiny", result.Posts[0].Story.WhatHappened)
}

func TestService_Run_EnhancementDisabled(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {item("Short", "https://a.example.com/short", "tiny")},
	}}
	content := &stubContent{text: "body"}

	svc := pipeline.NewService(feeds, titleBuilder{}, composer, &memPackager{}, newMemHistory(),
		pipeline.WithContentFetcher(content, pipeline.ContentConfig{Enabled: false}))

	_, err := svc.Run(context.Background(), pipeline.RunOptions{Feeds: rss("https://a.example.com/rss")})
	require.NoError(t, err)
	assert.Empty(t, content.calls)
}

func TestService_Run_SafetyToggle(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {item("Rumor", "https://a.example.com/1", "raw")},
	}}
	sanitizer := pipeline.SanitizerFunc(func(story entity.Story) (entity.Story, bool) {
		story.WhatHappened = "clean"
		return story, true
	})

	tests := []struct {
		name         string
		enabled      bool
		wantBody     string
		wantCautions int
	}{
		{name: "enabled", enabled: true, wantBody: "clean", wantCautions: 1},
		{name: "disabled", enabled: false, wantBody: "raw", wantCautions: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := pipeline.NewService(feeds, titleBuilder{}, composer, &memPackager{}, newMemHistory(),
				pipeline.WithSanitizer(sanitizer))

			result, err := svc.Run(context.Background(), pipeline.RunOptions{
				Feeds:         rss("https://a.example.com/rss"),
				SafetyEnabled: tt.enabled,
			})
			require.NoError(t, err)
			require.Len(t, result.Posts, 1)
			assert.Equal(t, tt.wantBody, result.Posts[0].Story.WhatHappened)
			assert.Equal(t, tt.wantCautions, result.Stats.CautionApplied)
		})
	}
}

func TestService_Run_PublishErrorDoesNotFailItem(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {item("Story", "https://a.example.com/1", "")},
	}}
	publisher := &failingPublisher{}

	svc := pipeline.NewService(feeds, titleBuilder{}, composer, &memPackager{}, newMemHistory(),
		pipeline.WithEventPublisher(publisher))

	result, err := svc.Run(context.Background(), pipeline.RunOptions{Feeds: rss("https://a.example.com/rss")})
	require.NoError(t, err)

	assert.Equal(t, 1, publisher.calls)
	assert.Equal(t, 1, result.Stats.Processed)
	assert.Equal(t, 1, result.Stats.PublishErrors)
}

func TestService_Run_CancelledContext(t *testing.T) {
	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {item("Story", "https://a.example.com/1", "")},
	}}
	packager := &memPackager{}

	svc := pipeline.NewService(feeds, titleBuilder{}, composer, packager, newMemHistory())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, pipeline.RunOptions{Feeds: rss("https://a.example.com/rss")})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, packager.packaged)
}

/* ───────── tracing ───────── */

func TestService_Run_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(sdktrace.NewTracerProvider())

	feeds := &stubFeeds{items: map[string][]entity.FeedItem{
		"https://a.example.com/rss": {
			item("One", "https://a.example.com/1", ""),
			item("Two", "https://a.example.com/2", ""),
		},
	}}
	svc := pipeline.NewService(feeds, titleBuilder{}, composer, &memPackager{}, newMemHistory())

	_, err := svc.Run(context.Background(), pipeline.RunOptions{Feeds: rss("https://a.example.com/rss")})
	require.NoError(t, err)
	require.NoError(t, tp.ForceFlush(context.Background()))

	names := map[string]int{}
	for _, span := range exporter.GetSpans() {
		names[span.Name]++
	}
	assert.Equal(t, 1, names["pipeline.Run"])
	assert.Equal(t, 2, names["pipeline.ProcessItem"])
}
