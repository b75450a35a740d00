// Package pipeline turns configured feeds into packaged card news posts.
// One Run fetches every feed, drops duplicates and already published items,
// optionally enhances short summaries with the article body, and then builds,
// sanitizes, packages and records each remaining item.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"card-news/internal/domain/entity"
	"card-news/internal/observability/logging"
	"card-news/internal/observability/metrics"
	"card-news/internal/observability/tracing"
	"card-news/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFeedParallelism    = 4
	defaultContentParallelism = 5
	defaultContentThreshold   = 1500
	historyOpLoad             = "load"
	historyOpMark             = "mark"
)

// FeedFetcher reads the items of one configured source.
type FeedFetcher interface {
	Fetch(ctx context.Context, src entity.FeedSource) ([]entity.FeedItem, error)
}

// ContentFetcher downloads the article body behind an item URL.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// StoryBuilder turns a feed item into a story.
type StoryBuilder interface {
	BuildStory(item entity.FeedItem) entity.Story
}

// Sanitizer applies the safety filter to a story.
// It reports whether caution wording was added.
type Sanitizer interface {
	Sanitize(story entity.Story) (entity.Story, bool)
}

// SanitizerFunc adapts a function to the Sanitizer interface.
type SanitizerFunc func(story entity.Story) (entity.Story, bool)

// Sanitize calls f(story).
func (f SanitizerFunc) Sanitize(story entity.Story) (entity.Story, bool) {
	return f(story)
}

// CardComposer renders a story into carousel cards and a caption.
type CardComposer interface {
	Compose(story entity.Story) ([]entity.Card, string)
}

// ComposerFunc adapts a function to the CardComposer interface.
type ComposerFunc func(story entity.Story) ([]entity.Card, string)

// Compose calls f(story).
func (f ComposerFunc) Compose(story entity.Story) ([]entity.Card, string) {
	return f(story)
}

// Packager writes a post folder and prunes old ones.
type Packager interface {
	Package(story entity.Story, cards []entity.Card, caption string) (*entity.Post, error)
	Cleanup(keep int) ([]string, error)
}

// Notifier announces a new post. Implementations must not block.
type Notifier interface {
	NotifyNewPost(ctx context.Context, post *entity.Post) error
}

// EventPublisher sends a post event to downstream consumers.
type EventPublisher interface {
	PublishPost(ctx context.Context, post *entity.Post) error
}

// ContentConfig controls full-text enhancement.
type ContentConfig struct {
	Enabled     bool
	Threshold   int
	Parallelism int
}

// RunOptions are the per-run settings.
type RunOptions struct {
	Feeds         []entity.FeedSource
	MaxItems      int
	DryRun        bool
	SafetyEnabled bool
	// KeepOutputs is the number of post folders kept after the run. Zero disables pruning.
	KeepOutputs int
}

// RunStats counts what happened to the items of one run.
type RunStats struct {
	Feeds            int
	FeedErrors       int
	Fetched          int
	Duplicates       int
	AlreadyPublished int
	Selected         int
	Enhanced         int
	EnhanceFailed    int
	Processed        int
	Failed           int
	CautionApplied   int
	PublishErrors    int
	Duration         time.Duration
}

// RunResult is the outcome of one Run.
type RunResult struct {
	RunID string
	// Planned holds the items selected for processing, in order.
	Planned []entity.FeedItem
	// Posts holds the packaged posts in the order of Planned. Failed items are absent.
	Posts   []*entity.Post
	Removed []string
	Stats   RunStats
}

// Service runs the card news pipeline.
type Service struct {
	feeds     FeedFetcher
	builder   StoryBuilder
	composer  CardComposer
	packager  Packager
	history   repository.HistoryRepository
	content   ContentFetcher
	contentCf ContentConfig
	sanitizer Sanitizer
	notifier  Notifier
	publisher EventPublisher
	logger    *slog.Logger

	feedParallelism int
}

// Option configures optional collaborators of a Service.
type Option func(*Service)

// WithContentFetcher enables full-text enhancement of short summaries.
func WithContentFetcher(fetcher ContentFetcher, cfg ContentConfig) Option {
	return func(s *Service) {
		s.content = fetcher
		s.contentCf = cfg
	}
}

// WithSanitizer sets the safety filter applied when RunOptions.SafetyEnabled is true.
func WithSanitizer(sanitizer Sanitizer) Option {
	return func(s *Service) { s.sanitizer = sanitizer }
}

// WithNotifier sets the new post notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithEventPublisher sets the downstream event publisher.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithFeedParallelism bounds the number of feeds fetched at once.
func WithFeedParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.feedParallelism = n
		}
	}
}

// WithLogger sets the base logger. The run ID is added per run.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a pipeline Service.
//
// Parameters:
//   - feeds: Reads items from RSS and HTML listing sources
//   - builder: Builds a story from a feed item
//   - composer: Renders cards and caption
//   - packager: Writes post folders
//   - history: Publish history used to skip items already posted
//   - opts: Optional collaborators (content fetcher, sanitizer, notifier, publisher)
//
// Example:
//
//	svc := pipeline.NewService(router, summarizer.NewHeuristic(nil), composer, packager, store,
//	    pipeline.WithSanitizer(pipeline.SanitizerFunc(sanitize)),
//	    pipeline.WithNotifier(notifyService))
//	result, err := svc.Run(ctx, pipeline.RunOptions{Feeds: settings.Feeds, MaxItems: 10})
func NewService(
	feeds FeedFetcher,
	builder StoryBuilder,
	composer CardComposer,
	packager Packager,
	history repository.HistoryRepository,
	opts ...Option,
) *Service {
	s := &Service{
		feeds:           feeds,
		builder:         builder,
		composer:        composer,
		packager:        packager,
		history:         history,
		logger:          slog.Default(),
		feedParallelism: defaultFeedParallelism,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.contentCf.Threshold <= 0 {
		s.contentCf.Threshold = defaultContentThreshold
	}
	if s.contentCf.Parallelism <= 0 {
		s.contentCf.Parallelism = defaultContentParallelism
	}
	return s
}

// Run executes one pipeline pass. Per-feed and per-item failures are logged
// and counted in the stats; only a missing feed list or a cancelled context
// make Run return an error.
func (s *Service) Run(ctx context.Context, opts RunOptions) (result *RunResult, err error) {
	runID := logging.NewRunID()
	logger := logging.WithRunID(s.logger, runID)
	ctx = logging.WithLogger(ctx, logger)

	ctx, span := tracing.GetTracer().Start(ctx, "pipeline.Run",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("feeds", len(opts.Feeds)),
			attribute.Bool("dry_run", opts.DryRun),
		))
	defer span.End()

	start := time.Now()
	result = &RunResult{RunID: runID}
	defer func() {
		result.Stats.Duration = time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if !opts.DryRun {
			metrics.RecordPipelineRun(result.Stats.Duration, err)
		}
	}()

	if len(opts.Feeds) == 0 {
		return result, ErrNoFeeds
	}
	result.Stats.Feeds = len(opts.Feeds)

	items, feedErrors, err := s.fetchAll(ctx, opts.Feeds)
	if err != nil {
		return result, err
	}
	result.Stats.FeedErrors = feedErrors
	result.Stats.Fetched = len(items)
	metrics.RecordPipelineItems(metrics.StageFetched, len(items))

	unique := Deduplicate(items)
	result.Stats.Duplicates = len(items) - len(unique)
	metrics.RecordPipelineItems(metrics.StageDuplicate, result.Stats.Duplicates)

	fresh := FilterPublished(unique, s.loadHistory(ctx))
	result.Stats.AlreadyPublished = len(unique) - len(fresh)
	metrics.RecordPipelineItems(metrics.StageAlreadyPublished, result.Stats.AlreadyPublished)

	planned := Limit(fresh, opts.MaxItems)
	result.Planned = planned
	result.Stats.Selected = len(planned)

	logger.Info("items selected",
		slog.Int("fetched", result.Stats.Fetched),
		slog.Int("duplicates", result.Stats.Duplicates),
		slog.Int("already_published", result.Stats.AlreadyPublished),
		slog.Int("selected", len(planned)),
		slog.Bool("dry_run", opts.DryRun))

	if opts.DryRun {
		return result, nil
	}

	enhanced, err := s.enhanceAll(ctx, planned, &result.Stats)
	if err != nil {
		return result, err
	}

	for _, item := range enhanced {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		post, cautioned, perr := s.processItem(ctx, item, opts.SafetyEnabled)
		if perr != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Stats.Failed++
			metrics.RecordPipelineItems(metrics.StageFailed, 1)
			logger.Warn("failed to process item",
				slog.String("url", item.URL),
				slog.String("title", item.Title),
				slog.Any("error", perr))
			continue
		}
		if cautioned {
			result.Stats.CautionApplied++
		}
		result.Stats.Processed++
		result.Posts = append(result.Posts, post)

		if perr := s.announce(ctx, post); perr != nil {
			result.Stats.PublishErrors++
		}
	}
	metrics.RecordPipelineItems(metrics.StageProcessed, result.Stats.Processed)

	if opts.KeepOutputs > 0 {
		removed, cerr := s.packager.Cleanup(opts.KeepOutputs)
		if cerr != nil {
			logger.Warn("failed to prune old outputs", slog.Any("error", cerr))
		}
		result.Removed = removed
	}

	span.SetAttributes(
		attribute.Int("processed", result.Stats.Processed),
		attribute.Int("failed", result.Stats.Failed))

	logger.Info("pipeline run completed",
		slog.Int("processed", result.Stats.Processed),
		slog.Int("failed", result.Stats.Failed),
		slog.Int("feed_errors", result.Stats.FeedErrors),
		slog.Int("enhanced", result.Stats.Enhanced),
		slog.Int("removed", len(result.Removed)),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// fetchAll reads every feed concurrently. Items keep the order of the feeds
// they came from. A failed feed is logged and counted, never fatal.
func (s *Service) fetchAll(ctx context.Context, feeds []entity.FeedSource) ([]entity.FeedItem, int, error) {
	logger := logging.FromContext(ctx)
	perFeed := make([][]entity.FeedItem, len(feeds))

	var (
		mu       sync.Mutex
		failures int
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.feedParallelism)

	for i, src := range feeds {
		eg.Go(func() error {
			start := time.Now()
			items, err := s.feeds.Fetch(egCtx, src)
			metrics.RecordFeedFetch(src.SourceKind(), time.Since(start), err)
			if err != nil {
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				logger.Warn("feed fetch failed",
					slog.String("feed", src.URL),
					slog.String("type", src.SourceKind()),
					slog.Any("error", err))
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}
			logger.Info("feed fetched",
				slog.String("feed", src.URL),
				slog.Int("items", len(items)))
			perFeed[i] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, failures, fmt.Errorf("fetch feeds: %w", err)
	}

	var all []entity.FeedItem
	for _, items := range perFeed {
		all = append(all, items...)
	}
	return all, failures, nil
}

// loadHistory returns the published URL set. A load failure is treated as an empty history.
func (s *Service) loadHistory(ctx context.Context) map[string]struct{} {
	published, err := s.history.Load(ctx)
	metrics.RecordHistoryOperation(historyOpLoad, err)
	if err != nil {
		logging.FromContext(ctx).Warn("failed to load publish history, treating as empty",
			slog.Any("error", err))
		return nil
	}
	return published
}

// enhanceAll fetches the article body for items whose summary is shorter than
// the threshold. Failures keep the original item.
func (s *Service) enhanceAll(ctx context.Context, items []entity.FeedItem, stats *RunStats) ([]entity.FeedItem, error) {
	out := make([]entity.FeedItem, len(items))
	copy(out, items)

	if s.content == nil || !s.contentCf.Enabled {
		return out, nil
	}

	logger := logging.FromContext(ctx)
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.contentCf.Parallelism)

	for i, item := range items {
		if utf8.RuneCountInString(item.Summary) >= s.contentCf.Threshold {
			metrics.RecordContentFetchSkipped()
			continue
		}
		eg.Go(func() error {
			start := time.Now()
			text, err := s.content.FetchContent(egCtx, item.URL)
			if err != nil {
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				metrics.RecordContentFetchFailed(time.Since(start))
				logger.Warn("content fetch failed, keeping feed summary",
					slog.String("url", item.URL),
					slog.Any("error", err))
				mu.Lock()
				stats.EnhanceFailed++
				mu.Unlock()
				return nil
			}

			runes := utf8.RuneCountInString(text)
			metrics.RecordContentFetchSuccess(time.Since(start), runes)
			logger.Debug("content enhanced",
				slog.String("url", item.URL),
				slog.Int("summary_runes", utf8.RuneCountInString(item.Summary)),
				slog.Int("content_runes", runes))
			out[i] = item.WithFullText(text)
			mu.Lock()
			stats.Enhanced++
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("enhance content: %w", err)
	}
	return out, nil
}

// processItem builds, sanitizes and packages one item, then records it as published.
func (s *Service) processItem(ctx context.Context, item entity.FeedItem, safetyEnabled bool) (*entity.Post, bool, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "pipeline.ProcessItem",
		trace.WithAttributes(
			attribute.String("url", item.URL),
			attribute.String("source_domain", item.SourceDomain),
			attribute.Bool("full_text", item.FullText != "")))
	defer span.End()

	start := time.Now()
	post, cautioned, err := s.buildPost(item, safetyEnabled)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	metrics.RecordItemProcessed(time.Since(start))
	metrics.RecordPackageWritten()
	if cautioned {
		metrics.RecordCautionApplied()
	}
	span.SetAttributes(
		attribute.String("output_dir", post.OutputDir),
		attribute.Bool("caution_applied", cautioned))

	// the post is on disk at this point; a history failure only means it may be regenerated
	markErr := s.history.MarkPublished(ctx, item.URL, time.Now())
	metrics.RecordHistoryOperation(historyOpMark, markErr)
	if markErr != nil {
		logging.FromContext(ctx).Warn("failed to record published url",
			slog.String("url", item.URL),
			slog.Any("error", markErr))
	}

	return post, cautioned, nil
}

func (s *Service) buildPost(item entity.FeedItem, safetyEnabled bool) (*entity.Post, bool, error) {
	if err := item.Validate(); err != nil {
		return nil, false, fmt.Errorf("buildPost: invalid item: %w", err)
	}

	story := s.builder.BuildStory(item)

	cautioned := false
	if safetyEnabled && s.sanitizer != nil {
		story, cautioned = s.sanitizer.Sanitize(story)
	}

	cards, caption := s.composer.Compose(story)
	post, err := s.packager.Package(story, cards, caption)
	if err != nil {
		return nil, false, fmt.Errorf("buildPost: package: %w", err)
	}
	return post, cautioned, nil
}

// announce notifies channels and publishes the post event. Errors are logged only.
func (s *Service) announce(ctx context.Context, post *entity.Post) error {
	logger := logging.FromContext(ctx)

	if s.notifier != nil {
		if err := s.notifier.NotifyNewPost(ctx, post); err != nil {
			logger.Warn("failed to dispatch notification",
				slog.String("output_dir", post.OutputDir),
				slog.Any("error", err))
		}
	}

	if s.publisher == nil {
		return nil
	}
	err := s.publisher.PublishPost(ctx, post)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("failed to publish story event",
			slog.String("output_dir", post.OutputDir),
			slog.String("source_url", post.Story.SourceURL),
			slog.Any("error", err))
	}
	return err
}
