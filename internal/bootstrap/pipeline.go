package bootstrap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"card-news/internal/config"
	"card-news/internal/domain/entity"
	"card-news/internal/infra/fetcher"
	"card-news/internal/infra/output"
	"card-news/internal/infra/publisher"
	"card-news/internal/infra/safety"
	"card-news/internal/infra/scraper"
	"card-news/internal/infra/summarizer"
	"card-news/internal/repository"
	"card-news/internal/usecase/caption"
	"card-news/internal/usecase/notify"
	"card-news/internal/usecase/pipeline"
)

// Options tunes Build.
type Options struct {
	// NotifyMaxConcurrent bounds concurrent notification sends. Zero uses 10.
	NotifyMaxConcurrent int
	// DisableNotifications skips Slack and Discord even when configured.
	DisableNotifications bool
	// HTTPClient overrides the feed HTTP client.
	HTTPClient *http.Client
}

// App holds a wired pipeline and the resources it owns.
type App struct {
	Pipeline *pipeline.Service
	History  repository.HistoryRepository
	// Notify is nil when no channel is enabled.
	Notify notify.Service
	// Publishers is nil when no publishers file is configured.
	Publishers *publisher.Fanout

	closeHistory func() error
}

// Build wires the pipeline for settings: feed router, heuristic summarizer,
// safety filter, card composer, packager, history, and the optional content
// fetcher, notifications and event publishers.
func Build(ctx context.Context, s *config.Settings, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	hist, closeHistory, err := OpenHistory(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	app := &App{History: hist, closeHistory: closeHistory}

	client := opts.HTTPClient
	if client == nil {
		client = newFeedHTTPClient()
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithSanitizer(NewSanitizer()),
	}

	if fetchOpt := contentFetcherOption(logger); fetchOpt != nil {
		pipelineOpts = append(pipelineOpts, fetchOpt)
	}

	if !opts.DisableNotifications {
		if channels := NotificationChannels(logger); len(channels) > 0 {
			maxConcurrent := opts.NotifyMaxConcurrent
			if maxConcurrent <= 0 {
				maxConcurrent = 10
			}
			app.Notify = notify.NewService(channels, maxConcurrent)
			pipelineOpts = append(pipelineOpts, pipeline.WithNotifier(app.Notify))
			logger.Info("notification service initialized",
				slog.Int("channels", len(channels)),
				slog.Int("max_concurrent", maxConcurrent))
		}
	}

	if s.PublishersFile != "" {
		fanout, err := buildPublishers(ctx, s.PublishersFile)
		if err != nil {
			_ = app.Close(ctx)
			return nil, err
		}
		app.Publishers = fanout
		pipelineOpts = append(pipelineOpts, pipeline.WithEventPublisher(fanout))
		logger.Info("story event publishers initialized", slog.Int("publishers", fanout.Len()))
	}

	app.Pipeline = pipeline.NewService(
		scraper.NewRouter(client),
		summarizer.NewHeuristic(summarizer.NewPrometheusStoryMetrics()),
		NewComposer(caption.Brand{Name: s.BrandName, Handle: s.BrandHandle}),
		output.NewPackager(s.OutputDir),
		hist,
		pipelineOpts...,
	)
	return app, nil
}

// RunOptions maps settings onto a pipeline run.
func RunOptions(s *config.Settings) pipeline.RunOptions {
	return pipeline.RunOptions{
		Feeds:         s.Feeds,
		MaxItems:      s.MaxItems,
		DryRun:        s.DryRun,
		SafetyEnabled: s.SafetyEnabled,
		KeepOutputs:   s.KeepOutputs,
	}
}

// Close drains notifications, then releases publishers and history.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Notify != nil {
		if err := a.Notify.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("notify shutdown: %w", err))
		}
	}
	if a.Publishers != nil {
		if err := a.Publishers.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publishers: %w", err))
		}
	}
	if a.closeHistory != nil {
		if err := a.closeHistory(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NewSanitizer adapts the safety filter to the pipeline. The pipeline only
// calls it when safety is enabled for the run.
func NewSanitizer() pipeline.Sanitizer {
	filter := safety.NewFilter(true)
	return pipeline.SanitizerFunc(func(story entity.Story) (entity.Story, bool) {
		out, report := filter.Sanitize(story)
		return out, report.CautionApplied
	})
}

// NewComposer renders the five-card deck and the caption for brand.
func NewComposer(brand caption.Brand) pipeline.CardComposer {
	return pipeline.ComposerFunc(func(story entity.Story) ([]entity.Card, string) {
		return caption.BuildCards(story, brand), caption.Compose(story)
	})
}

func contentFetcherOption(logger *slog.Logger) pipeline.Option {
	cfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("content fetching disabled due to configuration error", slog.Any("error", err))
		return nil
	}
	if !cfg.Enabled {
		logger.Info("content fetching disabled")
		return nil
	}
	logger.Info("content fetching enabled",
		slog.Int("threshold", cfg.Threshold),
		slog.Int("parallelism", cfg.Parallelism),
		slog.Duration("timeout", cfg.Timeout))
	return pipeline.WithContentFetcher(fetcher.NewReadabilityFetcher(cfg), pipeline.ContentConfig{
		Enabled:     true,
		Threshold:   cfg.Threshold,
		Parallelism: cfg.Parallelism,
	})
}

func buildPublishers(ctx context.Context, path string) (*publisher.Fanout, error) {
	cfgs, err := publisher.LoadConfigs(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	pubs, err := publisher.BuildAll(ctx, cfgs)
	if err != nil {
		return nil, err
	}
	return publisher.NewFanout(pubs), nil
}

// newFeedHTTPClient returns a pooled client with TLS 1.2+.
func newFeedHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}
}
