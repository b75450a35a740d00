package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"card-news/internal/bootstrap"
	"card-news/internal/config"
	"card-news/internal/domain/entity"
	"card-news/internal/observability/logging"
	"card-news/internal/usecase/pipeline"
)

const shutdownTimeout = 10 * time.Second

func runGenerate(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		feeds     string
		outputDir string
		limit     int
		dryRun    bool
		envFile   string
	)
	fs.StringVar(&feeds, "feeds", "", "Comma-separated RSS feed URLs (overrides NEWS_RSS_FEEDS)")
	fs.StringVar(&outputDir, "output-dir", "", "Output directory (overrides NEWS_OUTPUT_DIR)")
	fs.IntVar(&limit, "limit", 0, "Max number of items to process")
	fs.BoolVar(&dryRun, "dry-run", false, "Print the plan without writing files")
	fs.StringVar(&envFile, "env-file", "", "Path to a .env file")
	if err := fs.Parse(args); err != nil {
		return errReported
	}

	if err := loadEnv(envFile); err != nil {
		return err
	}

	settings, err := config.LoadSettings(config.Overrides{
		Feeds:     splitFeeds(feeds),
		OutputDir: outputDir,
		Limit:     limit,
		DryRun:    dryRun,
	})
	if err != nil {
		return err
	}
	if len(settings.Feeds) == 0 {
		_, _ = fmt.Fprintln(stderr, "Error: No RSS feeds configured. Set NEWS_RSS_FEEDS or use --feeds.")
		return errReported
	}

	logger := logging.NewTextLoggerTo(stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, settings, logger, bootstrap.Options{DisableNotifications: settings.DryRun})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logger.Warn("shutdown incomplete", slog.Any("error", err))
		}
	}()

	result, err := app.Pipeline.Run(ctx, bootstrap.RunOptions(settings))
	if errors.Is(err, pipeline.ErrNoFeeds) {
		_, _ = fmt.Fprintln(stderr, "Error: No RSS feeds configured. Set NEWS_RSS_FEEDS or use --feeds.")
		return errReported
	}
	if err != nil {
		return err
	}

	if settings.DryRun {
		printDryRun(stdout, result.Planned)
		return nil
	}
	printGenerated(stdout, result.Posts)
	return nil
}

func splitFeeds(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func printDryRun(w io.Writer, items []entity.FeedItem) {
	_, _ = fmt.Fprintf(w, "Dry run: %d items would be processed:\n", len(items))
	for i, item := range items {
		_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, item.Title)
		_, _ = fmt.Fprintf(w, "     URL: %s\n", item.URL)
		_, _ = fmt.Fprintf(w, "     Source: %s\n", item.SourceDomain)
	}
}

func printGenerated(w io.Writer, posts []*entity.Post) {
	_, _ = fmt.Fprintf(w, "Generated %d card news post(s).\n", len(posts))
	for _, post := range posts {
		_, _ = fmt.Fprintf(w, "  -> %s\n", post.OutputDir)
	}
}
