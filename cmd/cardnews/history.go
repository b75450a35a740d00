package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"card-news/internal/bootstrap"
	"card-news/internal/config"
)

func runHistory(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var backend, envFile string
	fs.StringVar(&backend, "backend", "", "History backend: file, bolt, postgres or sqlite (overrides NEWS_HISTORY_BACKEND)")
	fs.StringVar(&envFile, "env-file", "", "Path to a .env file")
	if err := fs.Parse(args); err != nil {
		return errReported
	}

	if err := loadEnv(envFile); err != nil {
		return err
	}
	if backend != "" {
		// NEWS_HISTORY_PATH defaults per backend, so the override goes through settings.
		if err := os.Setenv("NEWS_HISTORY_BACKEND", strings.ToLower(backend)); err != nil {
			return err
		}
	}

	settings, err := config.LoadSettings(config.Overrides{})
	if err != nil {
		return err
	}

	ctx := context.Background()
	repo, closeFn, err := bootstrap.OpenHistory(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "Published articles: %d (%s backend)\n", n, settings.HistoryBackend)
	return nil
}
