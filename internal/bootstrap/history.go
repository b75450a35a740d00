// Package bootstrap wires the card-news components from settings. It is shared
// by the CLI and the worker so both run the same pipeline.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"card-news/internal/config"
	"card-news/internal/infra/adapter/persistence/postgres"
	"card-news/internal/infra/adapter/persistence/sqlite"
	"card-news/internal/infra/db"
	"card-news/internal/infra/history"
	"card-news/internal/repository"
)

// OpenHistory opens the publish history backend selected in settings. The
// returned close func releases files and connections; it is never nil.
func OpenHistory(ctx context.Context, s *config.Settings) (repository.HistoryRepository, func() error, error) {
	noop := func() error { return nil }

	switch s.HistoryBackend {
	case config.HistoryBackendFile, "":
		return history.NewFileStore(s.HistoryPath), noop, nil

	case config.HistoryBackendBolt:
		store, err := history.OpenBoltStore(s.HistoryPath)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil

	case config.HistoryBackendPostgres:
		conn, err := db.OpenPostgres(ctx, s.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := db.MigratePostgres(conn); err != nil {
			_ = conn.Close()
			return nil, noop, fmt.Errorf("migrate postgres: %w", err)
		}
		return postgres.NewHistoryRepo(conn), closeDB(conn), nil

	case config.HistoryBackendSQLite:
		conn, err := db.OpenSQLite(s.HistoryPath)
		if err != nil {
			return nil, noop, err
		}
		if err := db.MigrateSQLite(conn); err != nil {
			_ = conn.Close()
			return nil, noop, fmt.Errorf("migrate sqlite: %w", err)
		}
		return sqlite.NewHistoryRepo(conn), closeDB(conn), nil

	default:
		return nil, noop, fmt.Errorf("%w: %q", config.ErrUnknownHistoryBackend, s.HistoryBackend)
	}
}

func closeDB(conn *sql.DB) func() error {
	return func() error {
		if err := conn.Close(); err != nil {
			slog.Error("failed to close history database", slog.Any("error", err))
			return err
		}
		return nil
	}
}
