package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"card-news/internal/domain/entity"
	"card-news/internal/repository"
	"card-news/internal/resilience/circuitbreaker"
)

// HistoryRepo stores publish history in the publish_history table.
// Every statement goes through a database circuit breaker.
type HistoryRepo struct {
	db *circuitbreaker.DBCircuitBreaker
}

func NewHistoryRepo(db *sql.DB) repository.HistoryRepository {
	return &HistoryRepo{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

func (repo *HistoryRepo) Load(ctx context.Context) (map[string]struct{}, error) {
	const query = `SELECT url FROM publish_history`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	defer func() { _ = rows.Close() }()

	set := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("Load: %w", err)
		}
		set[url] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	return set, nil
}

func (repo *HistoryRepo) MarkPublished(ctx context.Context, url string, at time.Time) error {
	const query = `
INSERT INTO publish_history (url, published_at)
VALUES ($1, $2)
ON CONFLICT (url) DO UPDATE SET published_at = EXCLUDED.published_at`
	if _, err := repo.db.ExecContext(ctx, query, entity.NormalizeURL(url), at.UTC()); err != nil {
		return fmt.Errorf("MarkPublished: %w", err)
	}
	return nil
}

func (repo *HistoryRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM publish_history`
	var n int
	if err := repo.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}
