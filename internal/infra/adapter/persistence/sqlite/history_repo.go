package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"card-news/internal/domain/entity"
	"card-news/internal/repository"
)

type HistoryRepo struct{ db *sql.DB }

func NewHistoryRepo(db *sql.DB) repository.HistoryRepository {
	return &HistoryRepo{db: db}
}

func (repo *HistoryRepo) Load(ctx context.Context) (map[string]struct{}, error) {
	const query = `
SELECT url
FROM publish_history
`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Load: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	set := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("Load: Scan: %w", err)
		}
		set[url] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Load: rows.Err: %w", err)
	}

	return set, nil
}

// MarkPublished stores published_at as RFC3339 text.
func (repo *HistoryRepo) MarkPublished(ctx context.Context, url string, at time.Time) error {
	const query = `
INSERT INTO publish_history (url, published_at)
VALUES (?, ?)
ON CONFLICT(url) DO UPDATE SET published_at = excluded.published_at`
	_, err := repo.db.ExecContext(ctx, query, entity.NormalizeURL(url), at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("MarkPublished: ExecContext: %w", err)
	}
	return nil
}

func (repo *HistoryRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM publish_history`
	var n int
	if err := repo.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: QueryRowContext: %w", err)
	}
	return n, nil
}
