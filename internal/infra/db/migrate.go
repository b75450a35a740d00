package db

import (
	"database/sql"
	"fmt"
)

const createHistoryPostgres = `
CREATE TABLE IF NOT EXISTS publish_history (
    url          TEXT PRIMARY KEY,
    published_at TIMESTAMPTZ NOT NULL
)`

const createHistorySQLite = `
CREATE TABLE IF NOT EXISTS publish_history (
    url          TEXT PRIMARY KEY,
    published_at TEXT NOT NULL
)`

// publish_history is scanned in full on load; the index serves retention queries.
const createHistoryIndex = `CREATE INDEX IF NOT EXISTS idx_publish_history_published_at ON publish_history(published_at DESC)`

// MigratePostgres creates the publish_history schema if it does not exist.
func MigratePostgres(db *sql.DB) error {
	return migrate(db, createHistoryPostgres, createHistoryIndex)
}

// MigrateSQLite creates the publish_history schema if it does not exist.
func MigrateSQLite(db *sql.DB) error {
	return migrate(db, createHistorySQLite, createHistoryIndex)
}

// MigrateDown drops the publish history. All recorded URLs are lost.
func MigrateDown(db *sql.DB) error {
	return migrate(db,
		`DROP INDEX IF EXISTS idx_publish_history_published_at`,
		`DROP TABLE IF EXISTS publish_history`,
	)
}

func migrate(db *sql.DB, statements ...string) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
