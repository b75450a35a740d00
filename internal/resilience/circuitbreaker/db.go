package circuitbreaker

import (
	"context"
	"database/sql"
	"time"

	"github.com/sony/gobreaker"
)

// DBCircuitBreaker guards the publish history database. When the database is
// down, calls fail fast with gobreaker.ErrOpenState instead of waiting on
// connection timeouts for every item.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// HistoryDBConfig trips after 5 consecutive failures and probes again after 30 seconds.
func HistoryDBConfig() Config {
	return Config{
		Name:                "history-db",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		FailureThreshold:    1.0,
		MinRequests:         5,
		ConsecutiveFailures: 5,
	}
}

// NewDBCircuitBreaker wraps db with the HistoryDBConfig breaker.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, HistoryDBConfig())
}

// NewDBCircuitBreakerWithConfig wraps db with a breaker built from cfg.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

// QueryContext runs a query through the breaker.
func (dcb *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return Do(dcb.cb, func() (*sql.Rows, error) {
		return dcb.db.QueryContext(ctx, query, args...)
	})
}

// ExecContext runs a statement through the breaker.
func (dcb *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return Do(dcb.cb, func() (sql.Result, error) {
		return dcb.db.ExecContext(ctx, query, args...)
	})
}

// QueryRowContext bypasses the breaker: sql.Row defers its error until Scan,
// so there is no failure to record here.
func (dcb *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return dcb.db.QueryRowContext(ctx, query, args...)
}

// State returns the current state of the circuit breaker.
func (dcb *DBCircuitBreaker) State() gobreaker.State {
	return dcb.cb.State()
}

// IsOpen returns true if the circuit breaker is in the open state.
func (dcb *DBCircuitBreaker) IsOpen() bool {
	return dcb.cb.IsOpen()
}
