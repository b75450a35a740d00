package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()

	assert.Equal(t, 5, cfg.MaxOpenConns)
	assert.Equal(t, 2, cfg.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxIdleTime)
}

func TestGetConnectionConfigFromEnv(t *testing.T) {
	defaults := DefaultConnectionConfig()

	tests := []struct {
		name string
		env  map[string]string
		want ConnectionConfig
	}{
		{
			name: "defaults",
			want: defaults,
		},
		{
			name: "all custom values",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":     "50",
				"DB_MAX_IDLE_CONNS":     "20",
				"DB_CONN_MAX_LIFETIME":  "2h",
				"DB_CONN_MAX_IDLE_TIME": "45m",
			},
			want: ConnectionConfig{
				MaxOpenConns:    50,
				MaxIdleConns:    20,
				ConnMaxLifetime: 2 * time.Hour,
				ConnMaxIdleTime: 45 * time.Minute,
			},
		},
		{
			name: "partial values",
			env:  map[string]string{"DB_MAX_OPEN_CONNS": "8"},
			want: ConnectionConfig{
				MaxOpenConns:    8,
				MaxIdleConns:    defaults.MaxIdleConns,
				ConnMaxLifetime: defaults.ConnMaxLifetime,
				ConnMaxIdleTime: defaults.ConnMaxIdleTime,
			},
		},
		{
			name: "invalid values fall back",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":     "invalid",
				"DB_MAX_IDLE_CONNS":     "0",
				"DB_CONN_MAX_LIFETIME":  "-1h",
				"DB_CONN_MAX_IDLE_TIME": "soon",
			},
			want: defaults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME"} {
				t.Setenv(key, tt.env[key])
			}
			assert.Equal(t, tt.want, getConnectionConfigFromEnv())
		})
	}
}

func TestOpenPostgres_EmptyDSN(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "")
	assert.Error(t, err)
}

// Requires a reachable database; skipped unless DATABASE_URL is set.
func TestOpenPostgres_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := OpenPostgres(context.Background(), dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, MigratePostgres(db))
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.sqlite")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, MigrateSQLite(db))
	// idempotent
	require.NoError(t, MigrateSQLite(db))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
