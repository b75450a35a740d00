package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-news/internal/infra/history"
)

func openBolt(t *testing.T) *history.BoltStore {
	t.Helper()
	store, err := history.OpenBoltStore(filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStore_Empty(t *testing.T) {
	store := openBolt(t)

	set, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, set)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBoltStore_MarkPublished(t *testing.T) {
	store := openBolt(t)
	ctx := context.Background()

	require.NoError(t, store.MarkPublished(ctx, "https://Example.com/a/", publishedAt))
	require.NoError(t, store.MarkPublished(ctx, "https://example.com/b", publishedAt))
	require.NoError(t, store.MarkPublished(ctx, "https://example.com/a", publishedAt.Add(time.Hour)))

	set, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"https://example.com/a": {},
		"https://example.com/b": {},
	}, set)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	at, err := store.PublishedAt("https://example.com/a")
	require.NoError(t, err)
	assert.True(t, at.Equal(publishedAt.Add(time.Hour)), "got %v", at)

	never, err := store.PublishedAt("https://example.com/missing")
	require.NoError(t, err)
	assert.True(t, never.IsZero())
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := history.OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.MarkPublished(ctx, "https://example.com/a", publishedAt))
	require.NoError(t, store.Close())

	reopened, err := history.OpenBoltStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	set, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, set, "https://example.com/a")
}
