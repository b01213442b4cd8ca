package cache

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-circuit-service/internal/adapters/repositories"
	"mission-circuit-service/internal/platform/db"
)

func openSqlite(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenSqlite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, repositories.InitSchema(conn, repositories.Sqlite))
	return conn
}

func TestSqliteMatrixCacheRoundTrip(t *testing.T) {
	c := NewSqliteMatrixCache(openSqlite(t), time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "k1", sampleMatrix()))
	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleMatrix(), got)

	// Put replaces.
	updated := sampleMatrix()
	updated.Distances[0][1] = 999
	require.NoError(t, c.Put(ctx, "k1", updated))
	got, _, err = c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 999.0, got.Distances[0][1])
}

func TestSqliteMatrixCacheExpiredEntryIsMiss(t *testing.T) {
	conn := openSqlite(t)
	c := NewSqliteMatrixCache(conn, time.Hour)
	ctx := context.Background()

	payload, err := encodeMatrix(sampleMatrix())
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO matrix_cache (cache_key, payload, created_at) VALUES (?, ?, ?)`,
		"old", string(payload), time.Now().Add(-2*time.Hour).Unix())
	require.NoError(t, err)

	_, ok, err := c.Get(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)

	// Without a TTL the same entry is served.
	_, ok, err = NewSqliteMatrixCache(conn, 0).Get(ctx, "old")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSqliteMatrixCacheRejectsEmptyKey(t *testing.T) {
	c := NewSqliteMatrixCache(openSqlite(t), time.Hour)

	_, _, err := c.Get(context.Background(), " ")
	assert.Error(t, err)
	assert.Error(t, c.Put(context.Background(), "", sampleMatrix()))
}
