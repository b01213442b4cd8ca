package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mission-circuit-service/internal/domain"
	"mission-circuit-service/internal/platform/obs"
	"strings"
	"time"
)

// SQLite backed cache of distance matrices.
// Keys are expected to be stable (hashed location lists) by the caller.
type SqliteMatrixCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSqliteMatrixCache(db *sql.DB, ttl time.Duration) *SqliteMatrixCache {
	return &SqliteMatrixCache{DB: db, TTL: ttl}
}

// Fetch a cached matrix by key.
func (s *SqliteMatrixCache) Get(ctx context.Context, key string) (_ *domain.DistanceMatrix, _ bool, err error) {
	defer obs.Time(ctx, "matrix.cache.sqlite.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("matrix cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get matrix cache: key must not be empty")
	}

	q := `
	SELECT
		payload,
		created_at
	FROM matrix_cache
	WHERE cache_key = ?;
	`

	var payload string
	var createdUnix int64
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&payload, &createdUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get matrix cache: query matrix_cache table: %w", err)
	}

	if s.TTL > 0 && time.Since(time.Unix(createdUnix, 0)) > s.TTL {
		return nil, false, nil
	}

	m, err := decodeMatrix([]byte(payload))
	if err != nil {
		return nil, false, fmt.Errorf("get matrix cache: %w", err)
	}

	return m, true, nil
}

// Store a matrix under key, replacing any previous entry.
func (s *SqliteMatrixCache) Put(ctx context.Context, key string, m *domain.DistanceMatrix) error {
	if s.DB == nil {
		return errors.New("matrix cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert matrix cache: key must not be empty")
	}

	b, err := encodeMatrix(m)
	if err != nil {
		return fmt.Errorf("insert matrix cache: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO matrix_cache (
		cache_key,
		payload,
		created_at
	)
	VALUES (?, ?, ?)
	`, key, string(b), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert matrix cache key=%q: %w", key, err)
	}

	return nil
}
