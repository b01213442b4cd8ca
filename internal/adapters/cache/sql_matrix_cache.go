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

// SQLMatrixCache is a Postgres-backed cache of distance matrices.
// Entries older than TTL are treated as misses; zero TTL never expires.
type SQLMatrixCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSQLMatrixCache(db *sql.DB, ttl time.Duration) *SQLMatrixCache {
	return &SQLMatrixCache{DB: db, TTL: ttl}
}

// Fetch a cached matrix by key.
func (s *SQLMatrixCache) Get(
	ctx context.Context,
	key string,
) (_ *domain.DistanceMatrix, _ bool, err error) {
	defer obs.Time(ctx, "matrix.cache.sql.Get")(&err)

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
	WHERE cache_key = $1;
	`

	var payload string
	var createdAt time.Time
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get matrix cache: query matrix_cache table: %w", err)
	}

	if s.TTL > 0 && time.Since(createdAt) > s.TTL {
		return nil, false, nil
	}

	m, err := decodeMatrix([]byte(payload))
	if err != nil {
		return nil, false, fmt.Errorf("get matrix cache: %w", err)
	}

	return m, true, nil
}

// Store a matrix under key, replacing any previous entry.
func (s *SQLMatrixCache) Put(
	ctx context.Context,
	key string,
	m *domain.DistanceMatrix,
) error {
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
	INSERT INTO matrix_cache (
		cache_key,
		payload,
		created_at
	)
	VALUES ($1, $2, $3)
	ON CONFLICT (cache_key) DO UPDATE
	SET payload = EXCLUDED.payload,
		created_at = EXCLUDED.created_at;
	`, key, string(b), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert matrix cache key=%q: %w", key, err)
	}

	return nil
}
