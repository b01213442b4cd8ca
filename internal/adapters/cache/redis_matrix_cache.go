package cache

import (
	"context"
	"errors"
	"fmt"
	"mission-circuit-service/internal/domain"
	"mission-circuit-service/internal/platform/obs"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "circuits:matrix:"

// RedisMatrixCache stores distance matrices in Redis with a TTL.
type RedisMatrixCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisMatrixCache(client *redis.Client, ttl time.Duration) *RedisMatrixCache {
	return &RedisMatrixCache{Client: client, TTL: ttl}
}

// OpenRedis parses a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("open redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("open redis: ping: %w", err)
	}

	return client, nil
}

func (c *RedisMatrixCache) Get(ctx context.Context, key string) (_ *domain.DistanceMatrix, _ bool, err error) {
	defer obs.Time(ctx, "matrix.cache.redis.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("redis matrix cache: client is nil")
	}

	b, err := c.Client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get redis matrix cache: %w", err)
	}

	m, err := decodeMatrix(b)
	if err != nil {
		return nil, false, fmt.Errorf("get redis matrix cache: %w", err)
	}

	return m, true, nil
}

func (c *RedisMatrixCache) Put(ctx context.Context, key string, m *domain.DistanceMatrix) error {
	if c.Client == nil {
		return errors.New("redis matrix cache: client is nil")
	}

	b, err := encodeMatrix(m)
	if err != nil {
		return fmt.Errorf("put redis matrix cache: %w", err)
	}

	if err := c.Client.Set(ctx, redisKeyPrefix+key, b, c.TTL).Err(); err != nil {
		return fmt.Errorf("put redis matrix cache: %w", err)
	}

	return nil
}
