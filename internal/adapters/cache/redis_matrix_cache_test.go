package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-circuit-service/internal/domain"
)

func sampleMatrix() *domain.DistanceMatrix {
	return &domain.DistanceMatrix{
		Distances: [][]float64{{0, 1200.5}, {1180, 0}},
		Durations: [][]float64{{0, 95}, {90, 0}},
	}
}

func TestRedisMatrixCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := OpenRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisMatrixCache(client, time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "k1", sampleMatrix()))
	assert.True(t, mr.Exists(redisKeyPrefix+"k1"))

	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleMatrix(), got)
}

func TestRedisMatrixCacheExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisMatrixCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k1", sampleMatrix()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisMatrixCacheCorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, mr.Set(redisKeyPrefix+"bad", "{not json"))

	_, ok, err := NewRedisMatrixCache(client, time.Minute).Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestOpenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := OpenRedis(ctx, "redis://"+addr)
	assert.Error(t, err)
}
