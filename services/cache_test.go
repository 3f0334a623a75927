package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "short", []byte("v1"), time.Minute))
	require.NoError(t, cache.Set(ctx, "forever", []byte("v2"), 0))

	value, err := cache.Get(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)

	now = now.Add(time.Minute)
	_, err = cache.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss, "entries expire at their deadline")

	value, err = cache.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)

	require.NoError(t, cache.Delete(ctx, "forever"))
	_, err = cache.Get(ctx, "forever")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNewCache(t *testing.T) {
	cache, err := NewCache("", "repairhub")
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, cache)

	cache, err = NewCache("redis://localhost:6379/0", "repairhub")
	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, cache)

	_, err = NewCache("http://localhost:6379", "repairhub")
	assert.Error(t, err)
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	cache := NewRedisCache(nil, "repairhub")
	assert.Equal(t, "repairhub:dashboard:statistics", cache.key(DashboardStatisticsKey))
	assert.Equal(t, "plain", NewRedisCache(nil, "").key("plain"))
}

// Requires a running Redis; set REDIS_URL to enable
func TestRedisCache_Roundtrip(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	cache := NewRedisCache(client, "repairhub-test")
	require.NoError(t, cache.Ping(ctx))

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))
	value, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)

	require.NoError(t, cache.Delete(ctx, "k"))
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
