package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCache(rdb), mr
}

func TestChecksumKeyedByFileVersion(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	mod := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)

	_, ok := c.Checksum(ctx, "/uploads/a.mp4", 10, mod)
	assert.False(t, ok)

	c.SetChecksum(ctx, "/uploads/a.mp4", 10, mod, "sha256:abc")
	sum, ok := c.Checksum(ctx, "/uploads/a.mp4", 10, mod)
	require.True(t, ok)
	assert.Equal(t, "sha256:abc", sum)

	_, ok = c.Checksum(ctx, "/uploads/a.mp4", 11, mod)
	assert.False(t, ok, "a different size is a different file")
	_, ok = c.Checksum(ctx, "/uploads/a.mp4", 10, mod.Add(time.Second))
	assert.False(t, ok, "a newer upload is a different file")
}

func TestSwapFingerprint(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	changed, err := c.SwapFingerprint(ctx, 7, "schedule:2")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = c.SwapFingerprint(ctx, 7, "schedule:2")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = c.SwapFingerprint(ctx, 7, "layout:4")
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := mr.Get("display:7:fingerprint")
	require.NoError(t, err)
	assert.Equal(t, "layout:4", got)
}

func TestNilCacheNeverHits(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.SetChecksum(ctx, "/uploads/a.mp4", 1, time.Time{}, "sha256:x")
	_, ok := c.Checksum(ctx, "/uploads/a.mp4", 1, time.Time{})
	assert.False(t, ok)
	assert.NoError(t, c.Ping(ctx))

	_, err := c.SwapFingerprint(ctx, 1, "x")
	assert.Error(t, err)
}

func TestCacheSurvivesRedisOutage(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, ok := c.Checksum(context.Background(), "/uploads/a.mp4", 1, time.Time{})
	assert.False(t, ok)
	assert.Error(t, c.Ping(context.Background()))
}
