package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

const checksumTTL = 7 * 24 * time.Hour

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

// Cache holds derived player data. A nil *Cache is valid and never hits.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	if rdb == nil {
		return nil
	}
	return &Cache{rdb: rdb}
}

func checksumKey(mediaURL string, size int64, modTime time.Time) string {
	return fmt.Sprintf("media:checksum:%d:%d:%s", size, modTime.UnixNano(), mediaURL)
}

func fingerprintKey(displayID int) string {
	return fmt.Sprintf("display:%d:fingerprint", displayID)
}

// Checksum returns a previously computed checksum for this exact version of
// the file.
func (c *Cache) Checksum(ctx context.Context, mediaURL string, size int64, modTime time.Time) (string, bool) {
	if c == nil {
		return "", false
	}
	sum, err := c.rdb.Get(ctx, checksumKey(mediaURL, size, modTime)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		log.Warn().Err(err).Str("url", mediaURL).Msg("checksum cache read failed")
		return "", false
	}
	return sum, true
}

func (c *Cache) SetChecksum(ctx context.Context, mediaURL string, size int64, modTime time.Time, sum string) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, checksumKey(mediaURL, size, modTime), sum, checksumTTL).Err(); err != nil {
		log.Warn().Err(err).Str("url", mediaURL).Msg("checksum cache write failed")
	}
}

// SwapFingerprint stores fp for the display and reports whether it differs
// from the stored one. A display seen for the first time counts as changed.
func (c *Cache) SwapFingerprint(ctx context.Context, displayID int, fp string) (bool, error) {
	if c == nil {
		return false, errors.New("redis: cache not configured")
	}
	prev, err := c.rdb.SetArgs(ctx, fingerprintKey(displayID), fp, redis.SetArgs{Get: true}).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("swap fingerprint for display %d: %w", displayID, err)
	}
	return prev != fp, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
