package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache TTLs. Profile and presence keys live 5 minutes, list caches 2.
const (
	ProfileTTL  = 5 * time.Minute
	PresenceTTL = 5 * time.Minute
	ListTTL     = 2 * time.Minute
)

// RDB is the shared Redis client, set by Connect. It carries the response
// caches, presence keys, rate-limit counters and the chat pub/sub traffic.
var RDB *redis.Client

// Connect initializes the Redis connection.
func Connect(url string) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatal().Err(err).Str("url", url).Msg("Invalid redis URL")
	}
	RDB = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("url", url).Msg("Redis unreachable")
	}
	log.Info().Str("url", url).Msg("Redis connection established")
}

// Close releases the client. Safe to call when Connect never ran.
func Close() {
	if RDB != nil {
		_ = RDB.Close()
	}
}

// MarkOnline refreshes the presence key for a user.
func MarkOnline(ctx context.Context, userID string) {
	if err := RDB.SetEx(ctx, "online:"+userID, "1", PresenceTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to mark user online")
	}
}

// IsOnline reports whether the presence key for a user exists.
func IsOnline(ctx context.Context, userID string) bool {
	n, err := RDB.Exists(ctx, "online:"+userID).Result()
	return err == nil && n > 0
}

// Allow applies a fixed-window rate limit: at most max hits per window for
// the given key. Redis errors fail open so a cache outage does not take
// the write path down with it.
func Allow(ctx context.Context, key string, max int64, window time.Duration) bool {
	n, err := RDB.Incr(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
		return true
	}
	if n == 1 {
		RDB.Expire(ctx, key, window)
	}
	return n <= max
}

// GetJSON loads a cached value into dst, reporting whether it was present
// and decodable.
func GetJSON(ctx context.Context, key string, dst any) bool {
	raw, err := RDB.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// SetJSON stores a value under key for ttl. Failures are logged, not
// propagated; the cache is never load-bearing.
func SetJSON(ctx context.Context, key string, val any, ttl time.Duration) {
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := RDB.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache value")
	}
}

// Invalidate deletes the given keys.
func Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := RDB.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}
}

// InvalidatePattern deletes every key matching a glob pattern, e.g.
// "posts:feed:*".
func InvalidatePattern(ctx context.Context, pattern string) {
	iter := RDB.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		RDB.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Str("pattern", pattern).Msg("cache invalidation scan failed")
	}
}
