package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/gotlres"
)

const (
	// DefaultKeyPrefix namespaces every key written by RedisCache.
	DefaultKeyPrefix = "gotlres:"

	scanCount   = 100
	opTimeout   = 5 * time.Second
	pingTimeout = 5 * time.Second
)

// RedisCache is a Redis-backed bundle cache. Bundles are stored as JSON and
// expire through Redis TTLs. Size is bounded by the server's memory policy,
// so Stats reports MaxSize as 0.
type RedisCache struct {
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string
	log       zerolog.Logger
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string        // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       time.Duration // Entry lifetime (0 = no expiration)
	KeyPrefix string        // Prefix for all keys (default: "gotlres:")
	Logger    *zerolog.Logger
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	c := NewRedisCacheFromClient(client, cfg.TTL, cfg.KeyPrefix)
	if cfg.Logger != nil {
		c.log = cfg.Logger.With().Str("sys", "redis-cache").Logger()
	}
	return c, nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient(client redis.UniversalClient, ttl time.Duration, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}

	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		log:       zerolog.Nop(),
	}
}

// Get retrieves a bundle. Decode and transport errors are reported as misses.
func (c *RedisCache) Get(locale, module string) (Bundle, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key(locale, module)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("locale", locale).Str("module", module).Msg("get failed")
		return nil, false
	}

	var bundle Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil || bundle == nil {
		c.log.Warn().Err(err).Str("locale", locale).Str("module", module).Msg("corrupt entry")
		return nil, false
	}
	return bundle, true
}

// Set stores a bundle as JSON with the configured TTL.
func (c *RedisCache) Set(locale, module string, bundle Bundle) error {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return c.client.Set(ctx, c.key(locale, module), string(raw), c.ttl).Err()
}

// Clear deletes every key under the prefix.
func (c *RedisCache) Clear() {
	c.deleteMatching(c.keyPrefix + "*")
}

// ClearLocale deletes every key for locale.
func (c *RedisCache) ClearLocale(locale string) {
	c.deleteMatching(c.keyPrefix + locale + ":*")
}

// Stats counts the bundle keys under the prefix. Keys are reported without
// the prefix, in "locale:module" form.
func (c *RedisCache) Stats() gotlres.CacheStats {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	stats := gotlres.CacheStats{TTL: c.ttl, Keys: []string{}}

	keys, err := c.scan(ctx, c.keyPrefix+"*")
	if err != nil {
		c.log.Warn().Err(err).Msg("stats scan failed")
	}
	for _, key := range keys {
		id := strings.TrimPrefix(key, c.keyPrefix)
		if _, _, ok := gotlres.SplitCacheKey(id); !ok {
			continue
		}
		stats.Keys = append(stats.Keys, id)
	}
	sort.Strings(stats.Keys)
	stats.Size = len(stats.Keys)
	return stats
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) key(locale, module string) string {
	return c.keyPrefix + gotlres.CacheKey(locale, module)
}

func (c *RedisCache) deleteMatching(pattern string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	keys, err := c.scan(ctx, pattern)
	if err != nil {
		c.log.Warn().Err(err).Str("pattern", pattern).Msg("clear scan failed")
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Str("pattern", pattern).Msg("clear failed")
	}
}

// scan walks the keyspace for pattern. SCAN may repeat keys, so the
// result is deduplicated.
func (c *RedisCache) scan(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return out, err
		}
		for _, k := range keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

// Verify RedisCache implements ResourceCache
var _ ResourceCache = (*RedisCache)(nil)
