package cache

import "github.com/ZaguanLabs/gotlres"

// DefaultMaxSize bounds the cache when MemoryConfig.MaxSize is not set.
const DefaultMaxSize = gotlres.DefaultMaxCacheSize

// MemoryConfig holds configuration for the in-memory cache.
type MemoryConfig = gotlres.MemoryCacheConfig

// InMemoryCache is the thread-safe TTL/LRU bundle cache. It lives in the root
// package so that a Localizer can build one from its Config.
type InMemoryCache = gotlres.MemoryCache

// NewInMemoryCache creates a new in-memory cache.
func NewInMemoryCache(cfg MemoryConfig) *InMemoryCache {
	return gotlres.NewMemoryCache(cfg)
}
