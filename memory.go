package gotlres

import (
	"sort"
	"sync"
	"time"
)

// CacheEntry is a live cache entry, as returned for snapshot export.
type CacheEntry struct {
	Locale string
	Module string
	Bundle Bundle
}

// cacheEntry holds a cached bundle with its timestamps.
type cacheEntry struct {
	locale       string
	module       string
	bundle       Bundle
	insertedAt   time.Time
	lastAccessed time.Time
	seq          uint64 // breaks lastAccessed ties; higher is more recent
}

// MemoryCacheConfig holds configuration for the in-memory cache.
type MemoryCacheConfig struct {
	TTL     time.Duration    // Entry lifetime (0 = no expiration)
	MaxSize int              // Maximum entries (0 = DefaultMaxCacheSize)
	Clock   func() time.Time // Time source (default: time.Now)
}

// MemoryCache is a thread-safe bundle cache with TTL expiry and LRU
// eviction. Expired entries are never returned; they are dropped when read
// and purged before each insertion.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	seq     uint64
}

// NewMemoryCache creates an in-memory cache. New uses one sized from Config
// when no cache is supplied.
func NewMemoryCache(cfg MemoryCacheConfig) *MemoryCache {
	ttl := cfg.TTL
	if ttl < 0 {
		ttl = 0 // No expiration
	}

	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxCacheSize
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &MemoryCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     now,
	}
}

// Get retrieves a bundle from the cache and refreshes its recency.
// Returns nil and false if not found or expired.
func (c *MemoryCache) Get(locale, module string) (Bundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := CacheKey(locale, module)
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	now := c.now()
	if c.expired(entry, now) {
		delete(c.entries, key)
		return nil, false
	}

	c.seq++
	entry.lastAccessed = now
	entry.seq = c.seq
	return entry.bundle, true
}

// Set stores a bundle. When a new key would exceed MaxSize, the least
// recently accessed entry is evicted first. Set never fails.
func (c *MemoryCache) Set(locale, module string, bundle Bundle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.purgeExpired(now)

	key := CacheKey(locale, module)
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLRU()
	}

	c.seq++
	c.entries[key] = &cacheEntry{
		locale:       locale,
		module:       module,
		bundle:       bundle,
		insertedAt:   now,
		lastAccessed: now,
		seq:          c.seq,
	}
	return nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// ClearLocale removes every entry for locale.
func (c *MemoryCache) ClearLocale(locale string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.locale == locale {
			delete(c.entries, key)
		}
	}
}

// Stats returns the cache size, bounds and sorted keys.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return CacheStats{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
		TTL:     c.ttl,
		Keys:    keys,
	}
}

// Len returns the number of entries in the cache (including expired ones).
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Entries returns all non-expired entries sorted by key.
// This is used for cache export.
func (c *MemoryCache) Entries() []CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	result := make([]CacheEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		if c.expired(entry, now) {
			continue
		}
		result = append(result, CacheEntry{Locale: entry.locale, Module: entry.module, Bundle: entry.bundle})
	}

	sort.Slice(result, func(i, j int) bool {
		return CacheKey(result[i].Locale, result[i].Module) < CacheKey(result[j].Locale, result[j].Module)
	})
	return result
}

// expired reports whether entry is past its TTL (must be called with lock held).
func (c *MemoryCache) expired(entry *cacheEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(entry.insertedAt) >= c.ttl
}

// purgeExpired drops expired entries (must be called with lock held).
func (c *MemoryCache) purgeExpired(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for key, entry := range c.entries {
		if c.expired(entry, now) {
			delete(c.entries, key)
		}
	}
}

// evictLRU drops the least recently accessed entry (must be called with lock held).
func (c *MemoryCache) evictLRU() {
	var (
		oldestKey string
		oldest    *cacheEntry
	)
	for key, entry := range c.entries {
		if oldest == nil ||
			entry.lastAccessed.Before(oldest.lastAccessed) ||
			(entry.lastAccessed.Equal(oldest.lastAccessed) && entry.seq < oldest.seq) {
			oldestKey, oldest = key, entry
		}
	}
	if oldest != nil {
		delete(c.entries, oldestKey)
	}
}

var _ ResourceCache = (*MemoryCache)(nil)
