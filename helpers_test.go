package gotlres

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// mapCache is an unbounded ResourceCache for tests.
type mapCache struct {
	mu   sync.Mutex
	data map[string]Bundle
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]Bundle)}
}

func (c *mapCache) Get(locale, module string) (Bundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[CacheKey(locale, module)]
	return b, ok
}

func (c *mapCache) Set(locale, module string, b Bundle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[CacheKey(locale, module)] = b
	return nil
}

func (c *mapCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]Bundle)
}

func (c *mapCache) ClearLocale(locale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if l, _, _ := SplitCacheKey(k); l == locale {
			delete(c.data, k)
		}
	}
}

func (c *mapCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return CacheStats{Size: len(c.data), Keys: keys}
}

// stubSource serves fixed bundles and counts fetches per key.
type stubSource struct {
	mu      sync.Mutex
	bundles map[string]Bundle
	fail    map[string]error
	calls   map[string]int
	delay   time.Duration
}

func newStubSource() *stubSource {
	return &stubSource{
		bundles: make(map[string]Bundle),
		fail:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (s *stubSource) add(locale, module string, b Bundle) *stubSource {
	s.bundles[CacheKey(locale, module)] = b
	return s
}

func (s *stubSource) FetchBundle(ctx context.Context, locale, module string) (Bundle, error) {
	key := CacheKey(locale, module)

	s.mu.Lock()
	s.calls[key]++
	b, ok := s.bundles[key]
	err := s.fail[key]
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &SourceError{Message: "module not found: " + key}
	}
	return b, nil
}

func (s *stubSource) callsFor(locale, module string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[CacheKey(locale, module)]
}

var errBoom = errors.New("boom")

// recorder collects emitted events.
type recorder struct {
	mu     sync.Mutex
	events []*TranslationError
}

func (r *recorder) handle(ev *TranslationError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []ErrorKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ErrorKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}
