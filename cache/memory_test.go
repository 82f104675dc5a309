package cache

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestInMemoryCache_GetSet(t *testing.T) {
	c := NewInMemoryCache(MemoryConfig{TTL: time.Hour})

	if err := c.Set("en", "common", Bundle{"title": "Welcome"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok := c.Get("en", "common")
	if !ok {
		t.Error("Get should return true for existing key")
	}
	if val["title"] != "Welcome" {
		t.Errorf("Get returned %v, want title=Welcome", val)
	}

	val, ok = c.Get("fr", "common")
	if ok {
		t.Error("Get should return false for missing key")
	}
	if val != nil {
		t.Errorf("Get should return nil for missing key, got %v", val)
	}
}

func TestInMemoryCache_TTL(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache(MemoryConfig{TTL: time.Minute, Clock: clock.Now})

	c.Set("en", "common", Bundle{"a": "1"})

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("en", "common"); !ok {
		t.Fatal("entry should be live before TTL")
	}

	// Reads do not extend the lifetime.
	clock.Advance(time.Second)
	if _, ok := c.Get("en", "common"); ok {
		t.Error("entry should be expired at TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped on read, Len = %d", c.Len())
	}
}

func TestInMemoryCache_NoTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache(MemoryConfig{TTL: 0, Clock: clock.Now})

	c.Set("en", "common", Bundle{"a": "1"})
	clock.Advance(1000 * time.Hour)

	if _, ok := c.Get("en", "common"); !ok {
		t.Error("entry should never expire with zero TTL")
	}
}

func TestInMemoryCache_SetPurgesExpired(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache(MemoryConfig{TTL: time.Minute, MaxSize: 2, Clock: clock.Now})

	c.Set("en", "a", Bundle{})
	c.Set("en", "b", Bundle{})
	clock.Advance(2 * time.Minute)
	c.Set("en", "c", Bundle{})

	if got := c.Stats().Keys; !reflect.DeepEqual(got, []string{"en:c"}) {
		t.Errorf("Keys = %v, want [en:c]", got)
	}
}

func TestInMemoryCache_LRUEviction(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache(MemoryConfig{TTL: time.Hour, MaxSize: 2, Clock: clock.Now})

	c.Set("en", "a", Bundle{"k": "a"})
	clock.Advance(time.Second)
	c.Set("en", "b", Bundle{"k": "b"})
	clock.Advance(time.Second)
	c.Get("en", "a")
	clock.Advance(time.Second)
	c.Set("en", "c", Bundle{"k": "c"})

	if _, ok := c.Get("en", "b"); ok {
		t.Error("b should have been evicted as least recently used")
	}
	if _, ok := c.Get("en", "a"); !ok {
		t.Error("a should survive after being read")
	}
	if _, ok := c.Get("en", "c"); !ok {
		t.Error("c should be present")
	}
}

func TestInMemoryCache_LRUTieBreak(t *testing.T) {
	// Frozen clock: every timestamp is equal, so order of access decides.
	clock := newFakeClock()
	c := NewInMemoryCache(MemoryConfig{MaxSize: 2, Clock: clock.Now})

	c.Set("en", "a", Bundle{})
	c.Set("en", "b", Bundle{})
	c.Get("en", "a")
	c.Set("en", "c", Bundle{})

	if got := c.Stats().Keys; !reflect.DeepEqual(got, []string{"en:a", "en:c"}) {
		t.Errorf("Keys = %v, want [en:a en:c]", got)
	}
}

func TestInMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	c := NewInMemoryCache(MemoryConfig{MaxSize: 2})

	c.Set("en", "a", Bundle{"v": "1"})
	c.Set("en", "b", Bundle{})
	c.Set("en", "a", Bundle{"v": "2"})

	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	got, _ := c.Get("en", "a")
	if got["v"] != "2" {
		t.Errorf("overwrite lost, got %v", got)
	}
}

func TestInMemoryCache_DefaultMaxSize(t *testing.T) {
	c := NewInMemoryCache(MemoryConfig{})

	for i := 0; i < DefaultMaxSize+10; i++ {
		c.Set("en", fmt.Sprintf("m%d", i), Bundle{})
	}

	stats := c.Stats()
	if stats.Size != DefaultMaxSize || stats.MaxSize != DefaultMaxSize {
		t.Errorf("Stats = %d/%d, want %d/%d", stats.Size, stats.MaxSize, DefaultMaxSize, DefaultMaxSize)
	}
}

func TestInMemoryCache_Clear(t *testing.T) {
	c := NewInMemoryCache(MemoryConfig{})

	c.Set("en", "a", Bundle{})
	c.Set("fr", "a", Bundle{})
	c.Clear()
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", c.Len())
	}
}

func TestInMemoryCache_ClearLocale(t *testing.T) {
	c := NewInMemoryCache(MemoryConfig{})

	c.Set("en", "common", Bundle{})
	c.Set("en", "auth", Bundle{})
	c.Set("fr", "common", Bundle{})
	c.Set("en-GB", "common", Bundle{})

	c.ClearLocale("en")

	want := []string{"en-GB:common", "fr:common"}
	if got := c.Stats().Keys; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
}

func TestInMemoryCache_Stats(t *testing.T) {
	c := NewInMemoryCache(MemoryConfig{TTL: time.Minute, MaxSize: 5})

	stats := c.Stats()
	if stats.Size != 0 || stats.MaxSize != 5 || stats.TTL != time.Minute {
		t.Errorf("unexpected empty stats: %+v", stats)
	}
	if stats.Keys == nil {
		t.Error("Keys should be an empty slice, not nil")
	}

	c.Set("fr", "b", Bundle{})
	c.Set("en", "a", Bundle{})

	if got := c.Stats().Keys; !reflect.DeepEqual(got, []string{"en:a", "fr:b"}) {
		t.Errorf("Keys = %v, want sorted", got)
	}
}

func TestInMemoryCache_Entries(t *testing.T) {
	clock := newFakeClock()
	c := NewInMemoryCache(MemoryConfig{TTL: time.Minute, Clock: clock.Now})

	c.Set("en", "old", Bundle{})
	clock.Advance(30 * time.Second)
	c.Set("en", "new", Bundle{"k": "v"})
	clock.Advance(40 * time.Second)

	entries := c.Entries()
	if len(entries) != 1 {
		t.Fatalf("Entries = %v, want only the live one", entries)
	}
	if entries[0].Locale != "en" || entries[0].Module != "new" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	c := NewInMemoryCache(MemoryConfig{MaxSize: 50})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			module := fmt.Sprintf("m%d", n%60)
			c.Set("en", module, Bundle{"n": n})
			c.Get("en", module)
			if n%25 == 0 {
				c.ClearLocale("fr")
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len = %d exceeds MaxSize", c.Len())
	}
}
