package source

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/ZaguanLabs/gotlres"
)

// MockSource is a scripted bundle source for testing. It is safe for
// concurrent use.
type MockSource struct {
	mu       sync.Mutex
	bundles  map[string]Bundle
	failures map[string]error
	delay    time.Duration
	calls    map[string]int
	total    int
}

// NewMockSource creates an empty mock source.
func NewMockSource() *MockSource {
	return &MockSource{
		bundles:  make(map[string]Bundle),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// Add registers a bundle for locale and module.
func (m *MockSource) Add(locale, module string, bundle Bundle) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles[gotlres.CacheKey(locale, module)] = bundle
	return m
}

// Fail makes every fetch of locale and module return err.
func (m *MockSource) Fail(locale, module string, err error) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[gotlres.CacheKey(locale, module)] = err
	return m
}

// SetDelay makes every fetch wait d before answering.
func (m *MockSource) SetDelay(d time.Duration) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// FetchBundle returns the scripted bundle or failure.
func (m *MockSource) FetchBundle(ctx context.Context, locale, module string) (Bundle, error) {
	key := gotlres.CacheKey(locale, module)

	m.mu.Lock()
	m.calls[key]++
	m.total++
	delay := m.delay
	bundle, found := m.bundles[key]
	failure := m.failures[key]
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if failure != nil {
		return nil, failure
	}
	if !found {
		return nil, &gotlres.SourceError{
			Message: fmt.Sprintf("no bundle for %s/%s", locale, module),
			Cause:   fs.ErrNotExist,
		}
	}
	return bundle, nil
}

// Calls returns how many times locale and module were fetched.
func (m *MockSource) Calls(locale, module string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[gotlres.CacheKey(locale, module)]
}

// CallCount returns the total number of fetches.
func (m *MockSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// Reset clears the call counters.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
	m.total = 0
}

// Verify MockSource implements BundleSource
var _ BundleSource = (*MockSource)(nil)
