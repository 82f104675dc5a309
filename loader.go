package gotlres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// BundleSource fetches the bundle for a (locale, module) pair. How it does so
// (filesystem, network, embedded assets) is up to the implementation.
type BundleSource interface {
	FetchBundle(ctx context.Context, locale, module string) (Bundle, error)
}

// SourceFunc adapts a function to BundleSource.
type SourceFunc func(ctx context.Context, locale, module string) (Bundle, error)

// FetchBundle calls f.
func (f SourceFunc) FetchBundle(ctx context.Context, locale, module string) (Bundle, error) {
	return f(ctx, locale, module)
}

// ResourceCache is the interface for (locale, module) bundle caching.
type ResourceCache interface {
	// Get returns the bundle if present and not expired.
	Get(locale, module string) (Bundle, bool)

	// Set stores a bundle, evicting as needed to respect the size bound.
	Set(locale, module string, bundle Bundle) error

	// Clear drops every entry.
	Clear()

	// ClearLocale drops every entry for locale.
	ClearLocale(locale string)

	// Stats returns a read-only snapshot.
	Stats() CacheStats
}

var (
	// errMalformedBundle is returned internally when a source yields no bundle.
	errMalformedBundle = errors.New("source returned no bundle")

	// errAbandoned marks a load whose caller stopped waiting.
	errAbandoned = errors.New("load abandoned")
)

// ModuleLoader resolves bundles cache-first, falling back to a BundleSource.
// Returned bundles are shared with the cache and must be treated as read-only.
type ModuleLoader struct {
	source        BundleSource
	cache         ResourceCache
	events        EventHandler
	logger        zerolog.Logger
	timeout       time.Duration
	defaultLocale string
	group         *singleflight.Group
}

// LoaderOption is a functional option for configuring the ModuleLoader.
type LoaderOption func(*ModuleLoader)

// WithLoaderCache sets the cache consulted before the source.
func WithLoaderCache(cache ResourceCache) LoaderOption {
	return func(l *ModuleLoader) {
		l.cache = cache
	}
}

// WithLoaderEvents sets the handler receiving MODULE_LOAD_FAILED and
// FALLBACK_USED events.
func WithLoaderEvents(h EventHandler) LoaderOption {
	return func(l *ModuleLoader) {
		l.events = h
	}
}

// WithLoaderLogger sets the debug logger.
func WithLoaderLogger(logger zerolog.Logger) LoaderOption {
	return func(l *ModuleLoader) {
		l.logger = logger.With().Str("sys", "loader").Logger()
	}
}

// WithFetchTimeout bounds each source fetch. Zero disables the timeout.
func WithFetchTimeout(d time.Duration) LoaderOption {
	return func(l *ModuleLoader) {
		l.timeout = d
	}
}

// WithDefaultLocale sets the locale LoadWithFallback retries with.
func WithDefaultLocale(locale string) LoaderOption {
	return func(l *ModuleLoader) {
		l.defaultLocale = locale
	}
}

// WithCoalescing shares one in-flight fetch between concurrent loads of the
// same (locale, module) pair.
func WithCoalescing() LoaderOption {
	return func(l *ModuleLoader) {
		l.group = &singleflight.Group{}
	}
}

// NewModuleLoader creates a loader reading from source.
func NewModuleLoader(source BundleSource, opts ...LoaderOption) *ModuleLoader {
	l := &ModuleLoader{
		source: source,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load returns the bundle for (locale, module). It never fails: when the
// source errors, returns nothing, panics or times out, a MODULE_LOAD_FAILED
// event is emitted, nothing is cached and an empty bundle is returned.
//
// Cancelling ctx only abandons the wait. The fetch keeps running and a late
// result still fills the cache; the abandoned call returns an empty bundle
// without emitting an event.
func (l *ModuleLoader) Load(ctx context.Context, locale, module string) Bundle {
	b, _ := l.load(ctx, locale, module)
	return b
}

// LoadWithFallback loads (locale, module) and, if that fails for a locale
// other than the default, retries with the default locale and emits
// FALLBACK_USED. It returns the bundle and the locale that produced it.
func (l *ModuleLoader) LoadWithFallback(ctx context.Context, locale, module string) (Bundle, string) {
	b, err := l.load(ctx, locale, module)
	if err == nil || errors.Is(err, errAbandoned) || l.defaultLocale == "" || locale == l.defaultLocale {
		return b, locale
	}

	l.events.emit(&TranslationError{
		Kind:    KindFallbackUsed,
		Locale:  locale,
		Module:  module,
		Message: "using default locale " + l.defaultLocale,
		Cause:   err,
	})

	b, _ = l.load(ctx, l.defaultLocale, module)
	return b, l.defaultLocale
}

// load is Load with the failure exposed for callers that need to react to it.
func (l *ModuleLoader) load(ctx context.Context, locale, module string) (Bundle, error) {
	if l.cache != nil {
		if b, ok := l.cache.Get(locale, module); ok {
			l.logger.Debug().Str("locale", locale).Str("module", module).Msg("cache hit")
			return b, nil
		}
	}

	var ch <-chan singleflight.Result
	if l.group != nil {
		ch = l.group.DoChan(CacheKey(locale, module), func() (any, error) {
			// A flight that finished since the miss above has filled the cache.
			if l.cache != nil {
				if b, ok := l.cache.Get(locale, module); ok {
					return b, nil
				}
			}
			return l.fetch(ctx, locale, module)
		})
	} else {
		c := make(chan singleflight.Result, 1)
		go func() {
			b, err := l.fetch(ctx, locale, module)
			c <- singleflight.Result{Val: b, Err: err}
		}()
		ch = c
	}

	var res singleflight.Result
	select {
	case <-ctx.Done():
		l.logger.Debug().Str("locale", locale).Str("module", module).Msg("load abandoned")
		return Bundle{}, fmt.Errorf("%w: %w", errAbandoned, ctx.Err())
	case res = <-ch:
	}

	if res.Err != nil {
		l.events.emit(&TranslationError{
			Kind:    KindModuleLoadFailed,
			Locale:  locale,
			Module:  module,
			Message: "module load failed",
			Cause:   res.Err,
		})
		return Bundle{}, res.Err
	}

	b, _ := res.Val.(Bundle)
	return b, nil
}

// fetch calls the source detached from the caller's cancellation, bounded by
// the fetch timeout. A source that outlives the timeout is reported as failed,
// but its result still fills the cache when it arrives.
func (l *ModuleLoader) fetch(ctx context.Context, locale, module string) (Bundle, error) {
	ctx = context.WithoutCancel(ctx)
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	type result struct {
		b   Bundle
		err error
	}
	done := make(chan result, 1)
	go func() {
		b, err := l.fetchAndStore(ctx, locale, module)
		done <- result{b, err}
	}()

	select {
	case r := <-done:
		return r.b, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("fetching %s: %w", CacheKey(locale, module), ctx.Err())
	}
}

// fetchAndStore calls the source and caches a successful result.
func (l *ModuleLoader) fetchAndStore(ctx context.Context, locale, module string) (b Bundle, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("source panicked: %v", r)
		}
	}()

	start := time.Now()
	b, err = l.source.FetchBundle(ctx, locale, module)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errMalformedBundle
	}

	l.logger.Debug().
		Str("locale", locale).
		Str("module", module).
		Dur("elapsed", time.Since(start)).
		Msg("fetched bundle")

	if l.cache != nil {
		if err := l.cache.Set(locale, module, b); err != nil {
			l.logger.Warn().Err(err).Str("locale", locale).Str("module", module).Msg("cache set failed")
		}
	}

	return b, nil
}
