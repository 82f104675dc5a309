package gotlres

import (
	"context"

	"github.com/rs/zerolog"
)

// Localizer wires the loader, resolver and preloader from a Config. It is
// the entry point for rendering code.
type Localizer struct {
	cfg       Config
	locales   *LocaleSet
	cache     ResourceCache
	cacheSet  bool
	events    EventHandler
	logger    zerolog.Logger
	loader    *ModuleLoader
	resolver  *Resolver
	preloader *Preloader
}

// Option is a functional option for configuring the Localizer.
type Option func(*Localizer)

// WithCache sets the bundle cache. Without it, New builds a MemoryCache from
// Config.TTL and Config.MaxCacheSize.
func WithCache(cache ResourceCache) Option {
	return func(l *Localizer) {
		l.cache = cache
		l.cacheSet = true
	}
}

// WithoutCache disables caching; every load hits the source.
func WithoutCache() Option {
	return func(l *Localizer) {
		l.cache = nil
		l.cacheSet = true
	}
}

// WithEventHandler sets the handler receiving every classified failure.
func WithEventHandler(h EventHandler) Option {
	return func(l *Localizer) {
		l.events = h
	}
}

// WithLogger sets the logger shared by all components.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Localizer) {
		l.logger = logger
	}
}

// New creates a Localizer reading bundles from source.
func New(cfg Config, source BundleSource, opts ...Option) (*Localizer, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	locales, err := NewLocaleSet(cfg.SupportedLocales, cfg.DefaultLocale)
	if err != nil {
		return nil, err
	}

	l := &Localizer{
		cfg:     cfg,
		locales: locales,
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}
	if !l.cacheSet {
		l.cache = NewMemoryCache(MemoryCacheConfig{TTL: cfg.TTL, MaxSize: cfg.MaxCacheSize})
	}

	loaderOpts := []LoaderOption{
		WithLoaderCache(l.cache),
		WithLoaderEvents(l.events),
		WithLoaderLogger(l.logger),
		WithFetchTimeout(cfg.FetchTimeout),
		WithDefaultLocale(locales.Default()),
	}
	if cfg.CoalesceLoads {
		loaderOpts = append(loaderOpts, WithCoalescing())
	}

	l.loader = NewModuleLoader(source, loaderOpts...)
	l.resolver = NewResolver(locales, cfg.Mode, WithResolverEvents(l.events))
	l.preloader = NewPreloader(l.loader, locales.Supported(), cfg.CriticalModules,
		WithConcurrency(cfg.PreloadConcurrency),
		WithPreloadLogger(l.logger),
	)

	return l, nil
}

// T resolves key in module for locale, applying the full fallback chain:
// unsupported locale → default locale, failed module load → default-locale
// bundle, unresolvable key → mode-specific fallback string.
func (l *Localizer) T(ctx context.Context, locale, module, key string, params Params) string {
	locale = l.resolver.checkLocale(locale)
	bundle, used := l.loader.LoadWithFallback(ctx, locale, module)
	return l.resolver.Resolve(bundle, key, used, params)
}

// Load returns the bundle for (locale, module), or an empty bundle on failure.
func (l *Localizer) Load(ctx context.Context, locale, module string) Bundle {
	return l.loader.Load(ctx, locale, module)
}

// Resolve resolves key in an already loaded bundle.
func (l *Localizer) Resolve(bundle Bundle, key, locale string, params Params) string {
	return l.resolver.Resolve(bundle, key, locale, params)
}

// PreloadCritical warms the critical modules for locale.
func (l *Localizer) PreloadCritical(ctx context.Context, locale string) PreloadResult {
	return l.preloader.PreloadCritical(ctx, locale)
}

// WarmupModule warms module for each of locales.
func (l *Localizer) WarmupModule(ctx context.Context, module string, locales []string) PreloadResult {
	return l.preloader.WarmupModule(ctx, module, locales)
}

// PreloadAll warms the critical modules for every supported locale.
func (l *Localizer) PreloadAll(ctx context.Context) PreloadResult {
	return l.preloader.PreloadAll(ctx)
}

// Stats returns the cache statistics, or zero stats without a cache.
func (l *Localizer) Stats() CacheStats {
	if l.cache == nil {
		return CacheStats{Keys: []string{}}
	}
	return l.cache.Stats()
}

// ClearLocale drops cached bundles for locale.
func (l *Localizer) ClearLocale(locale string) {
	if l.cache != nil {
		l.cache.ClearLocale(locale)
	}
}

// Locales returns the supported locale set.
func (l *Localizer) Locales() *LocaleSet {
	return l.locales
}

// Mode returns the configured mode.
func (l *Localizer) Mode() Mode {
	return l.cfg.Mode
}

// Config returns the normalized configuration.
func (l *Localizer) Config() Config {
	return l.cfg
}
