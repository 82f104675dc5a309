package gotlres

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Preloader warms the cache for critical modules by issuing loads through a
// ModuleLoader. Partial failure is expected and never fails a batch.
type Preloader struct {
	loader      *ModuleLoader
	locales     []string
	critical    []string
	concurrency int
	logger      zerolog.Logger
}

// PreloaderOption is a functional option for configuring the Preloader.
type PreloaderOption func(*Preloader)

// WithConcurrency caps the number of concurrent loads. n <= 0 means no cap.
func WithConcurrency(n int) PreloaderOption {
	return func(p *Preloader) {
		p.concurrency = n
	}
}

// WithPreloadLogger sets the logger used for batch summaries.
func WithPreloadLogger(logger zerolog.Logger) PreloaderOption {
	return func(p *Preloader) {
		p.logger = logger.With().Str("sys", "preload").Logger()
	}
}

// NewPreloader creates a preloader for the given supported locales and
// critical modules.
func NewPreloader(loader *ModuleLoader, locales, critical []string, opts ...PreloaderOption) *Preloader {
	p := &Preloader{
		loader:      loader,
		locales:     slices.Clone(locales),
		critical:    slices.Clone(critical),
		concurrency: DefaultPreloadConcurrency,
		logger:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// PreloadCritical loads every critical module for locale.
func (p *Preloader) PreloadCritical(ctx context.Context, locale string) PreloadResult {
	pairs := make([][2]string, 0, len(p.critical))
	for _, module := range p.critical {
		pairs = append(pairs, [2]string{locale, module})
	}
	return p.run(ctx, pairs)
}

// WarmupModule loads module for each of locales.
func (p *Preloader) WarmupModule(ctx context.Context, module string, locales []string) PreloadResult {
	pairs := make([][2]string, 0, len(locales))
	for _, locale := range locales {
		pairs = append(pairs, [2]string{locale, module})
	}
	return p.run(ctx, pairs)
}

// PreloadAll loads every critical module for every supported locale.
func (p *Preloader) PreloadAll(ctx context.Context) PreloadResult {
	pairs := make([][2]string, 0, len(p.locales)*len(p.critical))
	for _, locale := range p.locales {
		for _, module := range p.critical {
			pairs = append(pairs, [2]string{locale, module})
		}
	}
	return p.run(ctx, pairs)
}

// run loads all pairs concurrently and waits for every load to settle.
func (p *Preloader) run(ctx context.Context, pairs [][2]string) PreloadResult {
	var (
		g      errgroup.Group
		loaded atomic.Int64
		failed atomic.Int64
	)
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}

	for _, pair := range pairs {
		g.Go(func() error {
			if _, err := p.loader.load(ctx, pair[0], pair[1]); err != nil {
				failed.Add(1)
			} else {
				loaded.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	res := PreloadResult{
		Requested: len(pairs),
		Loaded:    int(loaded.Load()),
		Failed:    int(failed.Load()),
	}

	p.logger.Debug().
		Int("requested", res.Requested).
		Int("loaded", res.Loaded).
		Int("failed", res.Failed).
		Msg("preload finished")

	return res
}
