package gotlres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalizer(t *testing.T, mode Mode, src BundleSource, opts ...Option) *Localizer {
	t.Helper()
	cfg := Config{
		SupportedLocales: []string{"en", "fr", "de"},
		DefaultLocale:    "en",
		Mode:             mode,
		CriticalModules:  []string{"common", "auth"},
	}
	l, err := New(cfg, src, opts...)
	require.NoError(t, err)
	return l
}

func testSource() *stubSource {
	return newStubSource().
		add("en", "common", Bundle{"greeting": "Hello {name}", "footer": map[string]any{"copyright": "© Acme"}}).
		add("en", "auth", Bundle{"login": "Log in"}).
		add("fr", "common", Bundle{"greeting": "Bonjour {name}"})
}

func TestLocalizer_T(t *testing.T) {
	rec := &recorder{}
	l := newTestLocalizer(t, ModeProduction, testSource(), WithCache(newMapCache()), WithEventHandler(rec.handle))
	ctx := context.Background()

	assert.Equal(t, "Bonjour Ada", l.T(ctx, "fr", "common", "greeting", Params{"name": "Ada"}))
	assert.Equal(t, "© Acme", l.T(ctx, "en", "common", "footer.copyright", nil))
	assert.Empty(t, rec.kinds())
}

func TestLocalizer_T_FallbackChain(t *testing.T) {
	rec := &recorder{}
	l := newTestLocalizer(t, ModeDevelopment, testSource(), WithCache(newMapCache()), WithEventHandler(rec.handle))
	ctx := context.Background()

	// fr/auth does not exist: the en bundle is used.
	assert.Equal(t, "Log in", l.T(ctx, "fr", "auth", "login", nil))
	assert.Equal(t, []ErrorKind{KindModuleLoadFailed, KindFallbackUsed}, rec.kinds())

	// Unsupported locale: default locale is used.
	rec.events = nil
	assert.Equal(t, "Hello Ada", l.T(ctx, "ja", "common", "greeting", Params{"name": "Ada"}))
	assert.Equal(t, []ErrorKind{KindLocaleNotSupported}, rec.kinds())

	// Missing everywhere: key-derived string, rendered for the locale that was used.
	rec.events = nil
	assert.Equal(t, "[MISSING: en.nope]", l.T(ctx, "de", "orders", "nope", nil))
	assert.Equal(t, []ErrorKind{
		KindModuleLoadFailed,
		KindFallbackUsed,
		KindModuleLoadFailed,
		KindMessageNotFound,
	}, rec.kinds())
}

func TestLocalizer_StatsAndClear(t *testing.T) {
	l := newTestLocalizer(t, ModeProduction, testSource(), WithCache(newMapCache()))
	ctx := context.Background()

	res := l.PreloadCritical(ctx, "en")
	assert.Equal(t, PreloadResult{Requested: 2, Loaded: 2}, res)

	l.Load(ctx, "fr", "common")
	assert.Equal(t, []string{"en:auth", "en:common", "fr:common"}, l.Stats().Keys)

	l.ClearLocale("fr")
	assert.Equal(t, []string{"en:auth", "en:common"}, l.Stats().Keys)
}

func TestLocalizer_WithoutCache(t *testing.T) {
	src := testSource()
	l := newTestLocalizer(t, ModeProduction, src, WithoutCache())

	l.T(context.Background(), "en", "auth", "login", nil)
	l.T(context.Background(), "en", "auth", "login", nil)

	assert.Equal(t, 2, src.callsFor("en", "auth"))
	assert.Equal(t, CacheStats{Keys: []string{}}, l.Stats())
	l.ClearLocale("en") // no-op
}

func TestLocalizer_DefaultCacheFromConfig(t *testing.T) {
	src := testSource()
	cfg := Config{
		SupportedLocales: []string{"en", "fr"},
		DefaultLocale:    "en",
		TTL:              time.Minute,
		MaxCacheSize:     2,
	}
	l, err := New(cfg, src)
	require.NoError(t, err)
	ctx := context.Background()

	l.T(ctx, "en", "auth", "login", nil)
	l.T(ctx, "en", "auth", "login", nil)
	assert.Equal(t, 1, src.callsFor("en", "auth"), "repeat loads are served from the default cache")

	l.Load(ctx, "en", "common")
	l.Load(ctx, "fr", "common")

	stats := l.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 2, stats.MaxSize)
	assert.Equal(t, time.Minute, stats.TTL)
	assert.Equal(t, []string{"en:common", "fr:common"}, stats.Keys, "least recently used entry is evicted")
}

func TestLocalizer_PreloadAllAndWarmup(t *testing.T) {
	c := newMapCache()
	l := newTestLocalizer(t, ModeProduction, testSource(), WithCache(c))

	res := l.PreloadAll(context.Background())
	assert.Equal(t, 6, res.Requested)
	assert.Equal(t, 3, res.Loaded)

	res = l.WarmupModule(context.Background(), "common", l.Locales().Supported())
	assert.Equal(t, PreloadResult{Requested: 3, Loaded: 2, Failed: 1}, res)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Mode: "staging", DefaultLocale: "en"}, testSource())
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNew_NormalizesConfig(t *testing.T) {
	l, err := New(Config{DefaultLocale: "en"}, testSource())
	require.NoError(t, err)

	assert.Equal(t, ModeProduction, l.Mode())
	assert.Equal(t, ProductionTTL, l.Config().TTL)
	assert.Equal(t, "en", l.Locales().Default())
	assert.Equal(t, "copyright", l.Resolve(Bundle{}, "footer.copyright", "en", nil))
	assert.Equal(t, Bundle{"login": "Log in"}, l.Load(context.Background(), "en", "auth"))
}
