package gotlres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, mode Mode) (*Resolver, *recorder) {
	t.Helper()
	locales, err := NewLocaleSet([]string{"en", "fr", "pt_BR"}, "en")
	require.NoError(t, err)
	rec := &recorder{}
	return NewResolver(locales, mode, WithResolverEvents(rec.handle)), rec
}

func TestResolver_Interpolation(t *testing.T) {
	r, rec := newTestResolver(t, ModeProduction)
	b := Bundle{"greeting": "Hello {name}"}

	assert.Equal(t, "Hello Ada", r.Resolve(b, "greeting", "en", Params{"name": "Ada"}))
	assert.Equal(t, "Hello {name}", r.Resolve(b, "greeting", "en", Params{}))
	assert.Equal(t, "Hello {name}", r.Resolve(b, "greeting", "en", nil))
	assert.Empty(t, rec.kinds())
}

func TestResolver_MissingKeyFallback(t *testing.T) {
	prod, prodRec := newTestResolver(t, ModeProduction)
	dev, devRec := newTestResolver(t, ModeDevelopment)

	assert.Equal(t, "copyright", prod.Resolve(Bundle{}, "footer.copyright", "en", nil))
	assert.Equal(t, "[MISSING: en.footer.copyright]", dev.Resolve(Bundle{}, "footer.copyright", "en", nil))
	assert.Equal(t, "title", prod.Resolve(Bundle{}, "title", "en", nil))

	assert.Equal(t, []ErrorKind{KindMessageNotFound, KindMessageNotFound}, prodRec.kinds())
	assert.Equal(t, []ErrorKind{KindMessageNotFound}, devRec.kinds())

	ev := devRec.events[0]
	assert.Equal(t, "en", ev.Locale)
	assert.Equal(t, "footer.copyright", ev.Key)
}

func TestResolver_NestedKey(t *testing.T) {
	r, rec := newTestResolver(t, ModeProduction)
	b := Bundle{"footer": map[string]any{"copyright": "© {year} Acme"}}

	assert.Equal(t, "© 2025 Acme", r.Resolve(b, "footer.copyright", "en", Params{"year": 2025}))
	assert.Empty(t, rec.kinds())
}

func TestResolver_SubtreeIsInvalid(t *testing.T) {
	r, rec := newTestResolver(t, ModeDevelopment)
	b := Bundle{"footer": map[string]any{"copyright": "©"}, "count": 3}

	assert.Equal(t, "[MISSING: fr.footer]", r.Resolve(b, "footer", "fr", nil))
	assert.Equal(t, "[MISSING: fr.count]", r.Resolve(b, "count", "fr", nil))
	assert.Equal(t, []ErrorKind{KindTranslationInvalid, KindTranslationInvalid}, rec.kinds())
}

func TestResolver_UnsupportedLocale(t *testing.T) {
	r, rec := newTestResolver(t, ModeDevelopment)

	got := r.Resolve(Bundle{}, "nav.home", "xx", nil)

	assert.Equal(t, "[MISSING: en.nav.home]", got)
	assert.Equal(t, []ErrorKind{KindLocaleNotSupported, KindMessageNotFound}, rec.kinds())
	assert.Equal(t, "xx", rec.events[0].Locale)
}

func TestResolver_LocaleSpellingNormalized(t *testing.T) {
	r, rec := newTestResolver(t, ModeDevelopment)

	got := r.Resolve(Bundle{}, "k", "pt-BR", nil)

	assert.Equal(t, "[MISSING: pt_BR.k]", got)
	assert.Equal(t, []ErrorKind{KindMessageNotFound}, rec.kinds())
}

func TestResolver_NoEventHandler(t *testing.T) {
	r := NewResolver(nil, ModeProduction)

	assert.NotPanics(t, func() {
		assert.Equal(t, "b", r.Resolve(nil, "a.b", "anything", nil))
	})
	assert.Equal(t, ModeProduction, r.Mode())
}
