package gotlres

import (
	"fmt"
	"strings"
)

// Resolver turns a key of a loaded bundle into a display string. It never
// fails: unresolvable keys produce a fallback string and an event.
type Resolver struct {
	locales *LocaleSet
	mode    Mode
	events  EventHandler
}

// ResolverOption is a functional option for configuring the Resolver.
type ResolverOption func(*Resolver)

// WithResolverEvents sets the handler receiving classified failures.
func WithResolverEvents(h EventHandler) ResolverOption {
	return func(r *Resolver) {
		r.events = h
	}
}

// NewResolver creates a resolver validating locales against locales.
func NewResolver(locales *LocaleSet, mode Mode, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		locales: locales,
		mode:    mode,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the interpolated string stored under key in bundle.
//
// An unsupported locale is replaced by the default locale
// (LOCALE_NOT_SUPPORTED). A key naming a subtree or non-string value yields
// TRANSLATION_INVALID, an absent key MESSAGE_NOT_FOUND; both return the
// fallback string for the configured mode.
func (r *Resolver) Resolve(bundle Bundle, key, locale string, params Params) string {
	locale = r.checkLocale(locale)

	v, ok := Lookup(bundle, key)
	if !ok {
		r.events.emit(&TranslationError{
			Kind:    KindMessageNotFound,
			Locale:  locale,
			Key:     key,
			Message: "translation key not found",
		})
		return r.Fallback(locale, key)
	}

	s, ok := v.(string)
	if !ok {
		r.events.emit(&TranslationError{
			Kind:    KindTranslationInvalid,
			Locale:  locale,
			Key:     key,
			Message: fmt.Sprintf("expected string, found %T", v),
		})
		return r.Fallback(locale, key)
	}

	return Interpolate(s, params)
}

// Fallback is the string shown in place of an unresolvable key.
func (r *Resolver) Fallback(locale, key string) string {
	if r.mode == ModeDevelopment {
		return fmt.Sprintf("[MISSING: %s.%s]", locale, key)
	}
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[i+1:]
	}
	return key
}

// Mode returns the configured mode.
func (r *Resolver) Mode() Mode {
	return r.mode
}

// checkLocale returns the supported spelling of locale, or the default
// locale after emitting LOCALE_NOT_SUPPORTED.
func (r *Resolver) checkLocale(locale string) string {
	if r.locales == nil {
		return locale
	}
	if id, ok := r.locales.Lookup(locale); ok {
		return id
	}

	r.events.emit(&TranslationError{
		Kind:    KindLocaleNotSupported,
		Locale:  locale,
		Message: "using default locale " + r.locales.Default(),
	})
	return r.locales.Default()
}
