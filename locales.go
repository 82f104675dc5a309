package gotlres

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LocaleSet is the fixed set of supported locales plus the default.
// Lookups match on canonical BCP 47 form, so "pt_BR", "pt-br" and "pt-BR"
// all resolve to whichever spelling was configured.
type LocaleSet struct {
	defaultLocale string
	supported     []string
	byTag         map[string]string // canonical tag -> configured id
}

// NewLocaleSet builds a LocaleSet. The default locale is added to the
// supported list when missing.
func NewLocaleSet(supported []string, defaultLocale string) (*LocaleSet, error) {
	if defaultLocale == "" {
		return nil, &ConfigError{Field: "defaultLocale", Message: "must not be empty"}
	}

	s := &LocaleSet{
		defaultLocale: defaultLocale,
		byTag:         make(map[string]string),
	}

	for _, id := range append([]string{defaultLocale}, supported...) {
		tag, err := parseTag(id)
		if err != nil {
			return nil, &ConfigError{Field: "supportedLocales", Message: fmt.Sprintf("invalid locale %q: %v", id, err)}
		}
		key := tag.String()
		if _, dup := s.byTag[key]; dup {
			continue
		}
		s.byTag[key] = id
		s.supported = append(s.supported, id)
	}

	return s, nil
}

// Default returns the default locale.
func (s *LocaleSet) Default() string {
	return s.defaultLocale
}

// Supported returns the configured locales, default first.
func (s *LocaleSet) Supported() []string {
	out := make([]string, len(s.supported))
	copy(out, s.supported)
	return out
}

// Lookup returns the configured spelling of locale and whether it is supported.
func (s *LocaleSet) Lookup(locale string) (string, bool) {
	if id, ok := s.byTag[locale]; ok {
		return id, true
	}
	tag, err := parseTag(locale)
	if err != nil {
		return "", false
	}
	id, ok := s.byTag[tag.String()]
	return id, ok
}

// IsSupported reports whether locale is in the set.
func (s *LocaleSet) IsSupported(locale string) bool {
	_, ok := s.Lookup(locale)
	return ok
}

func parseTag(locale string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(locale, "_", "-"))
}

// LanguageName returns the English display name for a locale code, falling
// back to the code itself.
func LanguageName(locale string) string {
	tag, err := parseTag(locale)
	if err != nil {
		return locale
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return locale
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(locale string) string {
	base := strings.ToLower(strings.Split(NormalizeLocale(locale), "-")[0])
	if RTLLanguages[base] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(locale string) bool {
	return GetDirection(locale) == "rtl"
}

// NormalizeLocale converts a locale code to BCP 47 separators (e.g., "es_ES" → "es-ES").
func NormalizeLocale(locale string) string {
	return strings.ReplaceAll(locale, "_", "-")
}
