package gotlres

import "strings"

// CacheKey generates the composite cache key for a (locale, module) pair.
func CacheKey(locale, module string) string {
	return locale + ":" + module
}

// SplitCacheKey reverses CacheKey. Locales never contain ':', so the first
// separator splits the key.
func SplitCacheKey(key string) (locale, module string, ok bool) {
	return strings.Cut(key, ":")
}
