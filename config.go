package gotlres

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
)

const (
	// DefaultMaxCacheSize bounds the in-memory cache when no size is configured.
	DefaultMaxCacheSize = 100

	// DevelopmentTTL is the cache TTL selected for ModeDevelopment.
	DevelopmentTTL = time.Minute

	// ProductionTTL is the cache TTL selected for ModeProduction.
	ProductionTTL = time.Hour

	// DefaultPreloadConcurrency caps concurrent loads during a preload batch.
	DefaultPreloadConcurrency = 8
)

// Config holds the settings shared by the loader, resolver and preloader.
// Values are read from YAML first, then overridden by GOTLRES_* variables.
type Config struct {
	SupportedLocales   []string      `yaml:"supportedLocales" env:"GOTLRES_SUPPORTED_LOCALES"`
	DefaultLocale      string        `yaml:"defaultLocale" env:"GOTLRES_DEFAULT_LOCALE"`
	TTL                time.Duration `yaml:"ttl" env:"GOTLRES_TTL"` // 0 = mode default, negative = no expiry
	MaxCacheSize       int           `yaml:"maxCacheSize" env:"GOTLRES_MAX_CACHE_SIZE"`
	Mode               Mode          `yaml:"mode" env:"GOTLRES_MODE"`
	CriticalModules    []string      `yaml:"criticalModules" env:"GOTLRES_CRITICAL_MODULES"`
	FetchTimeout       time.Duration `yaml:"fetchTimeout" env:"GOTLRES_FETCH_TIMEOUT"`
	CoalesceLoads      bool          `yaml:"coalesceLoads" env:"GOTLRES_COALESCE_LOADS"`
	PreloadConcurrency int           `yaml:"preloadConcurrency" env:"GOTLRES_PRELOAD_CONCURRENCY"`
}

// DefaultConfig returns a production configuration for English only.
func DefaultConfig() Config {
	return Config{
		SupportedLocales:   []string{"en"},
		DefaultLocale:      "en",
		MaxCacheSize:       DefaultMaxCacheSize,
		Mode:               ModeProduction,
		CriticalModules:    slices.Clone(DefaultCriticalModules),
		CoalesceLoads:      true,
		PreloadConcurrency: DefaultPreloadConcurrency,
	}
}

// LoadConfig builds a Config from DefaultConfig, the YAML file at path (if
// path is not empty) and the environment, then validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decoding config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLForMode returns the TTL used when none is configured.
func TTLForMode(mode Mode) time.Duration {
	if mode == ModeDevelopment {
		return DevelopmentTTL
	}
	return ProductionTTL
}

// Normalize fills derived defaults and validates c. The TTL is chosen here,
// once, and never changed afterwards. A negative TTL is kept and disables
// expiry.
func (c *Config) Normalize() error {
	if c.Mode == "" {
		c.Mode = ModeProduction
	}
	if c.TTL == 0 {
		c.TTL = TTLForMode(c.Mode)
	}
	if c.MaxCacheSize == 0 {
		c.MaxCacheSize = DefaultMaxCacheSize
	}
	if c.PreloadConcurrency == 0 {
		c.PreloadConcurrency = DefaultPreloadConcurrency
	}
	if c.CriticalModules == nil {
		c.CriticalModules = slices.Clone(DefaultCriticalModules)
	}
	if c.DefaultLocale != "" && !slices.Contains(c.SupportedLocales, c.DefaultLocale) {
		c.SupportedLocales = append([]string{c.DefaultLocale}, c.SupportedLocales...)
	}
	return c.Validate()
}

// Validate checks c without modifying it.
func (c Config) Validate() error {
	if !c.Mode.Valid() {
		return &ConfigError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", c.Mode)}
	}
	if c.DefaultLocale == "" {
		return &ConfigError{Field: "defaultLocale", Message: "must not be empty"}
	}
	if !slices.Contains(c.SupportedLocales, c.DefaultLocale) {
		return &ConfigError{Field: "supportedLocales", Message: "must contain the default locale"}
	}
	if c.MaxCacheSize < 0 {
		return &ConfigError{Field: "maxCacheSize", Message: "must not be negative"}
	}
	if c.FetchTimeout < 0 {
		return &ConfigError{Field: "fetchTimeout", Message: "must not be negative"}
	}
	if c.PreloadConcurrency < 0 {
		return &ConfigError{Field: "preloadConcurrency", Message: "must not be negative"}
	}
	return nil
}
