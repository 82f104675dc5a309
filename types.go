package gotlres

import "time"

// Bundle is the translation tree for one (locale, module) pair. Values are
// strings or nested mappings.
type Bundle map[string]any

// Params holds interpolation values for {name} placeholders.
type Params map[string]any

// Mode selects how unresolved keys are rendered.
type Mode string

const (
	// ModeDevelopment renders missing keys as "[MISSING: locale.key]".
	ModeDevelopment Mode = "development"
	// ModeProduction renders missing keys as the last segment of the key.
	ModeProduction Mode = "production"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeDevelopment || m == ModeProduction
}

// DefaultCriticalModules are the modules warmed by PreloadCritical when the
// configuration does not name any.
var DefaultCriticalModules = []string{"common", "auth", "errors"}

// CacheStats is a read-only snapshot of a ResourceCache.
type CacheStats struct {
	Size    int           `json:"size"`
	MaxSize int           `json:"max_size"`
	TTL     time.Duration `json:"ttl"`
	Keys    []string      `json:"keys"`
}

// PreloadResult summarizes a batch of loads.
type PreloadResult struct {
	Requested int `json:"requested"`
	Loaded    int `json:"loaded"`
	Failed    int `json:"failed"`
}

// RTLLanguages contains base language codes written right-to-left.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}
