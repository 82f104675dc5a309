// Package extract finds translation keys referenced from HTML templates and
// Go source, so bundles can be audited against what the code actually uses.
package extract

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// Key is a translation key referenced from a file.
type Key struct {
	Module string `json:"module,omitempty"` // empty when the call site does not name one
	Key    string `json:"key"`
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
}

// ID returns "module:key", or just the key when the module is unknown.
func (k Key) ID() string {
	if k.Module == "" {
		return k.Key
	}
	return k.Module + ":" + k.Key
}

// Extractor finds keys in one kind of file.
type Extractor interface {
	// Match reports whether the extractor handles the file name.
	Match(name string) bool

	// Extract returns the keys referenced in content.
	Extract(name string, content []byte) ([]Key, error)
}

// ExtractError indicates a file could not be parsed.
type ExtractError struct {
	File    string
	Message string
	Cause   error
}

func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract error (%s): %s: %v", e.File, e.Message, e.Cause)
	}
	return fmt.Sprintf("extract error (%s): %s", e.File, e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Cause
}

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"testdata":     true,
}

// Scan walks the directory root with the given extractors.
func Scan(root string, extractors ...Extractor) ([]Key, error) {
	return ScanFS(os.DirFS(root), extractors...)
}

// ScanFS walks fsys and runs the first matching extractor on every file.
// Hidden directories, vendor, node_modules and testdata are skipped. Keys are
// de-duplicated by ID, keeping the first occurrence, and sorted.
func ScanFS(fsys fs.FS, extractors ...Extractor) ([]Key, error) {
	seen := make(map[string]bool)
	var keys []Key

	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := path.Base(name)
		if d.IsDir() {
			if name != "." && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") || skipDirs[base]) {
				return fs.SkipDir
			}
			return nil
		}

		for _, ex := range extractors {
			if !ex.Match(name) {
				continue
			}
			content, err := fs.ReadFile(fsys, name)
			if err != nil {
				return err
			}
			found, err := ex.Extract(name, content)
			if err != nil {
				return err
			}
			for _, k := range found {
				if seen[k.ID()] {
					continue
				}
				seen[k.ID()] = true
				keys = append(keys, k)
			}
			break
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	Sort(keys)
	return keys, nil
}

// Sort orders keys by module then key.
func Sort(keys []Key) {
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Module != keys[j].Module {
			return keys[i].Module < keys[j].Module
		}
		return keys[i].Key < keys[j].Key
	})
}

// ByModule groups key names by module. Keys without a module are grouped
// under defaultModule.
func ByModule(keys []Key, defaultModule string) map[string][]string {
	out := make(map[string][]string)
	for _, k := range keys {
		module := k.Module
		if module == "" {
			module = defaultModule
		}
		out[module] = append(out[module], k.Key)
	}
	for m := range out {
		sort.Strings(out[m])
	}
	return out
}

// ParseRef splits "module:key" into its parts. A reference without a
// module uses defaultModule.
func ParseRef(ref, defaultModule string) (module, key string) {
	ref = strings.TrimSpace(ref)
	if m, k, ok := strings.Cut(ref, ":"); ok {
		return strings.TrimSpace(m), strings.TrimSpace(k)
	}
	return defaultModule, ref
}
