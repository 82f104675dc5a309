package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// SnapshotVersion is written to every export.
const SnapshotVersion = "1.0"

// ExportFormat represents the JSON structure for cache export/import.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry represents a single cached bundle.
type ExportEntry struct {
	Locale string `json:"locale"`
	Module string `json:"module"`
	Bundle Bundle `json:"bundle"`
}

// ExportableCache is a cache that can enumerate its live entries.
type ExportableCache interface {
	ResourceCache
	Entries() []Entry
}

// Exporter provides cache export functionality.
type Exporter struct {
	cache ExportableCache
	now   func() time.Time
}

// NewExporter creates a new cache exporter.
func NewExporter(cache ExportableCache) *Exporter {
	return &Exporter{cache: cache, now: time.Now}
}

// Export writes the cache contents to a writer in JSON format.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	live := e.cache.Entries()
	entries := make([]ExportEntry, 0, len(live))
	for _, entry := range live {
		entries = append(entries, ExportEntry{
			Locale: entry.Locale,
			Module: entry.Module,
			Bundle: entry.Bundle,
		})
	}

	export := ExportFormat{
		Version:    SnapshotVersion,
		ExportedAt: e.now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// ExportToFile exports the cache to a file.
// The path is provided by the caller and is intentionally user-controlled.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := e.Export(f, metadata); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Importer provides cache import functionality.
type Importer struct {
	cache ResourceCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache ResourceCache) *Importer {
	return &Importer{cache: cache}
}

// Import reads a snapshot and loads its bundles into the cache. Entries
// without a locale, module or bundle are counted as failed.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, entry := range export.Entries {
		if entry.Locale == "" || entry.Module == "" || entry.Bundle == nil {
			result.Failed++
			continue
		}
		if err := i.cache.Set(entry.Locale, entry.Module, entry.Bundle); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
// The path is provided by the caller and is intentionally user-controlled.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}
