package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/ZaguanLabs/gotlres"
)

// Extensions lists the bundle file formats in lookup order.
var Extensions = []string{".json", ".yaml", ".yml", ".toml"}

// FSSource reads bundles laid out as <locale>/<module>.<ext>.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource creates a source over fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// NewDirSource creates a source over a directory on disk.
func NewDirSource(dir string) *FSSource {
	return NewFSSource(os.DirFS(dir))
}

// FetchBundle reads and decodes the first file found for locale and module.
// A missing module is a non-retryable SourceError wrapping fs.ErrNotExist.
func (s *FSSource) FetchBundle(ctx context.Context, locale, module string) (Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validName(locale) || !validName(module) {
		return nil, &gotlres.SourceError{
			Message: fmt.Sprintf("invalid bundle name %q/%q", locale, module),
			Cause:   fs.ErrInvalid,
		}
	}

	for _, ext := range Extensions {
		name := path.Join(locale, module+ext)
		data, err := fs.ReadFile(s.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &gotlres.SourceError{Message: "reading " + name, Cause: err, Retryable: true}
		}

		bundle, err := Decode(ext, data)
		if err != nil {
			return nil, &gotlres.SourceError{Message: "decoding " + name, Cause: err}
		}
		return bundle, nil
	}

	return nil, &gotlres.SourceError{
		Message: fmt.Sprintf("no bundle for %s/%s", locale, module),
		Cause:   fs.ErrNotExist,
	}
}

// Locales lists the locale directories, sorted.
func (s *FSSource) Locales() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, err
	}

	var locales []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			locales = append(locales, e.Name())
		}
	}
	return locales, nil
}

// Modules lists the modules available for locale, sorted.
func (s *FSSource) Modules(locale string) ([]string, error) {
	if !validName(locale) {
		return nil, fs.ErrInvalid
	}
	entries, err := fs.ReadDir(s.fsys, locale)
	if err != nil {
		return nil, err
	}

	var modules []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		if !slices.Contains(Extensions, ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if !slices.Contains(modules, name) {
			modules = append(modules, name)
		}
	}
	slices.Sort(modules)
	return modules, nil
}

// Decode parses data according to the file extension ext.
// An empty YAML or TOML document decodes to an empty bundle.
func Decode(ext string, data []byte) (Bundle, error) {
	var m map[string]any
	var err error
	switch ext {
	case ".json":
		err = json.Unmarshal(data, &m)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".toml":
		err = toml.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("unsupported bundle format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	if m == nil {
		if ext == ".json" {
			return nil, errors.New("bundle is null")
		}
		m = map[string]any{}
	}
	return Bundle(m), nil
}

func validName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

// Verify FSSource implements BundleSource
var _ BundleSource = (*FSSource)(nil)
