package extract

import (
	"bytes"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultAttr is the attribute that carries key references in templates.
const DefaultAttr = "data-i18n"

// ignoreAttr excludes an element and its descendants from extraction.
const ignoreAttr = "data-i18n-ignore"

// HTMLExtractor finds keys in attributes like data-i18n="auth:login".
// Several references may be separated by ";".
type HTMLExtractor struct {
	attr          string
	defaultModule string
	extensions    map[string]bool
}

// HTMLOption configures the HTML extractor.
type HTMLOption func(*HTMLExtractor)

// WithAttr changes the attribute holding key references.
func WithAttr(attr string) HTMLOption {
	return func(e *HTMLExtractor) {
		e.attr = attr
	}
}

// WithDefaultModule sets the module used for references without one.
func WithDefaultModule(module string) HTMLOption {
	return func(e *HTMLExtractor) {
		e.defaultModule = module
	}
}

// WithExtensions replaces the handled file extensions.
func WithExtensions(exts ...string) HTMLOption {
	return func(e *HTMLExtractor) {
		e.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			e.extensions[strings.ToLower(ext)] = true
		}
	}
}

// NewHTMLExtractor creates an HTML extractor for .html, .htm, .tmpl and .gohtml files.
func NewHTMLExtractor(opts ...HTMLOption) *HTMLExtractor {
	e := &HTMLExtractor{
		attr:          DefaultAttr,
		defaultModule: "common",
		extensions: map[string]bool{
			".html": true, ".htm": true, ".tmpl": true, ".gohtml": true,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Match reports whether name has a template extension.
func (e *HTMLExtractor) Match(name string) bool {
	return e.extensions[strings.ToLower(path.Ext(name))]
}

// Extract parses content and returns every referenced key in document order.
func (e *HTMLExtractor) Extract(name string, content []byte) ([]Key, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ExtractError{File: name, Message: "failed to parse HTML", Cause: err}
	}

	var keys []Key
	doc.Find("[" + e.attr + "]").Each(func(_ int, s *goquery.Selection) {
		if ignored(s.Get(0)) {
			return
		}
		value, _ := s.Attr(e.attr)
		for _, ref := range strings.Split(value, ";") {
			if strings.TrimSpace(ref) == "" {
				continue
			}
			module, key := ParseRef(ref, e.defaultModule)
			if key == "" {
				continue
			}
			keys = append(keys, Key{Module: module, Key: key, File: name})
		}
	})
	return keys, nil
}

// ignored reports whether n or an ancestor carries the ignore attribute.
func ignored(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		for _, attr := range n.Attr {
			if attr.Key == ignoreAttr {
				return true
			}
		}
	}
	return false
}

// Verify HTMLExtractor implements Extractor
var _ Extractor = (*HTMLExtractor)(nil)
