package gotlres

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// placeholderPattern matches {name} interpolation tokens.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Lookup returns the value stored under key. A flattened entry
// (bundle["footer.copyright"]) wins over the nested path
// (bundle["footer"]["copyright"]).
func Lookup(bundle Bundle, key string) (any, bool) {
	if v, ok := bundle[key]; ok {
		return v, true
	}

	var node any = map[string]any(bundle)
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(node)
		if !ok {
			return nil, false
		}
		if node, ok = m[part]; !ok {
			return nil, false
		}
	}
	return node, true
}

// Interpolate replaces each {name} token in s with params[name]. Tokens
// without a matching parameter are left as-is.
func Interpolate(s string, params Params) string {
	if len(params) == 0 || !strings.Contains(s, "{") {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(tok string) string {
		if v, ok := params[tok[1:len(tok)-1]]; ok {
			return fmt.Sprint(v)
		}
		return tok
	})
}

// Placeholders returns the sorted, de-duplicated placeholder names in s.
func Placeholders(s string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	slices.Sort(names)
	return names
}

// Flatten returns every leaf of bundle keyed by its dotted path.
func Flatten(bundle Bundle) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", bundle)
	return out
}

func flattenInto(out map[string]any, prefix string, m map[string]any) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if child, ok := asMap(v); ok {
			flattenInto(out, path, child)
			continue
		}
		out[path] = v
	}
}

// Unflatten builds a nested bundle from dotted keys. When a key is both a
// leaf and a prefix of another key, the leaf is kept flattened.
func Unflatten(flat map[string]string) Bundle {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := Bundle{}
	for _, k := range keys {
		parts := strings.Split(k, ".")
		node := map[string]any(out)
		placed := true
		for _, part := range parts[:len(parts)-1] {
			next, exists := node[part]
			if !exists {
				child := map[string]any{}
				node[part] = child
				node = child
				continue
			}
			child, ok := next.(map[string]any)
			if !ok {
				placed = false
				break
			}
			node = child
		}
		last := parts[len(parts)-1]
		if _, taken := node[last]; !placed || taken {
			out[k] = flat[k]
			continue
		}
		node[last] = flat[k]
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Bundle:
		return m, true
	}
	return nil, false
}
