package gotlres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	b := Bundle{
		"greeting": "Hello",
		"footer":   map[string]any{"copyright": "© 2025", "links": map[string]any{"about": "About"}},
		"nav.home": "Home",
		"nav":      map[string]any{"home": "shadowed"},
		"typed":    Bundle{"leaf": "typed leaf"},
		"count":    3,
	}

	tests := []struct {
		key   string
		want  any
		found bool
	}{
		{"greeting", "Hello", true},
		{"footer.links.about", "About", true},
		{"nav.home", "Home", true},
		{"typed.leaf", "typed leaf", true},
		{"count", 3, true},
		{"greeting.deeper", nil, false},
		{"footer.missing", nil, false},
		{"absent", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, found := Lookup(b, tt.key)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}

	sub, found := Lookup(b, "footer.links")
	assert.True(t, found)
	assert.IsType(t, map[string]any{}, sub)
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		params Params
		want   string
	}{
		{"single", "Hello {name}", Params{"name": "Ada"}, "Hello Ada"},
		{"missing param", "Hello {name}", Params{}, "Hello {name}"},
		{"nil params", "Hello {name}", nil, "Hello {name}"},
		{"repeated", "{n} of {n}", Params{"n": 2}, "2 of 2"},
		{"partial", "{a} and {b}", Params{"a": "x"}, "x and {b}"},
		{"not a token", "{ name } {}", Params{"name": "x"}, "{ name } {}"},
		{"no braces", "plain", Params{"name": "x"}, "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.in, tt.params))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"count", "name"}, Placeholders("{name} has {count} items, {name}"))
	assert.Empty(t, Placeholders("no tokens"))
}

func TestFlattenUnflatten(t *testing.T) {
	b := Bundle{
		"title": "Welcome",
		"auth": map[string]any{
			"login":  "Log in",
			"errors": map[string]any{"invalid": "Invalid password"},
		},
	}

	flat := Flatten(b)
	assert.Equal(t, map[string]any{
		"title":               "Welcome",
		"auth.login":          "Log in",
		"auth.errors.invalid": "Invalid password",
	}, flat)

	back := Unflatten(map[string]string{
		"title":               "Welcome",
		"auth.login":          "Log in",
		"auth.errors.invalid": "Invalid password",
	})
	assert.Equal(t, b, back)
}

func TestUnflatten_LeafAndPrefixConflict(t *testing.T) {
	got := Unflatten(map[string]string{
		"a":   "leaf",
		"a.b": "child",
	})

	v, ok := Lookup(got, "a")
	assert.True(t, ok)
	assert.Equal(t, "leaf", v)

	v, ok = Lookup(got, "a.b")
	assert.True(t, ok)
	assert.Equal(t, "child", v)
}
