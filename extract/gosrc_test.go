package extract

import (
	"errors"
	"testing"
)

const goSample = `package web

func handler(l *gotlres.Localizer, r *gotlres.Resolver, b gotlres.Bundle) {
	title := l.T(ctx, locale, "common", "title", nil)
	greet := l.T(ctx, locale, "common", "greeting", gotlres.Params{"name": n})
	raw := l.T(ctx, locale, "auth", ` + "`login.button`" + `, nil)
	dyn := l.T(ctx, locale, module, "skipped", nil)
	key := l.T(ctx, locale, "auth", someKey, nil)
	msg := r.Resolve(b, "errors.not_found", locale, nil)
	short := T(ctx)
}
`

func TestGoExtractor_Extract(t *testing.T) {
	e := NewGoExtractor()

	keys, err := e.Extract("web/handler.go", []byte(goSample))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := []struct {
		id   string
		line int
	}{
		{"common:title", 4},
		{"common:greeting", 5},
		{"auth:login.button", 6},
		{"errors.not_found", 9},
	}
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %d: %+v", len(want), len(keys), keys)
	}
	for i, w := range want {
		if keys[i].ID() != w.id {
			t.Errorf("key %d = %q, want %q", i, keys[i].ID(), w.id)
		}
		if keys[i].Line != w.line {
			t.Errorf("key %d line = %d, want %d", i, keys[i].Line, w.line)
		}
	}
}

func TestGoExtractor_CustomCalls(t *testing.T) {
	e := NewGoExtractor(WithCalls(map[string]CallShape{"Msg": {ModuleArg: 0, KeyArg: 1}}))

	keys, err := e.Extract("x.go", []byte(`package x
var _ = i18n.Msg("shop", "cart.total")
var _ = l.T(ctx, locale, "common", "title", nil)
`))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(keys) != 1 || keys[0].ID() != "shop:cart.total" {
		t.Errorf("unexpected keys %+v", keys)
	}
}

func TestGoExtractor_ParseError(t *testing.T) {
	_, err := NewGoExtractor().Extract("bad.go", []byte("package"))

	var ee *ExtractError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExtractError, got %v", err)
	}
	if ee.File != "bad.go" {
		t.Errorf("File = %q", ee.File)
	}
}

func TestGoExtractor_Match(t *testing.T) {
	if !NewGoExtractor().Match("main.go") {
		t.Error("should match .go")
	}
	if NewGoExtractor().Match("main_test.go") {
		t.Error("should skip tests by default")
	}
	if !NewGoExtractor(WithTests(true)).Match("main_test.go") {
		t.Error("WithTests should include tests")
	}
}
