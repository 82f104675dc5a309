package extract

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
)

// CallShape locates the module and key arguments of a lookup call.
// ModuleArg is -1 when the call does not name a module.
type CallShape struct {
	ModuleArg int
	KeyArg    int
}

// DefaultCalls matches Localizer.T(ctx, locale, module, key, params) and
// Resolver.Resolve(bundle, key, locale, params).
var DefaultCalls = map[string]CallShape{
	"T":       {ModuleArg: 2, KeyArg: 3},
	"Resolve": {ModuleArg: -1, KeyArg: 1},
}

// GoExtractor finds keys passed as string literals to lookup calls in Go
// source. Calls with non-literal arguments are skipped.
type GoExtractor struct {
	calls        map[string]CallShape
	includeTests bool
}

// GoOption configures the Go extractor.
type GoOption func(*GoExtractor)

// WithCalls replaces the table of recognized calls.
func WithCalls(calls map[string]CallShape) GoOption {
	return func(e *GoExtractor) {
		e.calls = calls
	}
}

// WithTests makes the extractor read _test.go files too.
func WithTests(enabled bool) GoOption {
	return func(e *GoExtractor) {
		e.includeTests = enabled
	}
}

// NewGoExtractor creates a Go source extractor.
func NewGoExtractor(opts ...GoOption) *GoExtractor {
	e := &GoExtractor{calls: DefaultCalls}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Match reports whether name is a Go source file.
func (e *GoExtractor) Match(name string) bool {
	if !strings.HasSuffix(name, ".go") {
		return false
	}
	return e.includeTests || !strings.HasSuffix(name, "_test.go")
}

// Extract parses content and returns keys in source order.
func (e *GoExtractor) Extract(name string, content []byte) ([]Key, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, content, parser.SkipObjectResolution)
	if err != nil {
		return nil, &ExtractError{File: name, Message: "failed to parse Go source", Cause: err}
	}

	var keys []Key
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		shape, ok := e.calls[funcName(call.Fun)]
		if !ok || shape.KeyArg >= len(call.Args) || shape.ModuleArg >= len(call.Args) {
			return true
		}

		key, ok := stringLit(call.Args[shape.KeyArg])
		if !ok || key == "" {
			return true
		}
		var module string
		if shape.ModuleArg >= 0 {
			if module, ok = stringLit(call.Args[shape.ModuleArg]); !ok {
				return true
			}
		}

		keys = append(keys, Key{
			Module: module,
			Key:    key,
			File:   name,
			Line:   fset.Position(call.Pos()).Line,
		})
		return true
	})
	return keys, nil
}

// funcName returns the called identifier: "T" for both T(...) and x.T(...).
func funcName(fun ast.Expr) string {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name
	case *ast.SelectorExpr:
		return f.Sel.Name
	}
	return ""
}

func stringLit(expr ast.Expr) (string, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return s, true
}

// Verify GoExtractor implements Extractor
var _ Extractor = (*GoExtractor)(nil)
