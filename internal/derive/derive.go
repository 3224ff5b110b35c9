// Package derive runs the full derivation pipelines: extraction, shape and
// directive analysis, planning and rendering.
package derive

import (
	"fmt"
	"strings"

	"github.com/seitarof/derive-gen/internal/generator"
	"github.com/seitarof/derive-gen/internal/parser"
	"github.com/seitarof/derive-gen/internal/resolver"
)

// Canonical derive names.
const (
	NameBuilder = "Builder"
	NameDebug   = "CustomDebug"
)

var aliases = map[string]string{
	"builder":     NameBuilder,
	"customdebug": NameDebug,
	"debug":       NameDebug,
}

// Canonical maps a user supplied derive name to its canonical form. Matching
// ignores case; "debug" is accepted for CustomDebug.
func Canonical(name string) (string, bool) {
	c, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Engine wires the pipeline stages together.
type Engine struct {
	parser   parser.Parser
	resolver resolver.Resolver
	renderer generator.Renderer
}

// NewEngine creates an engine from explicit stages.
func NewEngine(p parser.Parser, r resolver.Resolver, g generator.Renderer) *Engine {
	return &Engine{parser: p, resolver: r, renderer: g}
}

// Default returns an engine with the built-in rules and templates.
func Default() *Engine {
	return NewEngine(parser.New(), resolver.New(resolver.DefaultRules()...), generator.NewRenderer())
}

var defaultEngine = Default()

// Builder generates the builder derivation for decl.
func Builder(decl parser.Declaration) ([]byte, error) {
	return defaultEngine.Builder(decl)
}

// Debug generates the debug derivation for decl.
func Debug(decl parser.Declaration) ([]byte, error) {
	return defaultEngine.Debug(decl)
}

func (e *Engine) Builder(decl parser.Declaration) ([]byte, error) {
	info, err := e.parser.Parse(decl)
	if err != nil {
		return nil, err
	}
	plan, err := e.resolver.ResolveBuilder(info)
	if err != nil {
		return nil, err
	}
	return e.renderer.RenderBuilder(plan)
}

func (e *Engine) Debug(decl parser.Declaration) ([]byte, error) {
	info, err := e.parser.Parse(decl)
	if err != nil {
		return nil, err
	}
	plan, err := e.resolver.ResolveDebug(info)
	if err != nil {
		return nil, err
	}
	return e.renderer.RenderDebug(plan)
}

// Derive runs the derivation with the given canonical name.
func (e *Engine) Derive(name string, decl parser.Declaration) ([]byte, error) {
	switch name {
	case NameBuilder:
		return e.Builder(decl)
	case NameDebug:
		return e.Debug(decl)
	default:
		return nil, fmt.Errorf("unknown derive %q", name)
	}
}
