package matcher

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/seitarof/derive-gen/internal/derive"
	"github.com/seitarof/derive-gen/internal/parser"
)

// Selection is a declaration chosen for generation with the derives to run.
type Selection struct {
	Decl parser.Declaration
	// Derives holds canonical derive names in request order, deduplicated.
	Derives []string
	// Unknown holds requested derive names that are not recognized.
	Unknown []string
}

// DeclMatcher selects declarations and their derives.
type DeclMatcher interface {
	Select(decls []parser.Declaration) []Selection
}

type declMatcherImpl struct {
	include  []string
	skip     []string
	override []string
}

// NewDeclMatcher returns a matcher that keeps declarations whose name matches
// one of include (all when empty) and none of skip. A non-empty override
// replaces each declaration's own derive list.
func NewDeclMatcher(include, skip, override []string) (DeclMatcher, error) {
	m := &declMatcherImpl{
		include:  toPatternList(include),
		skip:     toPatternList(skip),
		override: override,
	}
	for _, p := range append(append([]string(nil), m.include...), m.skip...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid type pattern %q", p)
		}
	}
	return m, nil
}

func (m *declMatcherImpl) Select(decls []parser.Declaration) []Selection {
	out := make([]Selection, 0, len(decls))
	for _, d := range decls {
		if !m.included(d.Name) {
			continue
		}
		requested := d.Derives
		if len(m.override) > 0 {
			requested = m.override
		}
		derives, unknown := canonicalDerives(requested)
		out = append(out, Selection{Decl: d, Derives: derives, Unknown: unknown})
	}
	return out
}

func (m *declMatcherImpl) included(name string) bool {
	if matchAny(m.skip, name) {
		return false
	}
	return len(m.include) == 0 || matchAny(m.include, name)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

func canonicalDerives(names []string) (derives, unknown []string) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		c, ok := derive.Canonical(n)
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		derives = append(derives, c)
	}
	return derives, unknown
}

func toPatternList(patterns []string) []string {
	list := make([]string, 0, len(patterns))
	for _, p := range patterns {
		for _, part := range strings.Split(p, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			list = append(list, part)
		}
	}
	return list
}
