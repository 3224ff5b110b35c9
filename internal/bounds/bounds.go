// Package bounds infers which generic parameters of a declaration need the
// debug capability bound in a generated implementation.
package bounds

import (
	"github.com/seitarof/derive-gen/internal/parser"
	"github.com/seitarof/derive-gen/internal/shape"
)

// DebugTrait is the capability bound attached by inference.
const DebugTrait = "std::fmt::Debug"

// Result is the outcome of inference for one declaration.
type Result struct {
	// Generics is the parameter list with inferred bounds attached.
	Generics []parser.GenericParam
	// Where holds the generated where-clause predicates, declared ones first.
	Where []string
}

// Infer computes the bounded parameter list and where predicates. A non-nil
// override replaces inference entirely; its clause becomes the only inferred
// predicate.
func Infer(info *parser.StructInfo, override *string) Result {
	res := Result{
		Generics: make([]parser.GenericParam, len(info.Generics)),
		Where:    append([]string(nil), info.Where...),
	}
	copy(res.Generics, info.Generics)

	if override != nil {
		if *override != "" {
			res.Where = append(res.Where, *override)
		}
		return res
	}

	fields := info.FieldTypes()
	used := UsedParams(info.TypeParams(), fields)
	for i, g := range res.Generics {
		if g.Kind == parser.GenericType && used[g.Name] {
			res.Generics[i] = g.WithBound(DebugTrait)
		}
	}
	for _, proj := range Projections(info.TypeParams(), fields) {
		res.Where = append(res.Where, proj.String()+": "+DebugTrait)
	}
	return res
}

// UsedParams reports which of params are read as data by some field: the
// parameter appears as a bare path, either as the field type itself or inside
// generic arguments of non-marker types. Opaque types (references, tuples,
// arrays) are searched through their components. Arguments of the marker
// wrapper are not inspected.
func UsedParams(params []string, fields []parser.TypeExpr) map[string]bool {
	want := make(map[string]bool, len(params))
	for _, p := range params {
		want[p] = true
	}
	used := map[string]bool{}
	for _, f := range fields {
		markUsed(f, want, used)
	}
	return used
}

func markUsed(t parser.TypeExpr, want, used map[string]bool) {
	switch n := t.(type) {
	case *parser.Opaque:
		for _, c := range n.Components() {
			markUsed(c, want, used)
		}
	case *parser.Named:
		if len(n.Path) == 1 && want[n.Path[0]] && n.IsIdent(n.Path[0]) {
			used[n.Path[0]] = true
			return
		}
		if shape.IsMarker(n) {
			return
		}
		for _, arg := range n.Args {
			markUsed(arg, want, used)
		}
	}
}

// Projections collects, in first-occurrence order, every distinct qualified
// path whose leading segment is one of params (e.g. T::Value). All generic
// arguments and opaque components are searched recursively.
func Projections(params []string, fields []parser.TypeExpr) []*parser.Named {
	want := make(map[string]bool, len(params))
	for _, p := range params {
		want[p] = true
	}
	seen := map[string]bool{}
	var out []*parser.Named
	var walk func(parser.TypeExpr)
	walk = func(t parser.TypeExpr) {
		if o, ok := t.(*parser.Opaque); ok {
			for _, c := range o.Components() {
				walk(c)
			}
			return
		}
		n, ok := t.(*parser.Named)
		if !ok {
			return
		}
		if !n.Global && len(n.Path) >= 2 && want[n.Path[0]] {
			key := n.String()
			if !seen[key] {
				seen[key] = true
				out = append(out, n)
			}
		}
		for _, arg := range n.Args {
			walk(arg)
		}
	}
	for _, f := range fields {
		walk(f)
	}
	return out
}
