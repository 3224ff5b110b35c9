// Package shape classifies field types by their outermost wrapper.
package shape

import "github.com/seitarof/derive-gen/internal/parser"

// Wrapper names recognized by classification.
const (
	OptionalName = "Option"
	RepeatedName = "Vec"
	MarkerName   = "PhantomData"
)

// Kind is the coarse shape of a field type.
type Kind int

const (
	KindPlain Kind = iota
	KindOptional
	KindRepeated
)

func (k Kind) String() string {
	switch k {
	case KindOptional:
		return "Optional"
	case KindRepeated:
		return "Repeated"
	default:
		return "Plain"
	}
}

// Class is the result of classifying one field type. For Optional and
// Repeated, Inner is the single generic argument; for Plain it is the whole
// type.
type Class struct {
	Kind  Kind
	Inner parser.TypeExpr
}

// Classify inspects only the outermost named segment of t. Nested wrappers are
// not interpreted.
func Classify(t parser.TypeExpr) Class {
	if inner, ok := unwrap(t, OptionalName); ok {
		return Class{Kind: KindOptional, Inner: inner}
	}
	if inner, ok := unwrap(t, RepeatedName); ok {
		return Class{Kind: KindRepeated, Inner: inner}
	}
	return Class{Kind: KindPlain, Inner: t}
}

// IsMarker reports whether t is the zero-sized marker wrapper with exactly one
// generic argument.
func IsMarker(t parser.TypeExpr) bool {
	_, ok := unwrap(t, MarkerName)
	return ok
}

func unwrap(t parser.TypeExpr, wrapper string) (parser.TypeExpr, bool) {
	switch v := t.(type) {
	case *parser.Named:
		if v.Name() != wrapper || len(v.Args) != 1 {
			return nil, false
		}
		return v.Args[0], true
	case *parser.Opaque:
		return nil, false
	default:
		return nil, false
	}
}
