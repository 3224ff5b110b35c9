package parser

import "github.com/seitarof/derive-gen/internal/diag"

// StructInfo is the extracted model of one named-field struct declaration.
type StructInfo struct {
	Name     string
	Vis      string
	Generics []GenericParam
	Where    []string
	Attrs    []Source
	Fields   []FieldInfo
	Pos      diag.Pos
}

// FieldInfo stores one named field in declaration order.
type FieldInfo struct {
	Name  string
	Vis   string
	Type  TypeExpr
	Attrs []Source
	Pos   diag.Pos
}

// TypeParams returns the names of the declared type parameters, skipping
// lifetimes and const parameters.
func (s *StructInfo) TypeParams() []string {
	out := make([]string, 0, len(s.Generics))
	for _, g := range s.Generics {
		if g.Kind == GenericType {
			out = append(out, g.Name)
		}
	}
	return out
}

// FieldTypes returns every field type in declaration order.
func (s *StructInfo) FieldTypes() []TypeExpr {
	out := make([]TypeExpr, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Type)
	}
	return out
}
