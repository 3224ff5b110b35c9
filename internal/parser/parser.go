package parser

import (
	"strings"

	"github.com/seitarof/derive-gen/internal/diag"
)

// Parser extracts the structural model of one declaration.
type Parser interface {
	Parse(decl Declaration) (*StructInfo, error)
}

type parserImpl struct{}

// New returns default parser.
func New() Parser {
	return &parserImpl{}
}

// Parse accepts only structs with a braced list of named fields. Any other
// shape fails with a diag.KindUnsupportedDeclaration diagnostic located at the
// declaration.
func (p *parserImpl) Parse(decl Declaration) (*StructInfo, error) {
	if err := checkShape(decl); err != nil {
		return nil, err
	}

	var errs diag.List
	info := &StructInfo{
		Name:  decl.Name,
		Vis:   strings.TrimSpace(decl.Vis),
		Attrs: decl.Attrs,
		Pos:   decl.Pos,
	}

	seenParams := map[string]bool{}
	for _, src := range decl.Generics {
		g, err := ParseGenericParam(src.Text)
		if err != nil {
			errs.Add(diag.New(diag.KindInvalidGeneric, src.Pos, "%v", err))
			continue
		}
		if seenParams[g.Name] {
			errs.Add(diag.New(diag.KindInvalidGeneric, src.Pos, "duplicate generic parameter %s", g.Name))
			continue
		}
		seenParams[g.Name] = true
		info.Generics = append(info.Generics, g)
	}

	for _, src := range decl.Where {
		pred := strings.TrimSpace(src.Text)
		pred = strings.TrimSuffix(pred, ",")
		if pred == "" {
			errs.Add(diag.New(diag.KindInvalidGeneric, src.Pos, "empty where predicate"))
			continue
		}
		info.Where = append(info.Where, pred)
	}

	seenFields := map[string]bool{}
	info.Fields = make([]FieldInfo, 0, len(decl.Fields))
	for _, f := range decl.Fields {
		if !IsIdent(f.Name) {
			errs.Add(diag.New(diag.KindUnsupportedDeclaration, f.Pos, "field name %q is not an identifier", f.Name))
			continue
		}
		if seenFields[f.Name] {
			errs.Add(diag.New(diag.KindUnsupportedDeclaration, f.Pos, "duplicate field %q", f.Name))
			continue
		}
		seenFields[f.Name] = true

		ty, err := ParseType(f.Type.Text)
		if err != nil {
			errs.Add(diag.New(diag.KindInvalidType, typePos(f), "field %s: %v", f.Name, err))
			continue
		}
		info.Fields = append(info.Fields, FieldInfo{
			Name:  f.Name,
			Vis:   strings.TrimSpace(f.Vis),
			Type:  ty,
			Attrs: f.Attrs,
			Pos:   f.Pos,
		})
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return info, nil
}

func checkShape(decl Declaration) error {
	if !IsIdent(decl.Name) {
		return diag.New(diag.KindUnsupportedDeclaration, decl.Pos, "declaration name %q is not an identifier", decl.Name)
	}
	switch decl.Kind {
	case DeclEnum, DeclUnion:
		return diag.New(diag.KindUnsupportedDeclaration, decl.Pos, "need a struct, but found a %s", decl.Kind)
	case DeclTuple, DeclUnit:
		return diag.New(diag.KindUnsupportedDeclaration, decl.Pos, "need a struct with named fields, but found a %s", decl.Kind)
	}
	for _, f := range decl.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return diag.New(diag.KindUnsupportedDeclaration, decl.Pos, "need a struct with named fields, but found a %s", DeclTuple)
		}
	}
	return nil
}

func typePos(f RawField) diag.Pos {
	if f.Type.Pos.Line != 0 {
		return f.Type.Pos
	}
	return f.Pos
}
