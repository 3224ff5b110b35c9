// Package directive parses and validates the attribute directives that steer
// builder and debug derivation.
package directive

import (
	"strings"

	"github.com/seitarof/derive-gen/internal/diag"
	"github.com/seitarof/derive-gen/internal/parser"
)

const (
	builderKey = "builder"
	debugKey   = "debug"
)

// Messages reported for malformed directives.
const (
	MsgExpectedEach       = `expected builder(each = "...")`
	MsgExpectedDebugFmt   = `expected debug = "..."`
	MsgExpectedDebugBound = `expected debug(bound = "...")`
)

// Directive is one recognized attribute instruction. The set of variants is
// closed: AppendName, FormatOverride and BoundOverride.
type Directive interface {
	Pos() diag.Pos
	directive()
}

// AppendName asks the builder for an element-appending setter named Name.
type AppendName struct {
	Name string
	At   diag.Pos
}

// FormatOverride replaces the default debug rendering of a field.
type FormatOverride struct {
	Format string
	At     diag.Pos
}

// BoundOverride replaces automatic generic bound inference.
type BoundOverride struct {
	Clause string
	At     diag.Pos
}

func (d *AppendName) Pos() diag.Pos     { return d.At }
func (d *FormatOverride) Pos() diag.Pos { return d.At }
func (d *BoundOverride) Pos() diag.Pos  { return d.At }

func (*AppendName) directive()     {}
func (*FormatOverride) directive() {}
func (*BoundOverride) directive()  {}

// Builder extracts the `builder(each = "...")` directive of one field. Only
// attributes keyed `builder` are examined.
func Builder(f parser.FieldInfo) (*AppendName, error) {
	var found *AppendName
	for _, attr := range f.Attrs {
		if attrKey(attr.Text) != builderKey {
			continue
		}
		if found != nil {
			return nil, malformed(attr.Pos, "duplicate builder attribute on field %s", f.Name)
		}
		name, err := parseEach(attr)
		if err != nil {
			return nil, err
		}
		found = &AppendName{Name: name, At: attr.Pos}
	}
	return found, nil
}

func parseEach(attr parser.Source) (string, error) {
	m, err := ParseMeta(attr.Text)
	if err != nil || m.Kind != MetaList || len(m.Nested) != 1 {
		return "", malformed(attr.Pos, MsgExpectedEach)
	}
	nv := m.Nested[0].Meta
	if nv == nil || nv.Kind != MetaNameValue || nv.Path != "each" || nv.Value.Kind != LitStr {
		return "", malformed(attr.Pos, MsgExpectedEach)
	}
	name := strings.TrimSpace(nv.Value.Value)
	if !parser.IsIdent(name) {
		return "", malformed(attr.Pos, "builder(each = ...) expects an identifier, found %q", nv.Value.Value)
	}
	return name, nil
}

// DebugField extracts the `debug = "..."` format override of one field. The
// format string is taken verbatim.
func DebugField(f parser.FieldInfo) (*FormatOverride, error) {
	var found *FormatOverride
	for _, attr := range f.Attrs {
		if attrKey(attr.Text) != debugKey {
			continue
		}
		if found != nil {
			return nil, malformed(attr.Pos, "duplicate debug attribute on field %s", f.Name)
		}
		m, err := ParseMeta(attr.Text)
		if err != nil || m.Kind != MetaNameValue || m.Value.Kind != LitStr {
			return nil, malformed(attr.Pos, MsgExpectedDebugFmt)
		}
		found = &FormatOverride{Format: m.Value.Value, At: attr.Pos}
	}
	return found, nil
}

// DebugBound collects every `debug(bound = "...")` fragment on the
// declaration and joins them into one clause. A nil result means no override.
func DebugBound(info *parser.StructInfo) (*BoundOverride, error) {
	var (
		found     *BoundOverride
		fragments []string
	)
	for _, attr := range info.Attrs {
		if attrKey(attr.Text) != debugKey {
			continue
		}
		m, err := ParseMeta(attr.Text)
		if err != nil || m.Kind != MetaList || len(m.Nested) == 0 {
			return nil, malformed(attr.Pos, MsgExpectedDebugBound)
		}
		for _, item := range m.Nested {
			nv := item.Meta
			if nv == nil || nv.Kind != MetaNameValue || nv.Path != "bound" || nv.Value.Kind != LitStr {
				return nil, malformed(attr.Pos, MsgExpectedDebugBound)
			}
			if clause := strings.Trim(strings.TrimSpace(nv.Value.Value), ","); clause != "" {
				fragments = append(fragments, strings.TrimSpace(clause))
			}
		}
		if found == nil {
			found = &BoundOverride{At: attr.Pos}
		}
	}
	if found != nil {
		found.Clause = strings.Join(fragments, ", ")
	}
	return found, nil
}

// Set is the directive set of one declaration for both derivations.
type Set struct {
	Append map[string]*AppendName
	Format map[string]*FormatOverride
	Bound  *BoundOverride
}

// ForBuilder parses the builder directives of every field, reporting all
// malformed ones together in declaration order.
func ForBuilder(info *parser.StructInfo) (Set, error) {
	set := Set{Append: map[string]*AppendName{}}
	var errs diag.List
	for _, f := range info.Fields {
		d, err := Builder(f)
		if err != nil {
			errs.Merge(err, f.Pos)
			continue
		}
		if d != nil {
			set.Append[f.Name] = d
		}
	}
	return set, errs.Err()
}

// ForDebug parses field format overrides and the declaration bound override.
func ForDebug(info *parser.StructInfo) (Set, error) {
	set := Set{Format: map[string]*FormatOverride{}}
	var errs diag.List
	bound, err := DebugBound(info)
	if err != nil {
		errs.Merge(err, info.Pos)
	}
	set.Bound = bound
	for _, f := range info.Fields {
		d, err := DebugField(f)
		if err != nil {
			errs.Merge(err, f.Pos)
			continue
		}
		if d != nil {
			set.Format[f.Name] = d
		}
	}
	return set, errs.Err()
}

func malformed(pos diag.Pos, format string, args ...any) *diag.Diagnostic {
	return diag.New(diag.KindMalformedDirective, pos, format, args...)
}
