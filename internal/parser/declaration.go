package parser

import (
	"fmt"
	"strings"

	"github.com/seitarof/derive-gen/internal/diag"
)

// DeclKind is the syntactic shape of a declaration as supplied by the host.
type DeclKind int

const (
	DeclStruct DeclKind = iota
	DeclTuple
	DeclUnit
	DeclEnum
	DeclUnion
)

func (k DeclKind) String() string {
	switch k {
	case DeclStruct:
		return "struct"
	case DeclTuple:
		return "tuple struct"
	case DeclUnit:
		return "unit struct"
	case DeclEnum:
		return "enum"
	case DeclUnion:
		return "union"
	default:
		return "unknown"
	}
}

// ParseDeclKind maps a manifest kind name to DeclKind. Empty means struct.
func ParseDeclKind(s string) (DeclKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "struct":
		return DeclStruct, nil
	case "tuple", "tuple-struct", "tuple_struct":
		return DeclTuple, nil
	case "unit", "unit-struct", "unit_struct":
		return DeclUnit, nil
	case "enum":
		return DeclEnum, nil
	case "union":
		return DeclUnion, nil
	default:
		return 0, fmt.Errorf("unknown declaration kind %q", s)
	}
}

// Source is a raw piece of declaration text together with where it came from.
type Source struct {
	Text string
	Pos  diag.Pos
}

// Declaration is the unparsed structural description of one declaration.
type Declaration struct {
	Name     string
	Kind     DeclKind
	Vis      string
	Generics []Source
	Where    []Source
	Attrs    []Source
	Fields   []RawField
	Derives  []string
	Pos      diag.Pos
}

// RawField is one entry of a declaration's field list. Name is empty for
// positional fields.
type RawField struct {
	Name  string
	Vis   string
	Type  Source
	Attrs []Source
	Pos   diag.Pos
}
