package resolver

import (
	"github.com/seitarof/derive-gen/internal/diag"
	"github.com/seitarof/derive-gen/internal/parser"
	"github.com/seitarof/derive-gen/internal/shape"
)

// CompanionSuffix is appended to the subject name to name its builder.
const CompanionSuffix = "Builder"

// CompanionName returns the builder type name for subject.
func CompanionName(subject string) string {
	return parser.Unraw(subject) + CompanionSuffix
}

// FieldStrategy identifies how one field is stored and set in the builder.
type FieldStrategy int

const (
	// StrategyRequired stores a Plain field as an Option and checks presence in build.
	StrategyRequired FieldStrategy = iota
	// StrategyOptional keeps an Option field's inner type under an Option.
	StrategyOptional
	// StrategyRepeated stores a Vec field directly, initially empty.
	StrategyRepeated
)

func (s FieldStrategy) String() string {
	switch s {
	case StrategyOptional:
		return "optional"
	case StrategyRepeated:
		return "repeated"
	default:
		return "required"
	}
}

// FieldPlan describes the builder code for one field.
type FieldPlan struct {
	Field    parser.FieldInfo
	Class    shape.Class
	Strategy FieldStrategy
	// Storage is the companion field type.
	Storage string
	// Initial is the companion field's value in builder().
	Initial string
	// Setter is the whole-value setter name; empty when suppressed.
	Setter     string
	SetterType string
	// SetterValue is the expression stored by the setter.
	SetterValue string
	// Appender is the element-appending setter name, if any.
	Appender  string
	AppendPos diag.Pos
	ElemType  string
	// BuildValue is the expression moved into the subject by build().
	BuildValue string
}

// Required reports whether build() must check presence of the field.
func (p FieldPlan) Required() bool {
	return p.Strategy == StrategyRequired
}

// Methods lists the companion methods this field contributes.
func (p FieldPlan) Methods() []string {
	var out []string
	if p.Setter != "" {
		out = append(out, p.Setter)
	}
	if p.Appender != "" {
		out = append(out, p.Appender)
	}
	return out
}

// BuilderPlan is everything needed to emit the builder derivation.
type BuilderPlan struct {
	Subject   string
	Companion string
	Vis       string
	// Params are the declared generic parameters with their bounds.
	Params []string
	// Args are the generic arguments applied to the subject and companion.
	Args   []string
	Where  []string
	Fields []FieldPlan
}

// DebugField describes the debug rendering of one field.
type DebugField struct {
	Name string
	// Label is the field name shown in output (raw identifiers unprefixed).
	Label string
	// Format is the override format string, used verbatim when HasFormat is
	// set, even if empty.
	Format    string
	HasFormat bool
}

// DebugPlan is everything needed to emit the debug derivation.
type DebugPlan struct {
	Subject string
	Params  []string
	Args    []string
	Where   []string
	Fields  []DebugField
}

func genericLists(gs []parser.GenericParam) (params, args []string) {
	for _, g := range gs {
		params = append(params, g.Decl())
		args = append(args, g.Arg())
	}
	return params, args
}
