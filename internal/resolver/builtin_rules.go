package resolver

import (
	"github.com/seitarof/derive-gen/internal/directive"
	"github.com/seitarof/derive-gen/internal/parser"
	"github.com/seitarof/derive-gen/internal/shape"
)

const (
	optionPath = "std::option::Option"
	vecPath    = "std::vec::Vec"
)

// DefaultRules returns built-in rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		&RepeatedRule{},
		&OptionalRule{},
		&RequiredRule{},
	}
}

// RepeatedRule: Vec<T> -> Vec<T> storage, whole-vector setter, optional appender.
type RepeatedRule struct{}

func (r *RepeatedRule) Try(f parser.FieldInfo, class shape.Class, each *directive.AppendName) (FieldPlan, bool) {
	if class.Kind != shape.KindRepeated {
		return FieldPlan{}, false
	}
	elem := class.Inner.String()
	plan := FieldPlan{
		Field:       f,
		Class:       class,
		Strategy:    StrategyRepeated,
		Storage:     vecPath + "<" + elem + ">",
		Initial:     vecPath + "::new()",
		Setter:      f.Name,
		SetterType:  vecPath + "<" + elem + ">",
		SetterValue: f.Name,
		ElemType:    elem,
		BuildValue:  "self." + f.Name + ".clone()",
	}
	if each != nil {
		plan.Appender = each.Name
		plan.AppendPos = each.At
		if each.Name == f.Name {
			plan.Setter = ""
		}
	}
	return plan, true
}

// OptionalRule: Option<T> -> Option<T> storage, setter takes T.
type OptionalRule struct{}

func (r *OptionalRule) Try(f parser.FieldInfo, class shape.Class, _ *directive.AppendName) (FieldPlan, bool) {
	if class.Kind != shape.KindOptional {
		return FieldPlan{}, false
	}
	inner := class.Inner.String()
	return FieldPlan{
		Field:       f,
		Class:       class,
		Strategy:    StrategyOptional,
		Storage:     optionPath + "<" + inner + ">",
		Initial:     optionPath + "::None",
		Setter:      f.Name,
		SetterType:  inner,
		SetterValue: optionPath + "::Some(" + f.Name + ")",
		BuildValue:  "self." + f.Name + ".clone()",
	}, true
}

// RequiredRule: any other type T -> Option<T> storage checked by build().
type RequiredRule struct{}

func (r *RequiredRule) Try(f parser.FieldInfo, class shape.Class, _ *directive.AppendName) (FieldPlan, bool) {
	if class.Kind != shape.KindPlain {
		return FieldPlan{}, false
	}
	ty := class.Inner.String()
	return FieldPlan{
		Field:       f,
		Class:       class,
		Strategy:    StrategyRequired,
		Storage:     optionPath + "<" + ty + ">",
		Initial:     optionPath + "::None",
		Setter:      f.Name,
		SetterType:  ty,
		SetterValue: optionPath + "::Some(" + f.Name + ")",
		BuildValue:  "self." + f.Name + ".as_ref().unwrap().clone()",
	}, true
}
