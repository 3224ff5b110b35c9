package resolver

import (
	"github.com/seitarof/derive-gen/internal/bounds"
	"github.com/seitarof/derive-gen/internal/diag"
	"github.com/seitarof/derive-gen/internal/directive"
	"github.com/seitarof/derive-gen/internal/parser"
	"github.com/seitarof/derive-gen/internal/shape"
)

// reservedMethods are generated for every builder regardless of fields.
var reservedMethods = map[string]bool{"build": true, "builder": true}

// Resolver turns an extracted declaration into emission plans.
type Resolver interface {
	ResolveBuilder(info *parser.StructInfo) (*BuilderPlan, error)
	ResolveDebug(info *parser.StructInfo) (*DebugPlan, error)
}

// Rule tries to produce the builder plan for one classified field.
type Rule interface {
	Try(f parser.FieldInfo, class shape.Class, each *directive.AppendName) (FieldPlan, bool)
}

type resolverImpl struct {
	rules []Rule
}

// New builds resolver with rule chain.
func New(rules ...Rule) Resolver {
	return &resolverImpl{rules: rules}
}

func (r *resolverImpl) ResolveBuilder(info *parser.StructInfo) (*BuilderPlan, error) {
	set, err := directive.ForBuilder(info)
	if err != nil {
		return nil, err
	}

	var errs diag.List
	plans := make([]FieldPlan, 0, len(info.Fields))
	for _, f := range info.Fields {
		class := shape.Classify(f.Type)
		each := set.Append[f.Name]
		if each != nil && class.Kind != shape.KindRepeated {
			errs.Add(diag.New(diag.KindMalformedDirective, each.At,
				"builder(each = %q) requires a %s field, but %s is %s", each.Name, shape.RepeatedName, f.Name, f.Type))
			continue
		}
		plan, ok := r.resolveOne(f, class, each)
		if !ok {
			errs.Add(diag.New(diag.KindUnsupportedDeclaration, f.Pos, "no builder rule for field %s", f.Name))
			continue
		}
		plans = append(plans, plan)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if err := checkCollisions(plans); err != nil {
		return nil, err
	}

	params, args := genericLists(info.Generics)
	return &BuilderPlan{
		Subject:   info.Name,
		Companion: CompanionName(info.Name),
		Vis:       info.Vis,
		Params:    params,
		Args:      args,
		Where:     info.Where,
		Fields:    plans,
	}, nil
}

func (r *resolverImpl) resolveOne(f parser.FieldInfo, class shape.Class, each *directive.AppendName) (FieldPlan, bool) {
	for _, rule := range r.rules {
		if plan, ok := rule.Try(f, class, each); ok {
			return plan, true
		}
	}
	return FieldPlan{}, false
}

// methodOwner records which field contributed a companion method and whether
// it is that field's appender.
type methodOwner struct {
	field    string
	appender bool
}

// checkCollisions rejects companion method names that would clash: an
// appender named like another field's setter or appender, or a method
// shadowing a generated one.
func checkCollisions(plans []FieldPlan) error {
	var errs diag.List
	owners := map[string]methodOwner{}
	for _, p := range plans {
		if p.Setter != "" {
			owners[p.Setter] = methodOwner{field: p.Field.Name}
		}
	}
	for _, p := range plans {
		for _, m := range p.Methods() {
			if m == p.Setter {
				if m == "build" {
					errs.Add(diag.New(diag.KindNameCollision, p.Field.Pos,
						"field %s collides with the generated %s method", p.Field.Name, m))
				}
				continue
			}
			other, taken := owners[m]
			switch {
			case reservedMethods[m]:
				errs.Add(diag.New(diag.KindNameCollision, p.AppendPos,
					"builder(each = %q) collides with the generated %s method", m, m))
			case taken && other.appender:
				errs.Add(diag.New(diag.KindNameCollision, p.AppendPos,
					"builder(each = %q) on field %s collides with the appender of field %s", m, p.Field.Name, other.field))
			case taken:
				errs.Add(diag.New(diag.KindNameCollision, p.AppendPos,
					"builder(each = %q) on field %s collides with the setter of field %s", m, p.Field.Name, other.field))
			default:
				owners[m] = methodOwner{field: p.Field.Name, appender: true}
			}
		}
	}
	return errs.Err()
}

func (r *resolverImpl) ResolveDebug(info *parser.StructInfo) (*DebugPlan, error) {
	set, err := directive.ForDebug(info)
	if err != nil {
		return nil, err
	}

	var override *string
	if set.Bound != nil {
		override = &set.Bound.Clause
	}
	inferred := bounds.Infer(info, override)
	params, args := genericLists(inferred.Generics)

	fields := make([]DebugField, 0, len(info.Fields))
	for _, f := range info.Fields {
		df := DebugField{Name: f.Name, Label: parser.Unraw(f.Name)}
		if ov := set.Format[f.Name]; ov != nil {
			df.Format = ov.Format
			df.HasFormat = true
		}
		fields = append(fields, df)
	}
	return &DebugPlan{
		Subject: info.Name,
		Params:  params,
		Args:    args,
		Where:   inferred.Where,
		Fields:  fields,
	}, nil
}
