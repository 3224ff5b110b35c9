package parser

import (
	"errors"
	"fmt"
	"strings"
)

// GenericKind distinguishes lifetime, type and const parameters.
type GenericKind int

const (
	GenericType GenericKind = iota
	GenericLifetime
	GenericConst
)

// GenericParam is one declared generic parameter of the subject declaration.
type GenericParam struct {
	Kind GenericKind
	// Name includes the leading quote for lifetimes.
	Name string
	// Bounds is the declared bound text after ':' (type and lifetime params).
	Bounds string
	// ConstType is the type of a const parameter.
	ConstType string
}

// Decl renders the parameter as it appears in a parameter list, without any
// default.
func (g GenericParam) Decl() string {
	switch g.Kind {
	case GenericConst:
		return "const " + g.Name + ": " + g.ConstType
	default:
		if g.Bounds == "" {
			return g.Name
		}
		return g.Name + ": " + g.Bounds
	}
}

// Arg renders the parameter as a generic argument.
func (g GenericParam) Arg() string {
	return g.Name
}

// WithBound returns a copy of g with bound appended to its declared bounds.
func (g GenericParam) WithBound(bound string) GenericParam {
	if g.Bounds == "" {
		g.Bounds = bound
	} else {
		g.Bounds = g.Bounds + " + " + bound
	}
	return g
}

// ParseGenericParam parses one generic parameter such as `T`, `T: Clone`,
// `'a: 'b`, `const N: usize` or `T = u8`.
func ParseGenericParam(src string) (GenericParam, error) {
	s := strings.TrimSpace(src)
	if s == "" {
		return GenericParam{}, errors.New("empty generic parameter")
	}

	switch {
	case strings.HasPrefix(s, "'"):
		end := scanIdent(s, 1)
		if end == 1 {
			return GenericParam{}, fmt.Errorf("invalid lifetime %q", src)
		}
		g := GenericParam{Kind: GenericLifetime, Name: s[:end]}
		rest := strings.TrimSpace(s[end:])
		if rest == "" {
			return g, nil
		}
		if !strings.HasPrefix(rest, ":") {
			return GenericParam{}, fmt.Errorf("unexpected %q after lifetime %s", rest, g.Name)
		}
		g.Bounds = strings.TrimSpace(rest[1:])
		if g.Bounds == "" {
			return GenericParam{}, fmt.Errorf("empty bounds for lifetime %s", g.Name)
		}
		return g, nil

	case strings.HasPrefix(s, "const ") || strings.HasPrefix(s, "const\t"):
		rest := strings.TrimSpace(s[len("const"):])
		end := scanIdent(rest, 0)
		name := rest[:end]
		if !IsIdent(name) {
			return GenericParam{}, fmt.Errorf("invalid const parameter %q", src)
		}
		rest = strings.TrimSpace(rest[end:])
		if !strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "::") {
			return GenericParam{}, fmt.Errorf("const parameter %s needs a type", name)
		}
		ty, _ := splitDefault(strings.TrimSpace(rest[1:]))
		if ty == "" {
			return GenericParam{}, fmt.Errorf("const parameter %s needs a type", name)
		}
		return GenericParam{Kind: GenericConst, Name: name, ConstType: ty}, nil
	}

	end := scanIdent(s, 0)
	if strings.HasPrefix(s, "r#") {
		end = scanIdent(s, 2)
	}
	name := s[:end]
	if !IsIdent(name) {
		return GenericParam{}, fmt.Errorf("invalid type parameter %q", src)
	}
	g := GenericParam{Kind: GenericType, Name: name}
	rest := strings.TrimSpace(s[end:])
	switch {
	case rest == "":
	case strings.HasPrefix(rest, "="):
		// Defaults are not repeated in impl parameter lists.
	case strings.HasPrefix(rest, ":") && !strings.HasPrefix(rest, "::"):
		bounds, _ := splitDefault(strings.TrimSpace(rest[1:]))
		if bounds == "" {
			return GenericParam{}, fmt.Errorf("empty bounds for type parameter %s", name)
		}
		g.Bounds = bounds
	default:
		return GenericParam{}, fmt.Errorf("unexpected %q after type parameter %s", rest, name)
	}
	return g, nil
}

// splitDefault splits `X = Y` at the first '=' outside angle brackets.
func splitDefault(s string) (string, string) {
	depth := 0
	prev := rune(0)
	for i, r := range s {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			if r == '>' && prev == '-' {
				break
			}
			depth--
		case '=':
			if depth == 0 {
				return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
			}
		}
		prev = r
	}
	return s, ""
}
