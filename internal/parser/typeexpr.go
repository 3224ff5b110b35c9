package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TypeExpr is a declared field type: either a Named path with generic
// arguments or an Opaque leaf that is carried through verbatim.
type TypeExpr interface {
	String() string
	typeExpr()
}

// Named is a `::`-separated path whose last segment carries Args.
type Named struct {
	Global bool
	Path   []string
	Args   []TypeExpr
}

func (*Named) typeExpr() {}

// Name returns the last path segment.
func (n *Named) Name() string {
	if len(n.Path) == 0 {
		return ""
	}
	return n.Path[len(n.Path)-1]
}

// IsIdent reports whether n is the bare single-segment path name.
func (n *Named) IsIdent(name string) bool {
	return !n.Global && len(n.Path) == 1 && len(n.Args) == 0 && n.Path[0] == name
}

func (n *Named) String() string {
	var b strings.Builder
	if n.Global {
		b.WriteString("::")
	}
	b.WriteString(strings.Join(n.Path, "::"))
	if len(n.Args) > 0 {
		b.WriteByte('<')
		for i, a := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	return b.String()
}

// Opaque is a type not destructured further: references, tuples, slices,
// arrays, pointers, trait objects, qualified-self paths, lifetimes.
type Opaque struct {
	Text string
}

func (*Opaque) typeExpr() {}

func (o *Opaque) String() string { return o.Text }

// Components returns the path types found inside the opaque text in order,
// e.g. Vec<T> for `&'a Vec<T>` and T, u8 for `(T, u8)`. Keywords, lifetimes
// and literals are skipped. Text that does not lex has no components.
func (o *Opaque) Components() []TypeExpr {
	toks, err := lex(o.Text)
	if err != nil {
		return nil
	}
	p := &typeParser{src: o.Text, toks: toks}
	var out []TypeExpr
	for !p.eof() {
		start := p.pos
		t := p.peek()
		if (t.kind == tokIdent && !pathKeywords[t.text]) || t.is("::") {
			if named, err := p.parsePath(); err == nil {
				out = append(out, named)
				continue
			}
		}
		p.pos = start + 1
	}
	return out
}

// ParseType parses the textual form of a field type.
func ParseType(src string) (TypeExpr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, errors.New("empty type")
	}
	p := &typeParser{src: src, toks: toks}
	t, err := p.parseType(false)
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, fmt.Errorf("unexpected %q after type %q", p.peek().text, t.String())
	}
	return t, nil
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokLifetime
	tokLiteral
	tokPunct
)

type token struct {
	kind tokKind
	text string
	off  int
}

func (t token) end() int { return t.off + len(t.text) }

func (t token) is(punct string) bool { return t.kind == tokPunct && t.text == punct }

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == 'r' && strings.HasPrefix(src[i:], "r#") && i+2 < len(src) && isIdentStart(rune(src[i+2])):
			j := scanIdent(src, i+2)
			toks = append(toks, token{kind: tokIdent, text: src[i:j], off: i})
			i = j
		case isIdentStart(r):
			j := scanIdent(src, i)
			toks = append(toks, token{kind: tokIdent, text: src[i:j], off: i})
			i = j
		case r == '\'':
			j := scanIdent(src, i+1)
			if j == i+1 {
				return nil, fmt.Errorf("invalid lifetime at offset %d in %q", i, src)
			}
			toks = append(toks, token{kind: tokLifetime, text: src[i:j], off: i})
			i = j
		case unicode.IsDigit(r):
			j := i
			for j < len(src) && (isIdentChar(rune(src[j])) || src[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokLiteral, text: src[i:j], off: i})
			i = j
		case r == ':' && strings.HasPrefix(src[i:], "::"):
			toks = append(toks, token{kind: tokPunct, text: "::", off: i})
			i += 2
		case r == '-' && strings.HasPrefix(src[i:], "->"):
			toks = append(toks, token{kind: tokPunct, text: "->", off: i})
			i += 2
		case strings.ContainsRune("<>,()[]{}&*;:=+!?#", r):
			toks = append(toks, token{kind: tokPunct, text: string(r), off: i})
			i += size
		default:
			return nil, fmt.Errorf("unexpected character %q in type %q", r, src)
		}
	}
	return toks, nil
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentChar(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

func scanIdent(src string, i int) int {
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if !isIdentChar(r) {
			break
		}
		i += size
	}
	return i
}

// IsIdent reports whether s is a plain or raw identifier.
func IsIdent(s string) bool {
	s = strings.TrimPrefix(s, "r#")
	if s == "" || s == "_" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if !isIdentChar(r) {
			return false
		}
	}
	return true
}

// Unraw strips the raw-identifier prefix.
func Unraw(ident string) string {
	return strings.TrimPrefix(ident, "r#")
}

var pathKeywords = map[string]bool{
	"dyn": true, "impl": true, "fn": true, "unsafe": true, "extern": true, "for": true,
	"mut": true, "const": true,
}

var errNotPath = errors.New("not a simple path")

type typeParser struct {
	src  string
	toks []token
	pos  int
}

func (p *typeParser) eof() bool { return p.pos >= len(p.toks) }

func (p *typeParser) peek() token {
	if p.eof() {
		return token{kind: tokPunct, off: len(p.src)}
	}
	return p.toks[p.pos]
}

// parseType parses one type. Inside a generic argument list the type ends at
// a top-level ',' or the closing '>'.
func (p *typeParser) parseType(inArgs bool) (TypeExpr, error) {
	start := p.pos
	t := p.peek()
	if (t.kind == tokIdent && !pathKeywords[t.text]) || t.is("::") {
		named, err := p.parsePath()
		if err == nil && (p.eof() || (inArgs && (p.peek().is(",") || p.peek().is(">")))) {
			return named, nil
		}
		if err != nil && !errors.Is(err, errNotPath) {
			return nil, err
		}
		if err == nil && !inArgs {
			return named, nil
		}
		p.pos = start
	}
	return p.parseOpaque(inArgs)
}

func (p *typeParser) parsePath() (*Named, error) {
	n := &Named{}
	if p.peek().is("::") {
		n.Global = true
		p.pos++
	}
	for {
		t := p.peek()
		if t.kind != tokIdent || pathKeywords[t.text] {
			return nil, errNotPath
		}
		n.Path = append(n.Path, t.text)
		p.pos++

		if p.peek().is("::") && p.pos+1 < len(p.toks) && p.toks[p.pos+1].is("<") {
			p.pos++
		}
		if p.peek().is("<") {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			n.Args = args
			if p.peek().is("::") {
				// Arguments on a non-final segment, e.g. Foo<T>::Bar.
				return nil, errNotPath
			}
			return n, nil
		}
		if !p.peek().is("::") {
			return n, nil
		}
		p.pos++
	}
}

func (p *typeParser) parseArgs() ([]TypeExpr, error) {
	open := p.peek()
	p.pos++
	var args []TypeExpr
	for {
		if p.eof() {
			return nil, fmt.Errorf("unclosed '<' at offset %d in %q", open.off, p.src)
		}
		if p.peek().is(">") {
			p.pos++
			return args, nil
		}
		arg, err := p.parseType(true)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		switch {
		case p.peek().is(","):
			p.pos++
		case p.peek().is(">"):
		default:
			return nil, fmt.Errorf("unclosed '<' at offset %d in %q", open.off, p.src)
		}
	}
}

var closers = map[string]string{"(": ")", "[": "]", "{": "}", "<": ">"}

func (p *typeParser) parseOpaque(inArgs bool) (TypeExpr, error) {
	if p.eof() {
		return nil, fmt.Errorf("missing type in %q", p.src)
	}
	first := p.peek()
	last := first
	consumed := false
	var stack []string
	for !p.eof() {
		t := p.peek()
		if len(stack) == 0 && inArgs && (t.is(",") || t.is(">")) {
			break
		}
		if t.kind == tokPunct {
			if closer, ok := closers[t.text]; ok {
				stack = append(stack, closer)
			} else if t.text == ")" || t.text == "]" || t.text == "}" || t.text == ">" {
				if len(stack) == 0 || stack[len(stack)-1] != t.text {
					return nil, fmt.Errorf("unbalanced %q at offset %d in %q", t.text, t.off, p.src)
				}
				stack = stack[:len(stack)-1]
			}
		}
		last = t
		consumed = true
		p.pos++
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("unbalanced brackets in %q", p.src)
	}
	if !consumed {
		return nil, fmt.Errorf("missing type at offset %d in %q", first.off, p.src)
	}
	return &Opaque{Text: strings.TrimSpace(p.src[first.off:last.end()])}, nil
}
