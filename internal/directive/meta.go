package directive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MetaKind is the syntactic form of an attribute.
type MetaKind int

const (
	MetaPath MetaKind = iota
	MetaList
	MetaNameValue
)

// LitKind identifies a literal's token type.
type LitKind int

const (
	LitStr LitKind = iota
	LitInt
	LitFloat
	LitBool
	LitChar
)

// Lit is a literal. Value holds the unescaped contents for strings and chars
// and the source text otherwise.
type Lit struct {
	Kind  LitKind
	Value string
}

// Meta is one parsed attribute: `path`, `path(items...)` or `path = lit`.
type Meta struct {
	Kind   MetaKind
	Path   string
	Nested []Item
	Value  *Lit
}

// Item is an element of a list attribute: either a nested meta or a literal.
type Item struct {
	Meta *Meta
	Lit  *Lit
}

// ParseMeta parses attribute text. An enclosing `#[...]` is accepted.
func ParseMeta(text string) (*Meta, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "#[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	toks, err := lexMeta(s)
	if err != nil {
		return nil, err
	}
	p := &metaParser{toks: toks}
	m, err := p.parseMeta()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, fmt.Errorf("unexpected %s after attribute", p.peek())
	}
	return m, nil
}

// attrKey returns the leading path of an attribute without fully parsing it.
func attrKey(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "#[")
	end := 0
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if r == '_' || r == ':' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			end += size
			continue
		}
		break
	}
	return s[:end]
}

type metaTokKind int

const (
	mtIdent metaTokKind = iota
	mtPunct
	mtLit
)

type metaTok struct {
	kind metaTokKind
	text string
	lit  *Lit
}

func (t metaTok) String() string {
	if t.kind == mtLit {
		return "literal"
	}
	return strconv.Quote(t.text)
}

func lexMeta(s string) ([]metaTok, error) {
	var toks []metaTok
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == 'r' && (strings.HasPrefix(s[i:], `r"`) || strings.HasPrefix(s[i:], `r#"`)):
			val, n, err := scanRawString(s[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, metaTok{kind: mtLit, lit: &Lit{Kind: LitStr, Value: val}})
			i += n
		case r == '_' || unicode.IsLetter(r):
			j := i
			for j < len(s) {
				r2, sz := utf8.DecodeRuneInString(s[j:])
				if r2 != '_' && !unicode.IsLetter(r2) && !unicode.IsDigit(r2) {
					break
				}
				j += sz
			}
			word := s[i:j]
			if word == "true" || word == "false" {
				toks = append(toks, metaTok{kind: mtLit, lit: &Lit{Kind: LitBool, Value: word}})
			} else {
				toks = append(toks, metaTok{kind: mtIdent, text: word})
			}
			i = j
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9'):
			j := i + 1
			kind := LitInt
			for j < len(s) && (s[j] == '_' || s[j] == '.' || (s[j] < utf8.RuneSelf && unicode.IsLetter(rune(s[j]))) || unicode.IsDigit(rune(s[j]))) {
				if s[j] == '.' {
					kind = LitFloat
				}
				j++
			}
			toks = append(toks, metaTok{kind: mtLit, lit: &Lit{Kind: kind, Value: s[i:j]}})
			i = j
		case r == '"':
			val, n, err := scanString(s[i:], '"')
			if err != nil {
				return nil, err
			}
			toks = append(toks, metaTok{kind: mtLit, lit: &Lit{Kind: LitStr, Value: val}})
			i += n
		case r == '\'':
			val, n, err := scanString(s[i:], '\'')
			if err != nil {
				return nil, err
			}
			if utf8.RuneCountInString(val) != 1 {
				return nil, fmt.Errorf("invalid char literal %s", s[i:i+n])
			}
			toks = append(toks, metaTok{kind: mtLit, lit: &Lit{Kind: LitChar, Value: val}})
			i += n
		case r == ':' && strings.HasPrefix(s[i:], "::"):
			toks = append(toks, metaTok{kind: mtPunct, text: "::"})
			i += 2
		case strings.ContainsRune("(),=", r):
			toks = append(toks, metaTok{kind: mtPunct, text: string(r)})
			i += size
		default:
			return nil, fmt.Errorf("unexpected character %q in attribute", r)
		}
	}
	return toks, nil
}

// scanString reads a quoted literal starting at s[0] and returns its
// unescaped value and the number of bytes consumed.
func scanString(s string, quote byte) (string, int, error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\':
			if i+1 >= len(s) {
				return "", 0, errors.New("unterminated escape in literal")
			}
			n, err := unescape(&b, s[i+1:])
			if err != nil {
				return "", 0, err
			}
			i += 1 + n
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			b.WriteRune(r)
			i += size
		}
	}
	return "", 0, errors.New("unterminated literal")
}

func unescape(b *strings.Builder, s string) (int, error) {
	switch s[0] {
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case '\\', '"', '\'':
		b.WriteByte(s[0])
	case '0':
		b.WriteByte(0)
	case 'x':
		if len(s) < 3 {
			return 0, errors.New("short \\x escape")
		}
		v, err := strconv.ParseUint(s[1:3], 16, 8)
		if err != nil || v > 0x7f {
			return 0, fmt.Errorf("invalid \\x escape %q", s[:3])
		}
		b.WriteByte(byte(v))
		return 3, nil
	case 'u':
		end := strings.IndexByte(s, '}')
		if len(s) < 3 || s[1] != '{' || end < 0 {
			return 0, errors.New("invalid \\u escape")
		}
		v, err := strconv.ParseUint(strings.ReplaceAll(s[2:end], "_", ""), 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, fmt.Errorf("invalid \\u escape %q", s[:end+1])
		}
		b.WriteRune(rune(v))
		return end + 1, nil
	case '\n':
		// Line continuation: skip the newline and leading whitespace.
		n := 1
		for n < len(s) && (s[n] == ' ' || s[n] == '\t' || s[n] == '\n' || s[n] == '\r') {
			n++
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unknown escape \\%c", s[0])
	}
	return 1, nil
}

func scanRawString(s string) (string, int, error) {
	i := 1
	hashes := 0
	for i < len(s) && s[i] == '#' {
		hashes++
		i++
	}
	if i >= len(s) || s[i] != '"' {
		return "", 0, errors.New("invalid raw string")
	}
	closing := `"` + strings.Repeat("#", hashes)
	body := s[i+1:]
	end := strings.Index(body, closing)
	if end < 0 {
		return "", 0, errors.New("unterminated raw string")
	}
	return body[:end], i + 1 + end + len(closing), nil
}

type metaParser struct {
	toks []metaTok
	pos  int
}

func (p *metaParser) eof() bool { return p.pos >= len(p.toks) }

func (p *metaParser) peek() metaTok {
	if p.eof() {
		return metaTok{kind: mtPunct, text: "end of input"}
	}
	return p.toks[p.pos]
}

func (p *metaParser) isPunct(s string) bool {
	t := p.peek()
	return !p.eof() && t.kind == mtPunct && t.text == s
}

func (p *metaParser) parsePath() (string, error) {
	var segs []string
	if p.isPunct("::") {
		segs = append(segs, "")
		p.pos++
	}
	for {
		t := p.peek()
		if p.eof() || t.kind != mtIdent {
			return "", fmt.Errorf("expected identifier, found %s", t)
		}
		segs = append(segs, t.text)
		p.pos++
		if !p.isPunct("::") {
			return strings.Join(segs, "::"), nil
		}
		p.pos++
	}
}

func (p *metaParser) parseMeta() (*Meta, error) {
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	switch {
	case p.isPunct("("):
		p.pos++
		m := &Meta{Kind: MetaList, Path: path}
		for !p.isPunct(")") {
			if p.eof() {
				return nil, fmt.Errorf("unclosed '(' in attribute %s", path)
			}
			if t := p.peek(); t.kind == mtLit {
				m.Nested = append(m.Nested, Item{Lit: t.lit})
				p.pos++
			} else {
				nested, err := p.parseMeta()
				if err != nil {
					return nil, err
				}
				m.Nested = append(m.Nested, Item{Meta: nested})
			}
			if p.isPunct(",") {
				p.pos++
				continue
			}
			if !p.isPunct(")") {
				return nil, fmt.Errorf("expected ',' or ')', found %s", p.peek())
			}
		}
		p.pos++
		return m, nil
	case p.isPunct("="):
		p.pos++
		t := p.peek()
		if p.eof() || t.kind != mtLit {
			return nil, fmt.Errorf("expected literal after `%s =`, found %s", path, t)
		}
		p.pos++
		return &Meta{Kind: MetaNameValue, Path: path, Value: t.lit}, nil
	default:
		return &Meta{Kind: MetaPath, Path: path}, nil
	}
}
