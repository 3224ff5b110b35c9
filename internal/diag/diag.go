package diag

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a derivation-time diagnostic.
type Kind int

const (
	KindUnsupportedDeclaration Kind = iota
	KindInvalidType
	KindInvalidGeneric
	KindMalformedDirective
	KindNameCollision
	KindManifest
)

var (
	ErrUnsupportedDeclaration = errors.New("unsupported declaration")
	ErrInvalidType            = errors.New("invalid type expression")
	ErrInvalidGeneric         = errors.New("invalid generic parameter")
	ErrMalformedDirective     = errors.New("malformed directive")
	ErrNameCollision          = errors.New("name collision")
	ErrManifest               = errors.New("invalid manifest")
)

func (k Kind) sentinel() error {
	switch k {
	case KindUnsupportedDeclaration:
		return ErrUnsupportedDeclaration
	case KindInvalidType:
		return ErrInvalidType
	case KindInvalidGeneric:
		return ErrInvalidGeneric
	case KindMalformedDirective:
		return ErrMalformedDirective
	case KindNameCollision:
		return ErrNameCollision
	default:
		return ErrManifest
	}
}

func (k Kind) String() string {
	return k.sentinel().Error()
}

// Pos is a location inside a declaration manifest. Line and Column are 1-based;
// zero means unknown.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	file := p.File
	if file == "" {
		file = "<input>"
	}
	if p.Line == 0 {
		return file
	}
	return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Column)
}

// Before reports whether p sorts before q (file, line, column).
func (p Pos) Before(q Pos) bool {
	if p.File != q.File {
		return p.File < q.File
	}
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// Diagnostic is a structured derivation error: a message and the location of
// the offending construct.
type Diagnostic struct {
	Kind    Kind
	Message string
	Pos     Pos
}

// New builds a diagnostic with a formatted message.
func New(kind Kind, pos Pos, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func (d *Diagnostic) Error() string {
	return d.Pos.String() + ": " + d.Message
}

func (d *Diagnostic) Unwrap() error {
	return d.Kind.sentinel()
}

// List collects diagnostics from several constructs of one declaration.
type List []*Diagnostic

// Add appends d unless it is nil.
func (l *List) Add(d *Diagnostic) {
	if d != nil {
		*l = append(*l, d)
	}
}

// Merge appends every diagnostic carried by err. Non-diagnostic errors are
// wrapped as manifest diagnostics at pos.
func (l *List) Merge(err error, pos Pos) {
	if err == nil {
		return
	}
	var list List
	if errors.As(err, &list) {
		*l = append(*l, list...)
		return
	}
	var d *Diagnostic
	if errors.As(err, &d) {
		*l = append(*l, d)
		return
	}
	*l = append(*l, New(KindManifest, pos, "%v", err))
}

// Err returns nil for an empty list, the only element for a single-element
// list, and the sorted list otherwise.
func (l List) Err() error {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return l[0]
	}
	sorted := make(List, len(l))
	copy(sorted, l)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Pos.Before(sorted[j].Pos)
	})
	return sorted
}

func (l List) Error() string {
	msgs := make([]string, 0, len(l))
	for _, d := range l {
		msgs = append(msgs, d.Error())
	}
	return strings.Join(msgs, "\n")
}

func (l List) Unwrap() []error {
	errs := make([]error, 0, len(l))
	for _, d := range l {
		errs = append(errs, d)
	}
	return errs
}

// Flatten extracts every diagnostic from err, in order.
func Flatten(err error) []*Diagnostic {
	if err == nil {
		return nil
	}
	var list List
	if errors.As(err, &list) {
		return list
	}
	var d *Diagnostic
	if errors.As(err, &d) {
		return []*Diagnostic{d}
	}
	return nil
}
