// Package manifest loads YAML declaration manifests and turns them into
// parser declarations that keep the YAML position of every scalar.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/seitarof/derive-gen/internal/diag"
	"github.com/seitarof/derive-gen/internal/parser"
)

// Scalar is a YAML scalar value with its position.
type Scalar struct {
	Value  string
	Line   int
	Column int
}

func (s *Scalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", n.Line)
	}
	s.Value = n.Value
	s.Line = n.Line
	s.Column = n.Column
	return nil
}

// File is one decoded manifest.
type File struct {
	Declarations []Decl `yaml:"declarations"`
}

// Decl is the manifest form of one declaration.
type Decl struct {
	Name     Scalar   `yaml:"name"`
	Kind     Scalar   `yaml:"kind"`
	Vis      Scalar   `yaml:"vis"`
	Derive   []Scalar `yaml:"derive"`
	Generics []Scalar `yaml:"generics"`
	Where    []Scalar `yaml:"where"`
	Attrs    []Scalar `yaml:"attrs"`
	Fields   []Field  `yaml:"fields"`

	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

// Field is the manifest form of one field. An empty name marks a positional
// field.
type Field struct {
	Name  Scalar   `yaml:"name"`
	Vis   Scalar   `yaml:"vis"`
	Type  Scalar   `yaml:"type"`
	Attrs []Scalar `yaml:"attrs"`

	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

var (
	declKeys  = []string{"name", "kind", "vis", "derive", "generics", "where", "attrs", "fields"}
	fieldKeys = []string{"name", "vis", "type", "attrs"}
)

func (d *Decl) UnmarshalYAML(n *yaml.Node) error {
	if err := checkKeys(n, "declaration", declKeys); err != nil {
		return err
	}
	type plain Decl
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Line, d.Column = n.Line, n.Column
	return nil
}

func (f *Field) UnmarshalYAML(n *yaml.Node) error {
	if err := checkKeys(n, "field", fieldKeys); err != nil {
		return err
	}
	type plain Field
	if err := n.Decode((*plain)(f)); err != nil {
		return err
	}
	f.Line, f.Column = n.Line, n.Column
	return nil
}

// checkKeys rejects unknown mapping keys. Node.Decode does not inherit the
// decoder's KnownFields setting, so nested types check for themselves.
func checkKeys(n *yaml.Node, what string, allowed []string) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: %s must be a mapping", n.Line, what)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		known := false
		for _, a := range allowed {
			if key.Value == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("line %d: field %s not found in %s", key.Line, key.Value, what)
		}
	}
	return nil
}

// Decode reads one manifest document. path is used for diagnostics only.
func Decode(path string, r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, diag.New(diag.KindManifest, diag.Pos{File: path}, "%v", err)
	}
	return &f, nil
}

// Load reads and decodes the manifest at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Decode(path, bytes.NewReader(data))
}

// ToDeclarations converts the manifest into parser declarations. Invalid kinds
// are reported for every declaration at once.
func (f *File) ToDeclarations(path string) ([]parser.Declaration, error) {
	var errs diag.List
	out := make([]parser.Declaration, 0, len(f.Declarations))
	for _, d := range f.Declarations {
		declPos := pos(path, d.Line, d.Column)
		kind, err := parser.ParseDeclKind(d.Kind.Value)
		if err != nil {
			errs.Add(diag.New(diag.KindManifest, scalarPos(path, d.Kind, declPos), "%v", err))
			continue
		}
		decl := parser.Declaration{
			Name:     d.Name.Value,
			Kind:     kind,
			Vis:      d.Vis.Value,
			Generics: sources(path, d.Generics),
			Where:    sources(path, d.Where),
			Attrs:    sources(path, d.Attrs),
			Pos:      scalarPos(path, d.Name, declPos),
		}
		for _, s := range d.Derive {
			decl.Derives = append(decl.Derives, s.Value)
		}
		for _, fd := range d.Fields {
			fieldPos := pos(path, fd.Line, fd.Column)
			decl.Fields = append(decl.Fields, parser.RawField{
				Name:  fd.Name.Value,
				Vis:   fd.Vis.Value,
				Type:  parser.Source{Text: fd.Type.Value, Pos: scalarPos(path, fd.Type, fieldPos)},
				Attrs: sources(path, fd.Attrs),
				Pos:   scalarPos(path, fd.Name, fieldPos),
			})
		}
		out = append(out, decl)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func sources(path string, ss []Scalar) []parser.Source {
	if len(ss) == 0 {
		return nil
	}
	out := make([]parser.Source, 0, len(ss))
	for _, s := range ss {
		out = append(out, parser.Source{Text: s.Value, Pos: pos(path, s.Line, s.Column)})
	}
	return out
}

func pos(path string, line, col int) diag.Pos {
	return diag.Pos{File: path, Line: line, Column: col}
}

func scalarPos(path string, s Scalar, fallback diag.Pos) diag.Pos {
	if s.Line == 0 {
		return fallback
	}
	return pos(path, s.Line, s.Column)
}

// Discover expands glob patterns (with ** support) into manifest paths. Paths
// keep pattern order; matches of one pattern are sorted and duplicates across
// patterns are dropped.
func Discover(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no manifests match %q", p)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}
