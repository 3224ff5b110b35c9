package generator

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/tools/txtar"

	"github.com/seitarof/derive-gen/internal/parser"
	"github.com/seitarof/derive-gen/internal/resolver"
)

//go:embed templates/*.rs.tmpl
var templateFS embed.FS

// Output modes accepted by Generate.
const (
	ModeFile   = "file"
	ModeStdout = "stdout"
	ModeTxtar  = "txtar"
)

// Header is the first line of every generated file.
const Header = "// Code generated by derive-gen. DO NOT EDIT."

// Renderer turns resolved plans into source snippets.
type Renderer interface {
	RenderBuilder(plan *resolver.BuilderPlan) ([]byte, error)
	RenderDebug(plan *resolver.DebugPlan) ([]byte, error)
}

// Generator renders plans and writes generated files.
type Generator interface {
	Renderer
	Generate(cfg Config, units []Unit) error
}

// Config is the minimum config contract required by generator.
type Config interface {
	OutputMode() string
	OutputDir() string
	ArchivePath() string
}

// Unit is one generated file: the snippets derived from a single manifest.
type Unit struct {
	// Source is the manifest path recorded in the file header.
	Source string
	// Filename is the output file name relative to the output directory.
	Filename string
	Snippets [][]byte
}

// Formatter formats generated source.
type Formatter interface {
	Format(filename string, src []byte) ([]byte, error)
}

// FileWriter writes generated code to disk.
type FileWriter interface {
	Write(filename string, data []byte) error
}

type generatorImpl struct {
	formatter Formatter
	writer    FileWriter
	out       io.Writer
	tmpl      *template.Template
}

type fileWriter struct{}

type fileTemplateData struct {
	Source   string
	Snippets []string
}

// New creates a code generator. out receives stdout and txtar output when no
// archive path is configured.
func New(f Formatter, w FileWriter, out io.Writer) Generator {
	return &generatorImpl{formatter: f, writer: w, out: out, tmpl: parseTemplates()}
}

// NewRenderer creates a renderer without any output side.
func NewRenderer() Renderer {
	return &generatorImpl{tmpl: parseTemplates()}
}

func parseTemplates() *template.Template {
	funcs := sprig.TxtFuncMap()
	funcs["rustString"] = rustString
	funcs["vis"] = visPrefix
	funcs["unraw"] = parser.Unraw
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.rs.tmpl"))
}

// NewFileWriter creates a plain file writer that creates parent directories.
func NewFileWriter() FileWriter {
	return &fileWriter{}
}

func (g *generatorImpl) RenderBuilder(plan *resolver.BuilderPlan) ([]byte, error) {
	return g.render("builder", plan)
}

func (g *generatorImpl) RenderDebug(plan *resolver.DebugPlan) ([]byte, error) {
	return g.render("debug", plan)
}

func (g *generatorImpl) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return Normalize(buf.Bytes()), nil
}

func (g *generatorImpl) Generate(cfg Config, units []Unit) error {
	if len(units) == 0 {
		return fmt.Errorf("nothing to generate")
	}

	files := make([]txtar.File, 0, len(units))
	owner := make(map[string]string, len(units))
	for _, u := range units {
		if prev, ok := owner[u.Filename]; ok {
			return fmt.Errorf("%s and %s both generate %s", prev, u.Source, u.Filename)
		}
		owner[u.Filename] = u.Source
		data, err := g.assemble(u)
		if err != nil {
			return fmt.Errorf("%s: %w", u.Source, err)
		}
		files = append(files, txtar.File{Name: u.Filename, Data: data})
	}

	switch cfg.OutputMode() {
	case ModeFile:
		for _, f := range files {
			if err := g.writer.Write(filepath.Join(cfg.OutputDir(), f.Name), f.Data); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		}
	case ModeStdout:
		for _, f := range files {
			if _, err := g.out.Write(f.Data); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		}
	case ModeTxtar:
		archive := txtar.Format(&txtar.Archive{Files: files})
		if path := cfg.ArchivePath(); path != "" {
			if err := g.writer.Write(path, archive); err != nil {
				return fmt.Errorf("write archive: %w", err)
			}
			return nil
		}
		if _, err := g.out.Write(archive); err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
	default:
		return fmt.Errorf("unknown output mode %q", cfg.OutputMode())
	}
	return nil
}

func (g *generatorImpl) assemble(u Unit) ([]byte, error) {
	data := fileTemplateData{Source: filepath.ToSlash(u.Source)}
	for _, s := range u.Snippets {
		data.Snippets = append(data.Snippets, strings.TrimSpace(string(s)))
	}
	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "file", data); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}
	formatted, err := g.formatter.Format(u.Filename, Normalize(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("format: %w", err)
	}
	return formatted, nil
}

func (w *fileWriter) Write(filename string, data []byte) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filename, data, 0o644)
}

// OutputFilename maps a manifest path to its generated file name:
// widgets.derive.yaml becomes widgets_derive.rs.
func OutputFilename(manifest string) string {
	base := filepath.Base(manifest)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSuffix(base, ".derive")
	return base + "_derive.rs"
}

func visPrefix(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return ""
	}
	return v + " "
}

// rustString quotes s as a string literal. Braces are left alone so format
// strings keep their placeholders.
func rustString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u{%x}`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
