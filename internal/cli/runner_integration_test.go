package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/seitarof/derive-gen/internal/derive"
	"github.com/seitarof/derive-gen/internal/generator"
	"github.com/seitarof/derive-gen/internal/logger"
)

func newIntegrationRunner(out, diags *bytes.Buffer) Runner {
	return NewRunner(
		derive.Default(),
		generator.New(generator.NewWhitespaceFormatter(), generator.NewFileWriter(), out),
		NewReporter(diags, false),
		logger.Nop(),
	)
}

func TestRunner_Run_GeneratesFiles(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "gen")
	var diags bytes.Buffer
	runner := newIntegrationRunner(&bytes.Buffer{}, &diags)

	cfg := DefaultConfig()
	cfg.Patterns = []string{filepath.Join("..", "..", "testdata", "**", "*.derive.yaml")}
	cfg.OutDir = outDir

	if err := runner.Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() error = %v\n%s", err, diags.String())
	}

	content, err := os.ReadFile(filepath.Join(outDir, "commands_derive.rs"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	got := string(content)

	checks := []string{
		generator.Header + "\n// source: ../../testdata/commands.derive.yaml\n",
		"pub struct CommandBuilder {",
		"pub fn arg(&mut self, arg: String) -> &mut Self {",
		"pub fn build(&self) -> std::result::Result<Command, std::boxed::Box<dyn std::error::Error>> {",
		"impl std::fmt::Debug for Command {",
	}
	for _, check := range checks {
		if !strings.Contains(got, check) {
			t.Fatalf("generated code does not contain %q\n%s", check, got)
		}
	}
	if strings.Index(got, "CommandBuilder {") > strings.Index(got, "impl std::fmt::Debug") {
		t.Fatalf("derives must follow manifest order\n%s", got)
	}

	content, err = os.ReadFile(filepath.Join(outDir, "fields_derive.rs"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	got = string(content)
	checks = []string{
		"impl<T: std::fmt::Debug> std::fmt::Debug for Field<T> {",
		`.field("bitmask", &std::format_args!("0b{:08b}", self.bitmask))`,
		"impl<T: Trait> std::fmt::Debug for Wrapper<T> where T::Value: std::fmt::Debug {",
	}
	for _, check := range checks {
		if !strings.Contains(got, check) {
			t.Fatalf("generated code does not contain %q\n%s", check, got)
		}
	}
}

func TestRunner_Run_TxtarToStdout(t *testing.T) {
	var out, diags bytes.Buffer
	runner := newIntegrationRunner(&out, &diags)

	cfg := DefaultConfig()
	cfg.Patterns = []string{filepath.Join("..", "..", "testdata", "**", "*.derive.yaml")}
	cfg.Mode = generator.ModeTxtar
	cfg.Derives = []string{"builder"}
	cfg.Types = []string{"Command"}

	if err := runner.Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() error = %v\n%s", err, diags.String())
	}

	ar := txtar.Parse(out.Bytes())
	if len(ar.Files) != 1 || ar.Files[0].Name != "commands_derive.rs" {
		t.Fatalf("unexpected archive:\n%s", out.String())
	}
	got := string(ar.Files[0].Data)
	if !strings.Contains(got, "pub struct CommandBuilder {") {
		t.Fatalf("archive does not contain the builder\n%s", got)
	}
	if strings.Contains(got, "std::fmt::Debug") {
		t.Fatalf("derive override must drop the debug derivation\n%s", got)
	}
}

func TestRunner_Run_ReportsPositions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.derive.yaml")
	src := `declarations:
  - name: Shape
    kind: enum
    derive: [Builder]
  - name: Command
    derive: [Builder]
    fields:
      - name: args
        type: Vec<String>
        attrs: ['builder(eac = "arg")']
  - name: Job
    derive: [Builder]
    fields:
      - name: build
        type: u8
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, diags bytes.Buffer
	cfg := DefaultConfig()
	cfg.Patterns = []string{path}
	cfg.Mode = generator.ModeStdout

	err := newIntegrationRunner(&out, &diags).Run(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if out.Len() != 0 {
		t.Fatalf("no output expected for a failing manifest, got\n%s", out.String())
	}

	got := diags.String()
	checks := []string{
		path + ":2:11: error: need a struct, but found a enum",
		path + `:10:17: error: expected builder(each = "...")`,
		path + ":14:15: error: field build collides with the generated build method",
	}
	for _, check := range checks {
		if !strings.Contains(got, check) {
			t.Fatalf("diagnostics do not contain %q\n%s", check, got)
		}
	}
}
