package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/seitarof/derive-gen/internal/diag"
	"github.com/seitarof/derive-gen/internal/generator"
	"github.com/seitarof/derive-gen/internal/logger"
	"github.com/seitarof/derive-gen/internal/manifest"
	"github.com/seitarof/derive-gen/internal/matcher"
	"github.com/seitarof/derive-gen/internal/parser"
)

// ErrDiagnostics is returned when at least one diagnostic was reported.
var ErrDiagnostics = errors.New("derivation failed")

// Runner orchestrates manifest/matcher/derive/generator layers.
type Runner interface {
	Run(ctx context.Context, cfg *Config) error
}

// Deriver runs one named derivation for a declaration.
type Deriver interface {
	Derive(name string, decl parser.Declaration) ([]byte, error)
}

type runnerImpl struct {
	deriver   Deriver
	generator generator.Generator
	reporter  Reporter
	log       logger.Logger
}

// NewRunner creates a default runner implementation.
func NewRunner(d Deriver, g generator.Generator, rep Reporter, log logger.Logger) Runner {
	return &runnerImpl{
		deriver:   d,
		generator: g,
		reporter:  rep,
		log:       log,
	}
}

// fileResult is the outcome for one manifest; results are kept in input order.
type fileResult struct {
	path     string
	snippets [][]byte
	diags    []*diag.Diagnostic
	warnings []warning
}

type warning struct {
	msg     string
	keyvals []any
}

// Run executes a single generation cycle over every manifest matching cfg.Patterns.
func (r *runnerImpl) Run(ctx context.Context, cfg *Config) error {
	paths, err := manifest.Discover(cfg.Patterns)
	if err != nil {
		return fmt.Errorf("discover manifests: %w", err)
	}
	for _, p := range paths {
		r.log.Debug("manifest found", "path", p)
	}

	sel, err := matcher.NewDeclMatcher(cfg.Types, cfg.Skip, cfg.Derives)
	if err != nil {
		return err
	}

	results := make([]fileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.process(path, sel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	units := make([]generator.Unit, 0, len(results))
	failed := 0
	for _, res := range results {
		for _, w := range res.warnings {
			r.log.Warn(w.msg, w.keyvals...)
		}
		if len(res.diags) > 0 {
			failed++
			for _, d := range res.diags {
				r.reporter.Report(d)
			}
			continue
		}
		if len(res.snippets) == 0 {
			r.log.Debug("nothing to generate", "manifest", res.path)
			continue
		}
		units = append(units, generator.Unit{
			Source:   res.path,
			Filename: generator.OutputFilename(res.path),
			Snippets: res.snippets,
		})
	}

	if len(units) > 0 {
		if err := r.generator.Generate(cfg, units); err != nil {
			return err
		}
		logWritten(r.log, cfg, units)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d manifest(s) with errors", ErrDiagnostics, failed)
	}
	return nil
}

func (r *runnerImpl) process(path string, sel matcher.DeclMatcher) fileResult {
	res := fileResult{path: path}
	file, err := manifest.Load(path)
	if err != nil {
		res.diags = asDiagnostics(err, path)
		return res
	}
	decls, err := file.ToDeclarations(path)
	if err != nil {
		res.diags = asDiagnostics(err, path)
		return res
	}

	for _, s := range sel.Select(decls) {
		for _, name := range s.Unknown {
			res.warnings = append(res.warnings, warning{
				msg:     "unknown derive skipped",
				keyvals: []any{"derive", name, "type", s.Decl.Name, "at", s.Decl.Pos.String()},
			})
		}
		if len(s.Derives) == 0 {
			res.warnings = append(res.warnings, warning{
				msg:     "declaration has no derives",
				keyvals: []any{"type", s.Decl.Name, "at", s.Decl.Pos.String()},
			})
			continue
		}
		for _, name := range s.Derives {
			out, err := r.deriver.Derive(name, s.Decl)
			if err != nil {
				res.diags = append(res.diags, asDiagnostics(err, s.Decl.Pos.File)...)
				continue
			}
			res.snippets = append(res.snippets, out)
		}
	}
	return res
}

// asDiagnostics returns the diagnostics carried by err, wrapping any other
// error as a manifest diagnostic for file.
func asDiagnostics(err error, file string) []*diag.Diagnostic {
	if ds := diag.Flatten(err); len(ds) > 0 {
		return ds
	}
	return []*diag.Diagnostic{diag.New(diag.KindManifest, diag.Pos{File: file}, "%v", err)}
}

func logWritten(log logger.Logger, cfg *Config, units []generator.Unit) {
	switch cfg.OutputMode() {
	case generator.ModeFile:
		for _, u := range units {
			log.Info("generated", "source", u.Source, "output", filepath.Join(cfg.OutputDir(), u.Filename))
		}
	case generator.ModeTxtar:
		if cfg.ArchivePath() != "" {
			log.Info("archive written", "path", cfg.ArchivePath(), "files", len(units))
		}
	}
}
