package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/seitarof/derive-gen/internal/cli"
	"github.com/seitarof/derive-gen/internal/derive"
	"github.com/seitarof/derive-gen/internal/generator"
	"github.com/seitarof/derive-gen/internal/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCommand(version, run)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "derive-gen:", err)
		stop()
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, cfg *cli.Config) error {
	colored := cli.UseColor(cfg.Color, os.Stderr)
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.NewLogger(&logger.Config{
		Level:  level,
		Output: os.Stderr,
		Color:  colored,
	})

	var f generator.Formatter = generator.NewWhitespaceFormatter()
	if cfg.Rustfmt {
		f = generator.NewRustfmtFormatter(cfg.RustfmtPath, cfg.Edition)
	}
	g := generator.New(f, generator.NewFileWriter(), cmd.OutOrStdout())

	runner := cli.NewRunner(derive.Default(), g, cli.NewReporter(os.Stderr, colored), log)
	return runner.Run(cmd.Context(), cfg)
}
