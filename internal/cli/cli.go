package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ParseArgs parses command line arguments into Config. Positional arguments
// are manifest glob patterns.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{}
	fs := pflag.NewFlagSet("derive-gen", pflag.ContinueOnError)
	bindFlags(fs, cfg)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return finish(cfg, fs.Args())
}

// NewRootCommand builds the derive-gen command. run receives the resolved
// configuration.
func NewRootCommand(version string, run func(cmd *cobra.Command, cfg *Config) error) *cobra.Command {
	cfg := &Config{}
	cmd := &cobra.Command{
		Use:   "derive-gen [flags] <manifest-pattern>...",
		Short: "Generate builder and debug implementations from declaration manifests",
		Long: `derive-gen reads YAML manifests describing struct declarations and generates
builder companions (derive Builder) and debug formatting implementations
(derive CustomDebug) for them. Patterns support ** globbing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.ShowVersion {
				cmd.Println(version)
				return nil
			}
			resolved, err := finish(cfg, args)
			if err != nil {
				return err
			}
			return run(cmd, resolved)
		},
	}
	bindFlags(cmd.Flags(), cfg)
	return cmd
}

func bindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.OutDir, "out-dir", "o", "", `output directory for file mode (default ".")`)
	fs.StringVarP(&cfg.Mode, "mode", "m", "", "output mode: file, stdout or txtar (default file)")
	fs.StringVar(&cfg.Archive, "archive", "", "txtar archive destination (default stdout)")
	fs.StringSliceVarP(&cfg.Derives, "derive", "d", nil, "derives to run for every declaration, overriding the manifest (builder, debug)")
	fs.StringSliceVarP(&cfg.Types, "type", "t", nil, "declaration name patterns to include")
	fs.StringSliceVar(&cfg.Skip, "skip", nil, "declaration name patterns to exclude")
	fs.StringVarP(&cfg.ConfigPath, "config", "c", "", "settings file (default "+DefaultConfigFile+" when present)")
	fs.BoolVar(&cfg.Rustfmt, "rustfmt", false, "format output with rustfmt")
	fs.StringVar(&cfg.RustfmtPath, "rustfmt-path", "", "rustfmt executable")
	fs.StringVar(&cfg.Edition, "edition", "", "edition passed to rustfmt (default 2021)")
	fs.IntVarP(&cfg.Jobs, "jobs", "j", 0, "manifests processed concurrently (default 4)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "log level: debug, info, warn or error (default info)")
	fs.StringVar(&cfg.Color, "color", "", "colour output: auto, always or never (default auto)")
	fs.BoolVarP(&cfg.ShowVersion, "version", "v", false, "show version")
}

func finish(cfg *Config, args []string) (*Config, error) {
	if cfg.ShowVersion {
		return cfg, nil
	}
	cfg.Patterns = splitPatterns(args)
	cfg.Derives = splitCommaList(cfg.Derives)
	cfg.Types = splitCommaList(cfg.Types)
	cfg.Skip = splitCommaList(cfg.Skip)
	return Resolve(cfg)
}

func splitPatterns(args []string) []string {
	var out []string
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func splitCommaList(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		for _, p := range strings.Split(r, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
