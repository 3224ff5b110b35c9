package cli

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// DefaultConfigFile is read from the working directory when --config is not given.
const DefaultConfigFile = "derive-gen.toml"

// Config stores CLI options for a single generation run.
type Config struct {
	Patterns    []string `toml:"manifests" validate:"required,min=1"`
	OutDir      string   `toml:"out_dir" validate:"required"`
	Mode        string   `toml:"mode" validate:"required,oneof=file stdout txtar"`
	Archive     string   `toml:"archive"`
	Derives     []string `toml:"derive"`
	Types       []string `toml:"types"`
	Skip        []string `toml:"skip"`
	Rustfmt     bool     `toml:"rustfmt"`
	RustfmtPath string   `toml:"rustfmt_path"`
	Edition     string   `toml:"edition" validate:"omitempty,oneof=2015 2018 2021 2024"`
	Jobs        int      `toml:"jobs" validate:"min=1,max=64"`
	LogLevel    string   `toml:"log_level" validate:"required,oneof=debug info warn error"`
	Color       string   `toml:"color" validate:"required,oneof=auto always never"`

	ConfigPath  string `toml:"-"`
	ShowVersion bool   `toml:"-"`
}

// DefaultConfig returns the lowest-priority settings layer.
func DefaultConfig() *Config {
	return &Config{
		OutDir:   ".",
		Mode:     "file",
		Jobs:     4,
		LogLevel: "info",
		Color:    "auto",
	}
}

// OutputMode returns the generator output mode.
func (c *Config) OutputMode() string {
	return c.Mode
}

// OutputDir returns the directory generated files are written to.
func (c *Config) OutputDir() string {
	return c.OutDir
}

// ArchivePath returns the txtar destination; empty means stdout.
func (c *Config) ArchivePath() string {
	return c.Archive
}

// LoadFile reads a TOML settings file. Unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Resolve layers flags over the settings file over defaults and validates the
// result. A zero flag value defers to the next layer.
func Resolve(flags *Config) (*Config, error) {
	cfg := *flags
	path, explicit := flags.ConfigPath, flags.ConfigPath != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if explicit || fileExists(path) {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(&cfg, fileCfg); err != nil {
			return nil, fmt.Errorf("merge config file: %w", err)
		}
	}
	if err := mergo.Merge(&cfg, DefaultConfig()); err != nil {
		return nil, fmt.Errorf("merge defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks enumerated options and required values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

var flagNames = map[string]string{
	"Patterns": "manifest pattern",
	"OutDir":   "--out-dir",
	"Mode":     "--mode",
	"Edition":  "--edition",
	"Jobs":     "--jobs",
	"LogLevel": "--log-level",
	"Color":    "--color",
}

func describe(fe validator.FieldError) string {
	name := flagNames[fe.StructField()]
	if name == "" {
		name = fe.Field()
	}
	switch {
	case fe.Kind() == reflect.Slice:
		return "at least one " + name + " is required"
	case fe.Tag() == "required":
		return name + " is required"
	case fe.Tag() == "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case fe.Tag() == "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case fe.Tag() == "oneof":
		return fmt.Sprintf("%s must be one of %s, got %q", name, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
