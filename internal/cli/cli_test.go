package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_Defaults(t *testing.T) {
	cfg, err := ParseArgs([]string{"manifests/*.derive.yaml"})
	require.NoError(t, err)

	assert.Equal(t, []string{"manifests/*.derive.yaml"}, cfg.Patterns)
	assert.Equal(t, ".", cfg.OutDir)
	assert.Equal(t, "file", cfg.Mode)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.Color)
	assert.False(t, cfg.Rustfmt)
	assert.Empty(t, cfg.Edition)
}

func TestParseArgs_Flags(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"-m", "txtar",
		"--archive", "out.txtar",
		"-d", "builder, debug",
		"-t", "Command*,Field",
		"--skip", "Internal*",
		"-j", "2",
		"--rustfmt",
		"--edition", "2024",
		"--log-level", "debug",
		"--color", "never",
		"a/**/*.yaml", "b.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a/**/*.yaml", "b.yaml"}, cfg.Patterns)
	assert.Equal(t, "txtar", cfg.OutputMode())
	assert.Equal(t, "out.txtar", cfg.ArchivePath())
	assert.Equal(t, []string{"builder", "debug"}, cfg.Derives)
	assert.Equal(t, []string{"Command*", "Field"}, cfg.Types)
	assert.Equal(t, []string{"Internal*"}, cfg.Skip)
	assert.Equal(t, 2, cfg.Jobs)
	assert.True(t, cfg.Rustfmt)
	assert.Equal(t, "2024", cfg.Edition)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "never", cfg.Color)
}

func TestParseArgs_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "no manifests",
			args: nil,
			want: "invalid configuration: at least one manifest pattern is required",
		},
		{
			name: "bad mode",
			args: []string{"-m", "zip", "a.yaml"},
			want: `invalid configuration: --mode must be one of file, stdout, txtar, got "zip"`,
		},
		{
			name: "too many jobs",
			args: []string{"-j", "100", "a.yaml"},
			want: "invalid configuration: --jobs must be at most 64",
		},
		{
			name: "bad edition and color",
			args: []string{"--edition", "2017", "--color", "rainbow", "a.yaml"},
			want: `invalid configuration: --edition must be one of 2015, 2018, 2021, 2024, got "2017"; --color must be one of auto, always, never, got "rainbow"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestParseArgs_UnknownFlag(t *testing.T) {
	_, err := ParseArgs([]string{"--src-type", "User"})
	require.Error(t, err)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "derive-gen.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseArgs_ConfigFileLayering(t *testing.T) {
	path := writeConfig(t, `
manifests = ["defs/**/*.derive.yaml"]
out_dir = "gen"
mode = "stdout"
jobs = 8
rustfmt = true
derive = ["builder"]
`)

	cfg, err := ParseArgs([]string{"-c", path, "-j", "2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"defs/**/*.derive.yaml"}, cfg.Patterns)
	assert.Equal(t, "gen", cfg.OutDir)
	assert.Equal(t, "stdout", cfg.Mode)
	assert.Equal(t, 2, cfg.Jobs, "flags win over the file")
	assert.True(t, cfg.Rustfmt)
	assert.Equal(t, []string{"builder"}, cfg.Derives)
	assert.Equal(t, "info", cfg.LogLevel, "defaults fill the rest")

	cfg, err = ParseArgs([]string{"-c", path, "other.yaml"})
	require.NoError(t, err)
	assert.Equal(t, []string{"other.yaml"}, cfg.Patterns)
}

func TestParseArgs_ConfigFileErrors(t *testing.T) {
	path := writeConfig(t, "manifests = [\"a.yaml\"]\nformat = \"rust\"\n")
	_, err := ParseArgs([]string{"-c", path})
	assert.EqualError(t, err, "config "+path+": unknown keys: format")

	_, err = ParseArgs([]string{"-c", filepath.Join(t.TempDir(), "missing.toml"), "a.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.toml")

	bad := writeConfig(t, "mode = \n")
	_, err = ParseArgs([]string{"-c", bad, "a.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config "+bad)
}

func TestNewRootCommand_Version(t *testing.T) {
	called := false
	cmd := NewRootCommand("1.2.3", func(*cobra.Command, *Config) error {
		called = true
		return nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "1.2.3\n", out.String())
	assert.False(t, called)
}

func TestNewRootCommand_PassesResolvedConfig(t *testing.T) {
	var got *Config
	cmd := NewRootCommand("dev", func(_ *cobra.Command, cfg *Config) error {
		got = cfg
		return nil
	})
	cmd.SetArgs([]string{"-m", "stdout", "-d", "debug", "x.derive.yaml"})

	require.NoError(t, cmd.Execute())
	require.NotNil(t, got)
	assert.Equal(t, []string{"x.derive.yaml"}, got.Patterns)
	assert.Equal(t, "stdout", got.Mode)
	assert.Equal(t, []string{"debug"}, got.Derives)
	assert.Equal(t, 4, got.Jobs)
}

func TestNewRootCommand_ValidationError(t *testing.T) {
	cmd := NewRootCommand("dev", func(*cobra.Command, *Config) error {
		t.Fatal("run must not be called")
		return nil
	})
	cmd.SetArgs([]string{})
	assert.EqualError(t, cmd.Execute(), "invalid configuration: at least one manifest pattern is required")
}
