package generator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type whitespaceFormatter struct{}

type rustfmtFormatter struct {
	path    string
	edition string
	timeout time.Duration
}

// NewWhitespaceFormatter creates the default formatter. It only normalizes
// whitespace, so output is stable without external tools.
func NewWhitespaceFormatter() Formatter {
	return whitespaceFormatter{}
}

// NewRustfmtFormatter creates a formatter that pipes source through rustfmt.
// An empty path looks rustfmt up on PATH.
func NewRustfmtFormatter(path, edition string) Formatter {
	if path == "" {
		path = "rustfmt"
	}
	if edition == "" {
		edition = "2021"
	}
	return &rustfmtFormatter{path: path, edition: edition, timeout: 30 * time.Second}
}

func (whitespaceFormatter) Format(_ string, src []byte) ([]byte, error) {
	return Normalize(src), nil
}

func (f *rustfmtFormatter) Format(filename string, src []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.path, "--emit", "stdout", "--edition", f.edition)
	cmd.Stdin = bytes.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("rustfmt %s: %w", filename, err)
		}
		return nil, fmt.Errorf("rustfmt %s: %w: %s", filename, err, msg)
	}
	return Normalize(stdout.Bytes()), nil
}

// Normalize trims trailing whitespace, drops leading blank lines, collapses
// runs of blank lines into one and ends the text with exactly one newline.
func Normalize(src []byte) []byte {
	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return []byte(strings.Join(out, "\n") + "\n")
}
