package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/seitarof/derive-gen/internal/generator"
)

func BenchmarkRunnerRun_EndToEnd(b *testing.B) {
	var out bytes.Buffer
	runner := newIntegrationRunner(&out, &bytes.Buffer{})

	cfg := DefaultConfig()
	cfg.Patterns = []string{filepath.Join("..", "..", "testdata", "**", "*.derive.yaml")}
	cfg.Mode = generator.ModeStdout

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out.Reset()
		if err := runner.Run(context.Background(), cfg); err != nil {
			b.Fatal(err)
		}
	}
}
