package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/seitarof/derive-gen/internal/diag"
)

// Reporter prints diagnostics for the user.
type Reporter interface {
	Report(d *diag.Diagnostic)
	Count() int
}

type reporterImpl struct {
	mu       sync.Mutex
	out      io.Writer
	location *color.Color
	severity *color.Color
	count    int
}

// NewReporter creates a reporter writing `<file>:<line>:<col>: error: <msg>`
// lines to out.
func NewReporter(out io.Writer, colored bool) Reporter {
	r := &reporterImpl{
		out:      out,
		location: color.New(color.Bold),
		severity: color.New(color.FgRed, color.Bold),
	}
	if colored {
		r.location.EnableColor()
		r.severity.EnableColor()
	} else {
		r.location.DisableColor()
		r.severity.DisableColor()
	}
	return r
}

func (r *reporterImpl) Report(d *diag.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	fmt.Fprintf(r.out, "%s: %s %s\n",
		r.location.Sprint(d.Pos.String()),
		r.severity.Sprint("error:"),
		d.Message)
}

func (r *reporterImpl) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// UseColor resolves the --color setting for w.
func UseColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
