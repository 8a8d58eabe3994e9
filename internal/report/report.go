// Package report prints the user-facing status line for every file and the final summary.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/aliskhannn/photo-watermark/internal/model"
)

// Printer writes status lines. Failures go to errOut, everything else to out.
// It is safe for concurrent use.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
}

// New creates a Printer.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

// OnStart prints how many candidates were found and where output goes.
func (p *Printer) OnStart(total int, outputDir string) {
	p.println(p.out, "found %d image file(s), writing to %s", total, outputDir)
}

// OnResult prints one line for a file outcome.
func (p *Printer) OnResult(res model.Result) {
	name := filepath.Base(res.Path)

	switch res.Status {
	case model.StatusRendered:
		p.println(p.out, "rendered: %s -> %s", name, res.OutputPath)
	case model.StatusSkipped:
		p.println(p.out, "skipped: %s (%s)", name, res.Reason)
	default:
		p.println(p.errOut, "failed: %s (%s)", name, res.Reason)
	}
}

// OnDone prints the summary line.
func (p *Printer) OnDone(sum model.Summary) {
	p.println(p.out, "done: %d found, %d rendered, %d skipped, %d failed",
		sum.Total, sum.Rendered, sum.Skipped, sum.Failed)
}

// Error prints a batch-level error line.
func (p *Printer) Error(err error) {
	p.println(p.errOut, "error: %v", err)
}

func (p *Printer) println(w io.Writer, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
