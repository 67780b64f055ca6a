package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// progressLogger prints short progress lines and warnings to stderr.
// Warnings are printed even in quiet mode.
type progressLogger struct {
	mu    sync.Mutex
	out   io.Writer
	quiet bool

	lastBucket int
}

func newProgressLogger(out io.Writer, quiet bool) *progressLogger {
	if out == nil {
		out = os.Stderr
	}
	return &progressLogger{out: out, quiet: quiet, lastBucket: -1}
}

// Step reports a completed or started step.
func (l *progressLogger) Step(format string, args ...interface{}) {
	if l.quiet {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// Warn reports a non-fatal problem.
func (l *progressLogger) Warn(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", color.YellowString("warning:"), fmt.Sprintf(format, args...))
}

// Progress reports diff computation in 10% steps.
func (l *progressLogger) Progress(done, total int) {
	if l.quiet || total == 0 {
		return
	}
	pct := done * 100 / total
	l.mu.Lock()
	defer l.mu.Unlock()
	bucket := pct / 10
	if bucket == l.lastBucket && done != total {
		return
	}
	l.lastBucket = bucket
	fmt.Fprintf(l.out, "  diffs %d/%d (%d%%)\n", done, total, pct)
}
