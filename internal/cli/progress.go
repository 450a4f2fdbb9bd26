package cli

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type progressReporter struct {
	enabled bool
	label   string
	start   time.Time
	spinner int
	lastLen int
}

func newProgressReporter(label string, asJSON bool) *progressReporter {
	stat, err := os.Stderr.Stat()
	enabled := err == nil && (stat.Mode()&os.ModeCharDevice) != 0 && !asJSON
	return &progressReporter{
		enabled: enabled,
		label:   label,
		start:   time.Now(),
	}
}

// Update matches pipeline.Options.Progress.
func (r *progressReporter) Update(done, total int, name string) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	if len(name) > 88 {
		name = "..." + name[len(name)-85:]
	}
	r.printStatus(fmt.Sprintf("%s %s %d/%d %s", frame, r.label, done, total, name))
}

func (r *progressReporter) Done(count int) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.printStatus(fmt.Sprintf("%s complete (%d symbols in %s)", r.label, count, elapsed))
	fmt.Fprintln(os.Stderr)
}

func (r *progressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(os.Stderr, "\r%s", status)
}
