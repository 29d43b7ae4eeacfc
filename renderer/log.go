package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/marketwatch"
)

// LogMarkdown renders the full event log, corrections included. Superseded
// events stay visible, struck through, so the history reads as it was lived.
func LogMarkdown(ledger *marketwatch.Ledger) string {
	r := &logRenderer{Builder: &strings.Builder{}}

	r.Printf("## Event Log\n\n")
	if ledger.Len() == 0 {
		r.Printf("No events recorded.\n")
		return r.String()
	}

	r.Printf("| ID | Date | Event | Note |\n")
	r.Printf("|:---|:---|:---|:---|\n")
	for ev := range ledger.All() {
		line := Event(ev)
		note := ev.Rationale()
		if by, ok := ledger.SupersededBy(ev.ID()); ok {
			line = fmt.Sprintf("~~%s~~ superseded by %s", line, by)
		}
		r.Printf("| %s | %s | %s | %s |\n", ev.ID(), ev.When(), line, note)
	}
	return r.String()
}

// logRenderer formats the output of the log generator into a markdown string.
type logRenderer struct {
	*strings.Builder
}

// Printf formats according to a format specifier and writes to the renderer's buffer.
func (r *logRenderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}
