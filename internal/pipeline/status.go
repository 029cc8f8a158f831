package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/backmassage/timespent/internal/display"
	"github.com/backmassage/timespent/internal/progress"
	"github.com/backmassage/timespent/internal/term"
)

const statusWidth = 80

// statusLine is the live progress counter. On a TTY it rewrites a single
// \r-terminated line; otherwise it is a no-op and progress goes to the
// debug log instead.
type statusLine struct {
	w     io.Writer
	tty   bool
	shown bool
}

func (s *statusLine) print(snap progress.Snapshot, bytesRead int64) {
	if !s.tty {
		return
	}
	fmt.Fprintf(s.w, "\r%s", pad(formatStatus(snap, bytesRead)))
	s.shown = true
}

// clear erases the inline status so the next log line starts clean.
func (s *statusLine) clear() {
	if !s.tty || !s.shown {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", statusWidth))
	s.shown = false
}

func formatStatus(snap progress.Snapshot, bytesRead int64) string {
	status := fmt.Sprintf("  Games %s/%s %s | %s",
		display.FormatCount(snap.Seen),
		display.FormatCount(snap.Total),
		term.Paint(term.Cyan, display.FormatPercent(snap.Fraction)),
		display.FormatRate(snap.Rate))
	if snap.Remaining > 0 {
		status += " | ETA " + display.FormatDuration(snap.Remaining)
	}
	return status + " | " + display.FormatBytes(bytesRead) + " read"
}

// pad extends s to statusWidth so a shorter line fully overwrites a longer
// previous one.
func pad(s string) string {
	if len(s) < statusWidth {
		s += strings.Repeat(" ", statusWidth-len(s))
	}
	return s
}
