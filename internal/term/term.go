// Package term holds the run's color state and terminal detection.
//
// The bracketed log labels, the banner and the in-place progress line all
// read the color variables below. [Configure] sets them once from the
// --color setting; with colors off every variable is "", so [Paint] and
// plain concatenation print text unchanged.
package term

import (
	"os"
	"strings"

	"github.com/backmassage/timespent/internal/config"
)

// ANSI color codes. Empty when colors are disabled.
var (
	Red     = "" // Errors.
	Green   = "" // Success lines.
	Yellow  = "" // Warnings, skipped units.
	Blue    = "" // Info labels.
	Cyan    = "" // Debug labels, progress percentage.
	Magenta = "" // Banner.
	NC      = "" // Reset sequence.
)

var palette = []struct {
	dst  *string
	code string
}{
	{&Red, "\033[1;91m"},
	{&Green, "\033[1;92m"},
	{&Yellow, "\033[1;93m"},
	{&Blue, "\033[1;94m"},
	{&Cyan, "\033[1;96m"},
	{&Magenta, "\033[1;95m"},
	{&NC, "\033[0m"},
}

// Configure resolves mode against stdout and the environment and sets the
// color variables. Called once from [logging.NewLogger].
func Configure(mode config.ColorMode) {
	apply(resolve(mode, IsTerminal(os.Stdout), os.Getenv))
}

func apply(on bool) {
	for _, p := range palette {
		if on {
			*p.dst = p.code
		} else {
			*p.dst = ""
		}
	}
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return NC != "" }

// Paint wraps s in color when colors are enabled.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + NC
}

// resolve decides whether to color output. Auto mode needs a TTY, no
// NO_COLOR (https://no-color.org) and a TERM other than "dumb".
func resolve(mode config.ColorMode, tty bool, getenv func(string) string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return tty &&
			getenv("NO_COLOR") == "" &&
			strings.ToLower(getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
// The pipeline only draws its \r progress line when stdout is one.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
