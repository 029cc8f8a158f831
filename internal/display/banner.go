package display

import (
	"fmt"
	"io"

	"github.com/backmassage/timespent/internal/term"
)

const banner = ` _   _                                         _
| |_(_)_ __ ___   ___  ___ _ __   ___ _ __ | |_
| __| | '_ ` + "`" + ` _ \ / _ \/ __| '_ \ / _ \ '_ \| __|
| |_| | | | | | |  __/\__ \ |_) |  __/ | | | |_
 \__|_|_| |_| |_|\___||___/ .__/ \___|_| |_|\__|
                          |_|
`

// PrintBanner writes the ASCII art banner to w, in magenta when colors are
// enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Paint(term.Magenta, banner))
	if term.Enabled() {
		fmt.Fprintln(w)
	}
}
