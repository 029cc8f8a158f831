// Package output serializes per-game records as CSV rows.
package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/backmassage/timespent/internal/source"
	"github.com/backmassage/timespent/internal/timing"
)

// Header is the fixed column order of every output file.
var Header = []string{
	"player_one", "player_two",
	"time_spent_one", "time_spent_two",
	"ply_count", "result", "status",
}

// ExtendedHeader is appended to Header when Options.Extended is set.
var ExtendedHeader = []string{"time_control", "speed", "link"}

// Options controls the written columns.
type Options struct {
	Extended bool
	Path     string // Used only to label errors.
}

// Writer appends one CSV row per record. Every row is flushed before Write
// returns, so the sink never holds a partial row when a later write fails.
type Writer struct {
	csv         *csv.Writer
	opts        Options
	wroteHeader bool
	rows        int64
	err         error
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer, opts Options) *Writer {
	return &Writer{csv: csv.NewWriter(w), opts: opts}
}

// Write emits the header (first call only) and rec. Errors are
// *source.Error with StageOutput; after one, every call fails.
func (w *Writer) Write(rec timing.Record) error {
	if err := w.header(); err != nil {
		return err
	}
	if err := w.csv.Write(w.row(rec)); err != nil {
		return w.fail(err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return w.fail(err)
	}
	w.rows++
	return nil
}

// Flush makes sure the header exists even for an archive without games.
func (w *Writer) Flush() error {
	if err := w.header(); err != nil {
		return err
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return w.fail(err)
	}
	return nil
}

// Rows is the number of data rows written.
func (w *Writer) Rows() int64 { return w.rows }

func (w *Writer) header() error {
	if w.err != nil {
		return w.err
	}
	if w.wroteHeader {
		return nil
	}
	cols := Header
	if w.opts.Extended {
		cols = append(append([]string{}, Header...), ExtendedHeader...)
	}
	if err := w.csv.Write(cols); err != nil {
		return w.fail(err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return w.fail(err)
	}
	w.wroteHeader = true
	return nil
}

func (w *Writer) row(rec timing.Record) []string {
	row := []string{
		rec.White,
		rec.Black,
		seconds(rec.WhiteTime),
		seconds(rec.BlackTime),
		strconv.Itoa(rec.Plies),
		string(rec.Result),
		string(rec.Status),
	}
	if w.opts.Extended {
		row = append(row, rec.TimeControl, string(rec.Speed), rec.Link)
	}
	return row
}

func (w *Writer) fail(err error) error {
	w.err = &source.Error{Stage: source.StageOutput, Path: w.opts.Path, Err: err}
	return w.err
}

// seconds renders d as whole seconds, truncating any fraction.
func seconds(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Second), 10)
}
