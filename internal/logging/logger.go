// Package logging provides the leveled, optionally colored run logger.
//
// Console output goes through a zerolog ConsoleWriter (stdout, errors on
// stderr); when a log file is configured every line is also appended to it
// as JSON, tagged with the run id.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/backmassage/timespent/internal/config"
	"github.com/backmassage/timespent/internal/term"
)

const (
	consoleTimeFormat = "2006-01-02 15:04:05"
	levelSuccess      = "success"
)

// Logger provides leveled, optionally colored logging with optional file sink.
// Child loggers returned by With share the parent's sink and lock.
type Logger struct {
	s       *sink
	out     zerolog.Logger
	errOut  zerolog.Logger
	file    zerolog.Logger
	hasFile bool
	runID   string
}

type sink struct {
	mu   sync.Mutex
	file *os.File
}

// NewLogger configures terminal colors from cfg and optionally opens
// cfg.LogFile. Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	return newLogger(os.Stdout, os.Stderr, cfg)
}

func newLogger(stdout, stderr io.Writer, cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	l := &Logger{
		s:      &sink{},
		out:    zerolog.New(consoleWriter(stdout)).Level(level).With().Timestamp().Logger(),
		errOut: zerolog.New(consoleWriter(stderr)).Level(level).With().Timestamp().Logger(),
		runID:  uuid.NewString(),
	}

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.s.file = f
		l.hasFile = true
		l.file = zerolog.New(f).Level(zerolog.DebugLevel).With().
			Timestamp().
			Str("run_id", l.runID).
			Logger()
	}
	return l, nil
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:         w,
		NoColor:     !term.Enabled(),
		TimeFormat:  consoleTimeFormat,
		FormatLevel: formatLevel,
	}
}

// formatLevel renders levels as bracketed, colored labels.
func formatLevel(i interface{}) string {
	s, _ := i.(string)
	var color string
	switch s {
	case "info":
		color = term.Blue
	case levelSuccess:
		color = term.Green
	case "warn":
		color = term.Yellow
	case "error", "fatal", "panic":
		color = term.Red
	case "debug":
		color = term.Cyan
	}
	return term.Paint(color, "["+strings.ToUpper(s)+"]")
}

// RunID returns the identifier attached to every log file entry of this run.
func (l *Logger) RunID() string { return l.runID }

// With returns a child logger that adds key=value to every line.
func (l *Logger) With(key string, value interface{}) *Logger {
	child := *l
	child.out = l.out.With().Interface(key, value).Logger()
	child.errOut = l.errOut.With().Interface(key, value).Logger()
	if l.hasFile {
		child.file = l.file.With().Interface(key, value).Logger()
	}
	return &child
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.file != nil {
		err := l.s.file.Close()
		l.s.file = nil
		return err
	}
	return nil
}

func (l *Logger) emit(level zerolog.Level, label, text string) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	console := l.out
	if level == zerolog.ErrorLevel {
		console = l.errOut
	}
	event(console, level, label).Msg(text)
	if l.hasFile && l.s.file != nil {
		event(l.file, level, label).Msg(text)
	}
}

// event starts an entry at level. A non-empty label replaces zerolog's level
// name, which is how SUCCESS lines (not a zerolog level) are written.
func event(z zerolog.Logger, level zerolog.Level, label string) *zerolog.Event {
	if label == "" {
		return z.WithLevel(level)
	}
	if z.GetLevel() > level {
		return nil
	}
	return z.Log().Str(zerolog.LevelFieldName, label)
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(zerolog.InfoLevel, "", fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.emit(zerolog.InfoLevel, levelSuccess, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(zerolog.WarnLevel, "", fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(zerolog.ErrorLevel, "", fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan). Console output only appears with
// --verbose; the log file always receives it.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(zerolog.DebugLevel, "", fmt.Sprintf(format, args...))
}
