package source

import (
	"errors"
	"fmt"
)

// Sentinel errors for failures of the byte stream itself. Both are fatal to
// a run; errors tied to a single game never use them.
var (
	ErrIO            = errors.New("i/o failure")
	ErrDecompression = errors.New("corrupt compressed stream")
)

// Stage names the part of the run whose byte stream failed.
type Stage string

const (
	StageSource     Stage = "source"
	StageDecompress Stage = "decompression"
	StageOutput     Stage = "output"
)

// Error is a fatal stream failure. errors.Is matches both the stage's
// sentinel (ErrIO or ErrDecompression) and the underlying cause.
type Error struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Path, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.sentinel(), e.Err}
}

func (e *Error) sentinel() error {
	if e.Stage == StageDecompress {
		return ErrDecompression
	}
	return ErrIO
}

// StageOf returns the failing stage recorded in err, or "" when err is not a
// stream failure.
func StageOf(err error) Stage {
	var se *Error
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
