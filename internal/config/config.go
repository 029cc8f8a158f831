// Package config holds runtime configuration: defaults, environment overlay,
// CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultOutputFile is the CSV written when neither --output nor
// TIMESPENT_OUTPUT is given.
const DefaultOutputFile = "time-spent.csv"

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [LoadEnv], then mutated by [ParseFlags] before being passed
// (by pointer) to packages that need it.
type Config struct {
	// Input (set from positional args).
	ArchivePath   string
	ExpectedGames int64 // Used only for progress estimation.

	// Output.
	OutputPath string // Default: "time-spent.csv".
	Extended   bool   // Append time_control, speed and link columns.

	// Progress.
	ProgressEvery int64 // Status refresh interval in games. Default: 10000.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [LoadEnv] and [ParseFlags] apply overrides.
func DefaultConfig() Config {
	return Config{
		OutputPath:    DefaultOutputFile,
		Extended:      false,
		ProgressEvery: 10000,
		Verbose:       false,
		ColorMode:     ColorAuto,
		CheckOnly:     false,
	}
}

// Validate checks enum fields and required inputs. In CheckOnly mode the
// expected game count is not required.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.ProgressEvery <= 0 {
		return fmt.Errorf("progress interval must be positive (got %d)", c.ProgressEvery)
	}

	if strings.TrimSpace(c.ArchivePath) == "" {
		return errors.New("need an archive path")
	}
	if c.CheckOnly {
		return nil
	}
	if c.ExpectedGames <= 0 {
		return fmt.Errorf("expected game count must be positive (got %d)", c.ExpectedGames)
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return errors.New("output path must not be empty")
	}
	return nil
}

// ValidatePaths ensures the output file does not overwrite the archive being
// read. Both arguments must be absolute, cleaned paths.
func (c *Config) ValidatePaths(archiveAbs, outputAbs string) error {
	if filepath.Clean(archiveAbs) == filepath.Clean(outputAbs) {
		return errors.New("output file must not be the input archive")
	}
	return nil
}
