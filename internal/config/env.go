package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadEnv. Flags take precedence over these.
const (
	EnvOutput        = "TIMESPENT_OUTPUT"
	EnvLogFile       = "TIMESPENT_LOG_FILE"
	EnvProgressEvery = "TIMESPENT_PROGRESS_EVERY"
	EnvNoColor       = "NO_COLOR"
)

// LoadEnv overlays environment settings onto cfg. Files are loaded with
// godotenv first (existing variables are never overwritten); with no files
// given, a ".env" in the working directory is used when present. A missing
// default .env is not an error; a named file that cannot be read is.
func LoadEnv(cfg *Config, files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return fmt.Errorf("load env: %w", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvOutput)); v != "" {
		cfg.OutputPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProgressEvery)); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s must be a whole number (got %q)", EnvProgressEvery, v)
		}
		cfg.ProgressEvery = n
	}
	// https://no-color.org: any non-empty value disables color.
	if os.Getenv(EnvNoColor) != "" {
		cfg.ColorMode = ColorNever
	}
	return nil
}
