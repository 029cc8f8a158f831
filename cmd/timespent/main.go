// Command timespent is the CLI entrypoint for the time-spent extractor.
//
// It reads a (possibly compressed) PGN archive of clocked games and writes
// one CSV row per game with the time each player spent, or with --check
// diagnoses the archive and exits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/timespent/internal/check"
	"github.com/backmassage/timespent/internal/config"
	"github.com/backmassage/timespent/internal/display"
	"github.com/backmassage/timespent/internal/logging"
	"github.com/backmassage/timespent/internal/pipeline"
	"github.com/backmassage/timespent/internal/source"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.DefaultConfig()
	if err := config.LoadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "timespent: %v\n", err)
		return 1
	}
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "timespent: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "timespent: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "timespent: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available. All output goes through log from here on.
	display.PrintBanner(os.Stdout)

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	// The archive must exist and must not be the output file.
	archiveAbs, err := absPath(cfg.ArchivePath)
	if err != nil {
		log.Error("Archive not found: %s", cfg.ArchivePath)
		return 1
	}
	outputAbs, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputPath)
		return 1
	}
	if resolved, err := filepath.EvalSymlinks(outputAbs); err == nil {
		outputAbs = resolved
	}
	if err := cfg.ValidatePaths(archiveAbs, outputAbs); err != nil {
		log.Error("%v", err)
		return 1
	}

	log.Info("=== timespent v%s (%s) ===", version, commit)

	// Phase 3: Signal handling. Cancel the context on SIGINT/SIGTERM so the
	// pipeline stops between games with only whole rows written.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, finishing current game…")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Phase 4: Run pipeline (open → segment → extract → aggregate → write).
	if _, err := pipeline.Run(ctx, &cfg, log); err != nil {
		reportFailure(log, err)
		return 1
	}
	return 0
}

// reportFailure names the stage whose byte stream failed.
func reportFailure(log *logging.Logger, err error) {
	switch source.StageOf(err) {
	case source.StageSource:
		log.Error("Cannot read archive: %v", err)
	case source.StageDecompress:
		log.Error("Archive is corrupt: %v", err)
	case source.StageOutput:
		log.Error("Cannot write output: %v", err)
		log.Error("Rows written so far are complete; the file ends early")
	default:
		log.Error("%v", err)
	}
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of archive and output paths.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
