package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/backmassage/timespent/internal/config"
	"github.com/backmassage/timespent/internal/display"
	"github.com/backmassage/timespent/internal/logging"
	"github.com/backmassage/timespent/internal/output"
	"github.com/backmassage/timespent/internal/pgn"
	"github.com/backmassage/timespent/internal/progress"
	"github.com/backmassage/timespent/internal/source"
	"github.com/backmassage/timespent/internal/term"
	"github.com/backmassage/timespent/internal/timing"
)

// Run is the top-level entry point. It streams cfg.ArchivePath into
// cfg.OutputPath and returns the run's stats. A non-nil error is fatal and
// carries a *source.Error naming the failing stage; the stats still
// describe everything written before it.
//
// A cancelled ctx ends the run cleanly between two games with
// RunStats.Interrupted set and a nil error.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (RunStats, error) {
	status := &statusLine{w: os.Stdout, tty: term.IsTerminal(os.Stdout)}
	return run(ctx, cfg, log, status, nil)
}

// run holds all per-run state in locals so concurrent runs on different
// paths never share anything but the logger.
func run(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	status *statusLine,
	now func() time.Time,
) (RunStats, error) {
	var stats RunStats
	reporter := progress.New(cfg.ExpectedGames, now)

	src, err := source.Open(cfg.ArchivePath)
	if err != nil {
		return stats, err
	}
	defer src.Close()
	stats.Format = src.Format()
	stats.ArchiveSize = src.Size()

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return stats, &source.Error{Stage: source.StageOutput, Path: cfg.OutputPath, Err: err}
	}
	w := output.NewWriter(f, output.Options{Extended: cfg.Extended, Path: cfg.OutputPath})

	logRunHeader(cfg, log, src)

	seg := pgn.NewSegmenter(src)
	seg.OnDrop(func(g *pgn.Game, err error) {
		status.clear()
		log.With("game", g.Index).Debug("Skipped: %v", err)
	})

	err = extract(ctx, cfg, log, seg, w, reporter, status, src, &stats)
	status.clear()
	// The header goes out even when the stream failed before the first game.
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if cerr := f.Close(); cerr != nil && err == nil {
		err = &source.Error{Stage: source.StageOutput, Path: cfg.OutputPath, Err: cerr}
	}

	stats.Seen = seg.Seen()
	stats.Dropped = seg.Dropped()
	stats.BytesRead = src.BytesRead()
	stats.Elapsed = reporter.Snapshot(stats.Seen).Elapsed
	if err != nil {
		return stats, err
	}

	logSummary(log, &stats)
	return stats, nil
}

// extract is the per-game loop: segment, extract clocks, aggregate, write.
func extract(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	seg *pgn.Segmenter,
	w *output.Writer,
	reporter *progress.Reporter,
	status *statusLine,
	src *source.Stream,
	stats *RunStats,
) error {
	for {
		if ctx.Err() != nil {
			stats.Interrupted = true
			status.clear()
			log.Warn("Interrupted after %s games", display.FormatCount(seg.Seen()))
			return nil
		}
		if !seg.Next() {
			return seg.Err()
		}

		g := seg.Game()
		rec, err := timing.Aggregate(g, pgn.ExtractPlies(g.MoveText))
		if err != nil {
			stats.MalformedTimeControl++
			log.With("game", g.Index).Debug("%v", err)
		}
		if timing.IsTimeForfeit(g) {
			stats.TimeForfeits++
		}

		if err := w.Write(rec); err != nil {
			return err
		}
		stats.record(rec)

		if stats.Written%cfg.ProgressEvery == 0 {
			snap := reporter.Snapshot(seg.Seen())
			if status.tty {
				status.print(snap, src.BytesRead())
			} else {
				log.Debug("Progress: %s", formatStatus(snap, src.BytesRead()))
			}
		}
	}
}

// --- Logging helpers ---

func logRunHeader(cfg *config.Config, log *logging.Logger, src *source.Stream) {
	log.Info("Archive: %s (%s, %s)", src.Path(), src.Format(), display.FormatBytes(src.Size()))
	log.Info("Output:  %s", cfg.OutputPath)
	log.Info("Expected games: %s", display.FormatCount(cfg.ExpectedGames))
	if cfg.Extended {
		log.Info("Columns: extended (time control, speed, link)")
	}
	log.Debug("Run id: %s", log.RunID())
}

func logSummary(log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	if stats.Interrupted {
		log.Warn("Stopped early: %s games written", display.FormatCount(stats.Written))
	} else {
		log.Success("Done: %s games written", display.FormatCount(stats.Written))
	}
	log.Info("Summary report:")
	log.Info("  Complete:      %s", display.FormatCount(stats.Complete))
	log.Info("  Abandoned:     %s", display.FormatCount(stats.Abandoned))
	log.Info("  No clock data: %s", display.FormatCount(stats.NoClockData))
	if stats.MalformedTimeControl > 0 {
		log.Info("    of which without a usable time control: %s", display.FormatCount(stats.MalformedTimeControl))
	}
	log.Info("  Time forfeits: %s", display.FormatCount(stats.TimeForfeits))
	if stats.Dropped > 0 {
		log.Warn("  Truncated units skipped: %s", display.FormatCount(stats.Dropped))
	}
	log.Info("  Read %s in %s (%s)",
		display.FormatBytes(stats.BytesRead),
		display.FormatDuration(stats.Elapsed),
		display.FormatRate(stats.Throughput()))
}
