// Package check provides archive diagnostics (--check mode): it reports the
// detected compression envelope and decodes the first game as a smoke test,
// without writing any output.
package check

import (
	"errors"

	"github.com/backmassage/timespent/internal/config"
	"github.com/backmassage/timespent/internal/display"
	"github.com/backmassage/timespent/internal/pgn"
	"github.com/backmassage/timespent/internal/source"
	"github.com/backmassage/timespent/internal/timing"
)

// ErrNoGames is returned by Probe when the archive holds no complete game.
var ErrNoGames = errors.New("archive contains no complete game")

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// Report is what Probe learned about an archive.
type Report struct {
	Format  source.Format
	Size    int64
	Skipped int64 // Truncated units before the first complete game.
	Game    *pgn.Game
	Plies   int
	Clocked int
	Record  timing.Record
	TCErr   error // Non-nil when the game's time control is unusable.
}

// Probe opens path, detects its envelope and decodes the first complete
// game. Source and decompression failures are *source.Error values.
func Probe(path string) (*Report, error) {
	src, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	rep := &Report{Format: src.Format(), Size: src.Size()}
	seg := pgn.NewSegmenter(src)
	if !seg.Next() {
		if err := seg.Err(); err != nil {
			return rep, err
		}
		rep.Skipped = seg.Dropped()
		return rep, ErrNoGames
	}

	rep.Game = seg.Game()
	rep.Skipped = seg.Dropped()
	plies := pgn.ExtractPlies(rep.Game.MoveText)
	rep.Plies = len(plies)
	for _, p := range plies {
		if p.HasClock {
			rep.Clocked++
		}
	}
	rep.Record, rep.TCErr = timing.Aggregate(rep.Game, plies)
	return rep, nil
}

// RunCheck runs the interactive --check flow and reports whether the archive
// looks usable. It is informational only and writes no output file.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== Archive Check ===")

	rep, err := Probe(cfg.ArchivePath)
	if rep != nil {
		log.Info("Envelope: %s (%s)", rep.Format, display.FormatBytes(rep.Size))
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrNoGames):
			log.Error("No complete game found in %s", cfg.ArchivePath)
		case errors.Is(err, source.ErrDecompression):
			log.Error("Archive is not a valid compressed stream: %v", err)
		default:
			log.Error("%v", err)
		}
		return false
	}

	if rep.Skipped > 0 {
		log.Warn("Skipped %d truncated unit(s) before the first game", rep.Skipped)
	}
	g := rep.Game
	log.Success("First game decoded: %s vs %s", rep.Record.White, rep.Record.Black)
	for _, tag := range g.Tags {
		log.Debug("  [%s %q]", tag.Key, tag.Value)
	}
	log.Info("  Time control: %s", g.TimeControl())
	if rep.TCErr != nil {
		log.Warn("  %v", rep.TCErr)
	} else {
		log.Info("  Speed: %s", rep.Record.Speed)
	}
	log.Info("  Plies: %d (%d with clock)", rep.Plies, rep.Clocked)
	log.Info("  Result: %s, status: %s", rep.Record.Result, rep.Record.Status)

	if cfg.ExpectedGames > 0 {
		log.Info("  Expected games: %s", display.FormatCount(cfg.ExpectedGames))
	}
	if rep.Clocked == 0 {
		log.Warn("First game carries no clock annotations; time spent will be zero")
	}
	return true
}
