// Package timing turns a game's clock annotations into per-player elapsed
// thinking time.
package timing

import (
	"strings"
	"time"

	"github.com/notnil/chess"

	"github.com/backmassage/timespent/internal/pgn"
)

// Status classifies how a game's totals were obtained.
type Status string

const (
	StatusComplete    Status = "complete"
	StatusNoClockData Status = "no-clock-data"
	StatusAbandoned   Status = "abandoned"
)

// Record is the per-game output row. It is immutable once built.
type Record struct {
	White     string
	Black     string
	WhiteTime time.Duration
	BlackTime time.Duration
	Plies     int
	Result    chess.Outcome
	Status    Status

	// Supplemental columns, written only in extended output.
	TimeControl string
	Speed       Speed
	Link        string
}

// playerClock accumulates one side's elapsed time.
type playerClock struct {
	prev    time.Duration
	total   time.Duration
	clocked int
}

// observe advances the clock by one ply. The increment is credited on every
// ply, so plies without an annotation carry their increment forward to the
// next annotated one. Negative deltas (clock granularity, time bonuses) are
// clamped to zero.
func (p *playerClock) observe(ply pgn.Ply, inc time.Duration) {
	p.prev += inc
	if !ply.HasClock {
		return
	}
	if d := p.prev - ply.Clock; d > 0 {
		p.total += d
	}
	p.prev = ply.Clock
	p.clocked++
}

// Aggregate builds the Record for g from its plies. The returned Record is
// always usable; a non-nil error is ErrMalformedTimeControl, in which case
// the record is already demoted to no-clock-data.
func Aggregate(g *pgn.Game, plies []pgn.Ply) (Record, error) {
	rec := Record{
		White:       g.White(),
		Black:       g.Black(),
		Plies:       len(plies),
		Result:      result(g),
		TimeControl: g.TimeControl(),
		Link:        g.Site(),
	}

	tc, err := ParseTimeControl(g.TimeControl())
	if err != nil {
		rec.Status = StatusNoClockData
		return rec, err
	}
	rec.TimeControl = tc.String()
	rec.Speed = tc.Speed()

	white := playerClock{prev: tc.Base}
	black := playerClock{prev: tc.Base}
	for _, ply := range plies {
		if ply.Side == chess.White {
			white.observe(ply, tc.Increment)
		} else {
			black.observe(ply, tc.Increment)
		}
	}
	rec.WhiteTime = white.total
	rec.BlackTime = black.total

	switch {
	case white.clocked == 0 || black.clocked == 0:
		rec.Status = StatusNoClockData
	case !plies[len(plies)-1].HasClock:
		rec.Status = StatusAbandoned
	default:
		// Includes a flag fall: final clock at zero with a time-forfeit
		// termination is an ordinary finish.
		rec.Status = StatusComplete
	}
	return rec, nil
}

// result prefers the Result tag, then the move text's termination marker.
func result(g *pgn.Game) chess.Outcome {
	if o, ok := pgn.ParseOutcome(g.Get("Result")); ok {
		return o
	}
	if o, ok := pgn.TerminationMarker(g.MoveText); ok {
		return o
	}
	return chess.NoOutcome
}

// IsTimeForfeit reports whether g ended on time.
func IsTimeForfeit(g *pgn.Game) bool {
	return strings.EqualFold(strings.TrimSpace(g.Termination()), "Time forfeit")
}
