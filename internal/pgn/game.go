// Package pgn splits a PGN byte stream into game units and recovers the
// per-ply clock annotations of each game's move text.
//
// Only the structure needed for clock extraction is parsed: tag pairs, move
// tokens, comments, and termination markers. Move legality is never checked.
package pgn

import (
	"strings"
	"time"

	"github.com/notnil/chess"
)

// Tag is one `[Key "Value"]` pair of a game's metadata block.
type Tag struct {
	Key   string
	Value string
}

// Game is one unit of the archive: its tag pairs in file order and the raw
// move text that followed them.
type Game struct {
	Index    int64 // 1-based position of the unit in the archive.
	Tags     []Tag
	MoveText string
}

// Tag returns the value of the first tag named key.
func (g *Game) Tag(key string) (string, bool) {
	for _, t := range g.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// Get returns the value of tag key, or "" when absent.
func (g *Game) Get(key string) string {
	v, _ := g.Tag(key)
	return v
}

func (g *Game) White() string       { return g.Get("White") }
func (g *Game) Black() string       { return g.Get("Black") }
func (g *Game) TimeControl() string { return g.Get("TimeControl") }
func (g *Game) Termination() string { return g.Get("Termination") }
func (g *Game) Site() string        { return g.Get("Site") }

// Ply is one half-move. Clock is the mover's remaining time right after the
// move and is only meaningful when HasClock is set.
type Ply struct {
	Side       chess.Color
	MoveNumber int
	SAN        string
	Clock      time.Duration
	HasClock   bool
}

// ParseOutcome maps a PGN result string to an outcome.
func ParseOutcome(s string) (chess.Outcome, bool) {
	switch o := chess.Outcome(strings.TrimSpace(s)); o {
	case chess.WhiteWon, chess.BlackWon, chess.Draw, chess.NoOutcome:
		return o, true
	}
	return chess.NoOutcome, false
}

// TerminationMarker returns the game termination marker that ends movetext,
// if any.
func TerminationMarker(movetext string) (chess.Outcome, bool) {
	end := len(movetext)
	for end > 0 && isSpace(movetext[end-1]) {
		end--
	}
	start := end
	for start > 0 && !isSpace(movetext[start-1]) && !isDelimiter(movetext[start-1]) {
		start--
	}
	if start == end {
		return chess.NoOutcome, false
	}
	return ParseOutcome(movetext[start:end])
}
