package pgn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrTruncatedGameUnit marks a unit cut off by the end of the stream. Such
// units are dropped and reported to the drop handler, never returned by the
// Segmenter.
var ErrTruncatedGameUnit = errors.New("truncated game unit")

type segState int

const (
	stIdle segState = iota
	stTags
	stMoves
)

// Segmenter is a forward-only iterator over the games of a PGN stream. It is
// used like bufio.Scanner:
//
//	seg := pgn.NewSegmenter(r)
//	for seg.Next() {
//		g := seg.Game()
//	}
//	if err := seg.Err(); err != nil { ... }
//
// Only the current game is held in memory. A Segmenter cannot be restarted.
type Segmenter struct {
	r       *bufio.Reader
	game    *Game
	err     error
	eof     bool
	pending string
	pushed  bool
	seen    int64
	dropped int64
	onDrop  func(g *Game, err error)
}

// NewSegmenter returns a Segmenter reading from r.
func NewSegmenter(r io.Reader) *Segmenter {
	return &Segmenter{r: bufio.NewReaderSize(r, 64*1024)}
}

// OnDrop registers fn to be called for every dropped unit. err wraps
// ErrTruncatedGameUnit.
func (s *Segmenter) OnDrop(fn func(g *Game, err error)) { s.onDrop = fn }

// Game returns the unit produced by the last successful call to Next.
func (s *Segmenter) Game() *Game { return s.game }

// Err returns the first read error, if any. End of stream is not an error.
func (s *Segmenter) Err() error { return s.err }

// Seen is the number of units started so far, whether yielded or dropped.
func (s *Segmenter) Seen() int64 { return s.seen }

// Dropped is the number of truncated units discarded so far.
func (s *Segmenter) Dropped() int64 { return s.dropped }

// Next advances to the next complete game. It returns false at end of
// stream or on a read error (see Err).
func (s *Segmenter) Next() bool {
	s.game = nil
	if s.err != nil {
		return false
	}

	var (
		g     *Game
		moves strings.Builder
		state = stIdle
	)
	for {
		line, ok := s.readLine()
		if !ok {
			if s.err != nil {
				return false
			}
			switch state {
			case stTags:
				s.drop(g, "metadata block without move text")
			case stMoves:
				g.MoveText = moves.String()
				if _, ok := TerminationMarker(g.MoveText); ok {
					s.game = g
					return true
				}
				s.drop(g, "move text ends without separator or result")
			}
			return false
		}

		text := strings.TrimSpace(line)
		if strings.HasPrefix(text, "%") {
			// Escape mechanism: the whole line is ignored.
			continue
		}

		switch state {
		case stIdle:
			if text == "" {
				continue
			}
			g = s.begin()
			if tag, ok := parseTag(text); ok {
				g.Tags = append(g.Tags, tag)
				state = stTags
			} else {
				moves.WriteString(text)
				state = stMoves
			}
		case stTags:
			if text == "" {
				continue
			}
			if tag, ok := parseTag(text); ok {
				g.Tags = append(g.Tags, tag)
				continue
			}
			if text[0] == '[' && !strings.HasPrefix(text, "[%") {
				// Malformed tag line inside the block.
				continue
			}
			moves.WriteString(text)
			state = stMoves
		case stMoves:
			if text == "" {
				g.MoveText = moves.String()
				s.game = g
				return true
			}
			if _, ok := parseTag(text); ok {
				// Next game started without a separating blank line.
				s.unread(line)
				g.MoveText = moves.String()
				s.game = g
				return true
			}
			moves.WriteByte('\n')
			moves.WriteString(text)
		}
	}
}

func (s *Segmenter) begin() *Game {
	s.seen++
	return &Game{Index: s.seen}
}

func (s *Segmenter) drop(g *Game, reason string) {
	s.dropped++
	if s.onDrop != nil {
		s.onDrop(g, fmt.Errorf("%w: game %d: %s", ErrTruncatedGameUnit, g.Index, reason))
	}
}

func (s *Segmenter) unread(line string) {
	s.pending = line
	s.pushed = true
}

// readLine returns the next line without its terminator. ok is false at end
// of stream or on error.
func (s *Segmenter) readLine() (string, bool) {
	if s.pushed {
		s.pushed = false
		return s.pending, true
	}
	if s.eof {
		return "", false
	}
	line, err := s.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
			return "", false
		}
		s.eof = true
		if line == "" {
			return "", false
		}
	}
	return strings.TrimRight(line, "\r\n"), true
}

// parseTag parses `[Key "Value"]`. Keys are letters, digits and underscores;
// the value may escape `"` and `\` with a backslash.
func parseTag(line string) (Tag, bool) {
	if len(line) < 4 || line[0] != '[' || line[len(line)-1] != ']' {
		return Tag{}, false
	}
	body := line[1 : len(line)-1]

	i := 0
	for i < len(body) && isKeyChar(body[i]) {
		i++
	}
	if i == 0 {
		return Tag{}, false
	}
	key := body[:i]

	for i < len(body) && isSpace(body[i]) {
		i++
	}
	if i >= len(body) || body[i] != '"' {
		return Tag{}, false
	}
	i++

	var val strings.Builder
	for ; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			val.WriteByte(body[i])
		case c == '"':
			if strings.TrimSpace(body[i+1:]) != "" {
				return Tag{}, false
			}
			return Tag{Key: key, Value: val.String()}, true
		default:
			val.WriteByte(c)
		}
	}
	return Tag{}, false
}

func isKeyChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
