package pgn

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/notnil/chess"
)

const clockMarker = "[%clk"

// MaxClock is the largest remaining-clock value accepted from a `[%clk]`
// command or a time control. Larger values are treated as garbage.
const MaxClock = 1000 * time.Hour

// ExtractPlies scans movetext and returns its plies in order. A `{ ... }`
// comment holding a `[%clk H:MM:SS]` command sets the clock of the ply it
// follows. Variations, NAGs, move numbers and termination markers are
// skipped. Even ply indexes belong to White, odd ones to Black.
func ExtractPlies(movetext string) []Ply {
	var plies []Ply
	s := movetext
	n := len(s)
	for i := 0; i < n; {
		c := s[i]
		switch {
		case isSpace(c):
			i++
		case c == '{':
			end := strings.IndexByte(s[i+1:], '}')
			var comment string
			if end < 0 {
				comment, i = s[i+1:], n
			} else {
				comment, i = s[i+1:i+1+end], i+end+2
			}
			if last := len(plies) - 1; last >= 0 && !plies[last].HasClock {
				if d, ok := ParseClock(comment); ok {
					plies[last].Clock = d
					plies[last].HasClock = true
				}
			}
		case c == ';':
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				i = n
			} else {
				i += end + 1
			}
		case c == '(':
			i = skipVariation(s, i)
		case c == ')' || c == '}' || c == '[' || c == ']':
			i++
		case c == '$':
			i = tokenEnd(s, i+1)
		default:
			j := tokenEnd(s, i)
			tok := s[i:j]
			i = j
			if san, ok := moveToken(tok); ok {
				idx := len(plies)
				side := chess.White
				if idx%2 == 1 {
					side = chess.Black
				}
				plies = append(plies, Ply{
					Side:       side,
					MoveNumber: idx/2 + 1,
					SAN:        san,
				})
			}
		}
	}
	return plies
}

// moveToken strips a move-number prefix and annotation suffixes from tok and
// reports whether what remains is a move.
func moveToken(tok string) (string, bool) {
	if _, ok := ParseOutcome(tok); ok {
		return "", false
	}
	k := 0
	for k < len(tok) && tok[k] >= '0' && tok[k] <= '9' {
		k++
	}
	if k > 0 && k < len(tok) && tok[k] == '.' {
		tok = strings.TrimLeft(tok[k:], ".")
	} else if k == len(tok) {
		// Bare number, e.g. "12" before a detached "...".
		return "", false
	}
	tok = strings.TrimLeft(tok, ".")
	tok = strings.TrimRight(tok, "!?")
	if tok == "" {
		return "", false
	}
	return tok, true
}

// tokenEnd returns the index just past the token starting at i.
func tokenEnd(s string, i int) int {
	for i < len(s) && !isSpace(s[i]) && !isDelimiter(s[i]) {
		i++
	}
	return i
}

func isDelimiter(c byte) bool {
	switch c {
	case '{', '}', '(', ')', ';', '[', ']':
		return true
	}
	return false
}

// skipVariation returns the index just past the variation opened at s[i],
// honoring nesting and ignoring parentheses inside comments.
func skipVariation(s string, i int) int {
	depth := 0
	for i < len(s) {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		case '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return len(s)
			}
			i += end + 1
		}
		i++
	}
	return len(s)
}

// ParseClock reads a `[%clk H:MM:SS]` command out of comment. Seconds may be
// fractional; M:SS without hours is accepted too. Minutes and seconds must
// be below 60 where a larger unit is present, and the value must not exceed
// MaxClock.
func ParseClock(comment string) (time.Duration, bool) {
	at := strings.Index(comment, clockMarker)
	if at < 0 {
		return 0, false
	}
	rest := comment[at+len(clockMarker):]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return 0, false
	}
	parts := strings.Split(strings.TrimSpace(rest[:end]), ":")

	var hours, minutes int64
	var secText string
	switch len(parts) {
	case 3:
		h, ok := clockField(parts[0], int64(MaxClock/time.Hour))
		if !ok {
			return 0, false
		}
		m, ok := clockField(parts[1], 59)
		if !ok {
			return 0, false
		}
		hours, minutes = h, m
		secText = parts[2]
	case 2:
		m, ok := clockField(parts[0], int64(MaxClock/time.Minute))
		if !ok {
			return 0, false
		}
		minutes = m
		secText = parts[1]
	default:
		return 0, false
	}

	sec, err := strconv.ParseFloat(secText, 64)
	if err != nil || !(sec >= 0 && sec < 60) {
		return 0, false
	}
	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(math.Round(sec*1000))*time.Millisecond
	if d > MaxClock {
		return 0, false
	}
	return d, true
}

// clockField parses a non-negative integer clock field no larger than max.
func clockField(s string, max int64) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 || n > max {
		return 0, false
	}
	return n, true
}
