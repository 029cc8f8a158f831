package timing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/backmassage/timespent/internal/pgn"
)

// ErrMalformedTimeControl is returned for a TimeControl tag that is not
// "base" or "base+increment" in whole seconds. It never aborts a run: the
// game is reported as no-clock-data instead.
var ErrMalformedTimeControl = errors.New("malformed time control")

// TimeControl is a game's starting clock and per-move increment.
type TimeControl struct {
	Base      time.Duration
	Increment time.Duration
}

// ParseTimeControl parses "300+2" or "300". "-" (no clock) and empty values
// are malformed.
func ParseTimeControl(s string) (TimeControl, error) {
	raw := strings.TrimSpace(s)
	base, inc, hasInc := strings.Cut(raw, "+")

	b, err := parseSeconds(base)
	if err != nil {
		return TimeControl{}, fmt.Errorf("%w: %q", ErrMalformedTimeControl, s)
	}
	tc := TimeControl{Base: b}
	if hasInc {
		i, err := parseSeconds(inc)
		if err != nil {
			return TimeControl{}, fmt.Errorf("%w: %q", ErrMalformedTimeControl, s)
		}
		tc.Increment = i
	}
	return tc, nil
}

func parseSeconds(s string) (time.Duration, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > int64(pgn.MaxClock/time.Second) {
		return 0, fmt.Errorf("out of range: %d", n)
	}
	return time.Duration(n) * time.Second, nil
}

// String renders the time control the way PGN writes it.
func (tc TimeControl) String() string {
	return fmt.Sprintf("%d+%d", int64(tc.Base/time.Second), int64(tc.Increment/time.Second))
}

// Speed is the lichess time-control category.
type Speed string

const (
	SpeedUnknown     Speed = ""
	SpeedUltraBullet Speed = "ultrabullet"
	SpeedBullet      Speed = "bullet"
	SpeedBlitz       Speed = "blitz"
	SpeedRapid       Speed = "rapid"
	SpeedClassical   Speed = "classical"
)

// EstimatedDuration is the expected per-player game length: base plus forty
// increments.
func (tc TimeControl) EstimatedDuration() time.Duration {
	return tc.Base + 40*tc.Increment
}

// Speed classifies tc by its estimated duration
// (https://lichess.org/faq#time-controls).
func (tc TimeControl) Speed() Speed {
	secs := int64(tc.EstimatedDuration() / time.Second)
	switch {
	case secs <= 29:
		return SpeedUltraBullet
	case secs <= 179:
		return SpeedBullet
	case secs <= 479:
		return SpeedBlitz
	case secs <= 1499:
		return SpeedRapid
	default:
		return SpeedClassical
	}
}
