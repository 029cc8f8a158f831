// Package progress estimates how far a run has come against a caller-supplied
// total game count. It is advisory only and never affects the output.
package progress

import "time"

// Reporter turns a games-seen count into fraction complete and a linear
// time-remaining estimate. It is the only part of a run that reads wall time.
type Reporter struct {
	total int64
	start time.Time
	now   func() time.Time
}

// Snapshot is the progress at one instant.
type Snapshot struct {
	Seen      int64
	Total     int64
	Fraction  float64       // In [0, 1].
	Elapsed   time.Duration // Wall time since New.
	Remaining time.Duration // Zero until an estimate is possible, or when past Total.
	Rate      float64       // Games per second.
}

// New starts a Reporter for expectedTotal games. now may be nil, in which
// case time.Now is used.
func New(expectedTotal int64, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{total: expectedTotal, start: now(), now: now}
}

// Snapshot computes progress for seen games.
func (r *Reporter) Snapshot(seen int64) Snapshot {
	elapsed := r.now().Sub(r.start)
	s := Snapshot{Seen: seen, Total: r.total, Elapsed: elapsed}

	if r.total > 0 {
		s.Fraction = float64(seen) / float64(r.total)
		if s.Fraction > 1 {
			s.Fraction = 1
		}
	}
	if elapsed > 0 {
		s.Rate = float64(seen) / elapsed.Seconds()
	}
	if seen > 0 && seen < r.total && elapsed > 0 {
		left := float64(r.total - seen)
		s.Remaining = time.Duration(float64(elapsed) * left / float64(seen))
	}
	return s
}
