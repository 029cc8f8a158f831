package pipeline

import (
	"time"

	"github.com/backmassage/timespent/internal/source"
	"github.com/backmassage/timespent/internal/timing"
)

// RunStats tracks aggregate counters for one run.
type RunStats struct {
	Seen    int64 // Game units encountered, dropped ones included.
	Written int64
	Dropped int64 // Truncated units.

	Complete    int64
	Abandoned   int64
	NoClockData int64

	MalformedTimeControl int64
	TimeForfeits         int64

	Format      source.Format
	ArchiveSize int64
	BytesRead   int64

	Elapsed     time.Duration
	Interrupted bool
}

func (s *RunStats) record(rec timing.Record) {
	s.Written++
	switch rec.Status {
	case timing.StatusComplete:
		s.Complete++
	case timing.StatusAbandoned:
		s.Abandoned++
	case timing.StatusNoClockData:
		s.NoClockData++
	}
}

// Throughput returns written games per second of wall time.
func (s *RunStats) Throughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Written) / s.Elapsed.Seconds()
}
