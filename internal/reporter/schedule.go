package reporter

import "time"

// DefaultInterval is the time between status reports.
const DefaultInterval = 3 * time.Second

// Schedule decides when the next report is due. The interval is measured
// from the last attempt, successful or not.
type Schedule struct {
	interval time.Duration
	last     time.Time
}

// NewSchedule starts the cadence at start, so the first report goes out one
// interval later.
func NewSchedule(interval time.Duration, start time.Time) *Schedule {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Schedule{interval: interval, last: start}
}

// Due reports whether strictly more than one interval has passed since the
// last attempt.
func (s *Schedule) Due(now time.Time) bool {
	return now.Sub(s.last) > s.interval
}

// Mark records an attempt at now.
func (s *Schedule) Mark(now time.Time) {
	s.last = now
}

// Last returns the time of the last attempt.
func (s *Schedule) Last() time.Time {
	return s.last
}
