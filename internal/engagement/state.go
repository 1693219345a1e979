package engagement

import (
	"fmt"
	"time"
)

// State is the inferred engagement of the student in front of the camera.
type State string

const (
	StateEngaged  State = "Engaged"
	StateZonedOut State = "Zoned Out"
)

// DefaultThreshold is how long face and eyes may be missing before the
// student is considered zoned out.
const DefaultThreshold = 2 * time.Second

// ParseState converts a reported status string into a State.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateEngaged, StateZonedOut:
		return State(s), nil
	default:
		return "", fmt.Errorf("unknown engagement state %q", s)
	}
}

func (s State) String() string {
	return string(s)
}

// Latch is a time-windowed latch over per-frame detection results.
//
// A frame with face and eyes sets Engaged immediately. Frames without them
// only flip the state to ZonedOut once more than the threshold has elapsed
// since the last such frame. ZonedOut is cleared only by another frame with
// face and eyes; there is no grace period in that direction.
type Latch struct {
	threshold time.Duration
	state     State
	lastSeen  time.Time
}

// NewLatch returns a latch in the Engaged state, last seen at start.
func NewLatch(threshold time.Duration, start time.Time) *Latch {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Latch{
		threshold: threshold,
		state:     StateEngaged,
		lastSeen:  start,
	}
}

// Observe feeds one frame's outcome at time now and returns the new state.
func (l *Latch) Observe(seen bool, now time.Time) State {
	if seen {
		l.state = StateEngaged
		l.lastSeen = now
		return l.state
	}

	if now.Sub(l.lastSeen) > l.threshold {
		l.state = StateZonedOut
	}
	return l.state
}

// State returns the current state without observing a frame.
func (l *Latch) State() State {
	return l.state
}

// LastSeen returns when face and eyes were last detected together.
func (l *Latch) LastSeen() time.Time {
	return l.lastSeen
}
