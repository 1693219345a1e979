package engagement

import (
	"image"
	"time"

	"github.com/goodtune/classwatch/internal/clock"
)

// Result is the outcome of classifying one frame.
type Result struct {
	State   State
	Face    *image.Rectangle
	Eyes    []image.Rectangle
	Engaged bool // face and at least one eye were found in this frame
}

// Classifier turns frames into an engagement state.
type Classifier struct {
	faces Detector
	eyes  Detector
	latch *Latch
	clock clock.Clock
}

// Config holds classifier configuration
type Config struct {
	Threshold time.Duration
	Clock     clock.Clock
}

// NewClassifier creates a classifier that starts Engaged at the current time.
func NewClassifier(faces, eyes Detector, config Config) *Classifier {
	if config.Clock == nil {
		config.Clock = clock.RealClock{}
	}
	return &Classifier{
		faces: faces,
		eyes:  eyes,
		latch: NewLatch(config.Threshold, config.Clock.Now()),
		clock: config.Clock,
	}
}

// Classify detects the primary face and its eyes in frame and updates the
// engagement state.
func (c *Classifier) Classify(frame Frame) Result {
	now := c.clock.Now()
	result := Result{}

	face, found := PrimaryFace(c.faces.Detect(frame, frame.Bounds()))
	if found {
		result.Face = &face
		result.Eyes = c.eyes.Detect(frame, face)
	}

	result.Engaged = found && len(result.Eyes) > 0
	result.State = c.latch.Observe(result.Engaged, now)
	return result
}

// State returns the current engagement state.
func (c *Classifier) State() State {
	return c.latch.State()
}
