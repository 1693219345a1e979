package engagement

import (
	"image"
	"testing"
	"time"

	"github.com/goodtune/classwatch/internal/clock"
	"github.com/stretchr/testify/require"
)

type fakeFrame struct{}

func (fakeFrame) Bounds() image.Rectangle { return image.Rect(0, 0, 640, 480) }

// scripted returns the next scripted answer on every call and records the
// regions it was asked to search.
type scripted struct {
	answers [][]image.Rectangle
	regions []image.Rectangle
}

func (s *scripted) Detect(_ Frame, region image.Rectangle) []image.Rectangle {
	s.regions = append(s.regions, region)
	if len(s.answers) == 0 {
		return nil
	}
	next := s.answers[0]
	s.answers = s.answers[1:]
	return next
}

func TestPrimaryFace(t *testing.T) {
	_, ok := PrimaryFace(nil)
	require.False(t, ok)

	small := image.Rect(0, 0, 50, 50)
	large := image.Rect(100, 100, 200, 200)
	face, ok := PrimaryFace([]image.Rectangle{small, large})
	require.True(t, ok)
	require.Equal(t, large, face)

	// Equal areas keep the first in input order.
	a := image.Rect(0, 0, 60, 60)
	b := image.Rect(300, 300, 360, 360)
	face, _ = PrimaryFace([]image.Rectangle{a, b})
	require.Equal(t, a, face)
}

func TestClassifier_EyesSearchedInsidePrimaryFace(t *testing.T) {
	small := image.Rect(0, 0, 60, 60)
	large := image.Rect(200, 100, 350, 250)
	eye := image.Rect(230, 140, 260, 170)

	faces := &scripted{answers: [][]image.Rectangle{{small, large}}}
	eyes := &scripted{answers: [][]image.Rectangle{{eye}}}
	clk := clock.NewTestClock(t0)

	c := NewClassifier(faces, eyes, Config{Threshold: 2 * time.Second, Clock: clk})
	res := c.Classify(fakeFrame{})

	require.Equal(t, []image.Rectangle{image.Rect(0, 0, 640, 480)}, faces.regions)
	require.Equal(t, []image.Rectangle{large}, eyes.regions)
	require.NotNil(t, res.Face)
	require.Equal(t, large, *res.Face)
	require.Equal(t, []image.Rectangle{eye}, res.Eyes)
	require.True(t, res.Engaged)
	require.Equal(t, StateEngaged, res.State)
}

func TestClassifier_NoFaceSkipsEyeDetection(t *testing.T) {
	faces := &scripted{}
	eyes := &scripted{}
	c := NewClassifier(faces, eyes, Config{Clock: clock.NewTestClock(t0)})

	res := c.Classify(fakeFrame{})
	require.Nil(t, res.Face)
	require.Empty(t, eyes.regions)
	require.False(t, res.Engaged)
	require.Equal(t, StateEngaged, res.State)
}

func TestClassifier_FaceWithoutEyesIsNotEngagedFrame(t *testing.T) {
	face := image.Rect(100, 100, 200, 200)
	clk := clock.NewTestClock(t0)
	faces := DetectorFunc(func(Frame, image.Rectangle) []image.Rectangle { return []image.Rectangle{face} })
	eyes := DetectorFunc(func(Frame, image.Rectangle) []image.Rectangle { return nil })

	c := NewClassifier(faces, eyes, Config{Threshold: 2 * time.Second, Clock: clk})

	clk.Advance(time.Second)
	res := c.Classify(fakeFrame{})
	require.False(t, res.Engaged)
	require.Equal(t, StateEngaged, res.State)

	clk.Advance(1500 * time.Millisecond)
	res = c.Classify(fakeFrame{})
	require.Equal(t, StateZonedOut, res.State)
	require.Equal(t, StateZonedOut, c.State())
}

func TestClassifier_SyntheticSequence(t *testing.T) {
	clk := clock.NewTestClock(t0)
	seen := false
	face := image.Rect(100, 100, 200, 200)
	faces := DetectorFunc(func(Frame, image.Rectangle) []image.Rectangle {
		if seen {
			return []image.Rectangle{face}
		}
		return nil
	})
	eyes := DetectorFunc(func(Frame, image.Rectangle) []image.Rectangle {
		return []image.Rectangle{image.Rect(120, 120, 140, 140)}
	})

	c := NewClassifier(faces, eyes, Config{Threshold: 2 * time.Second, Clock: clk})

	steps := []struct {
		advance time.Duration
		seen    bool
		want    State
	}{
		{500 * time.Millisecond, true, StateEngaged},
		{500 * time.Millisecond, false, StateEngaged},
		{500 * time.Millisecond, true, StateEngaged},
		{900 * time.Millisecond, false, StateEngaged},
		{900 * time.Millisecond, false, StateEngaged},
		{300 * time.Millisecond, false, StateZonedOut},
		{5 * time.Second, false, StateZonedOut},
		{100 * time.Millisecond, true, StateEngaged},
	}

	for i, step := range steps {
		clk.Advance(step.advance)
		seen = step.seen
		require.Equal(t, step.want, c.Classify(fakeFrame{}).State, "step %d", i)
	}
}
