package engagement

import "image"

// Frame is a captured video frame.
type Frame interface {
	Bounds() image.Rectangle
}

// Detector finds candidate regions of one object class.
//
// Detect searches only inside region and returns boxes in frame coordinates.
type Detector interface {
	Detect(frame Frame, region image.Rectangle) []image.Rectangle
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(frame Frame, region image.Rectangle) []image.Rectangle

// Detect calls f(frame, region).
func (f DetectorFunc) Detect(frame Frame, region image.Rectangle) []image.Rectangle {
	return f(frame, region)
}

// PrimaryFace returns the largest face by area. Ties go to the earliest box.
func PrimaryFace(faces []image.Rectangle) (image.Rectangle, bool) {
	if len(faces) == 0 {
		return image.Rectangle{}, false
	}

	best := faces[0]
	bestArea := area(best)
	for _, f := range faces[1:] {
		if a := area(f); a > bestArea {
			best, bestArea = f, a
		}
	}
	return best, true
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
