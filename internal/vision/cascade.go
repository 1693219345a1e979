package vision

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/goodtune/classwatch/internal/config"
	"github.com/goodtune/classwatch/internal/engagement"
	"gocv.io/x/gocv"
)

// ErrCascadeNotLoaded is returned when a Haar cascade model cannot be loaded.
var ErrCascadeNotLoaded = errors.New("cascade model not loaded")

// CascadeDetector runs a Haar cascade over the grayscale frame.
type CascadeDetector struct {
	name       string
	classifier gocv.CascadeClassifier
	params     config.CascadeParams
}

var _ engagement.Detector = (*CascadeDetector)(nil)

// LoadCascade loads the cascade model at path.
func LoadCascade(path string, params config.CascadeParams) (*CascadeDetector, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCascadeNotLoaded, path, err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		_ = classifier.Close()
		return nil, fmt.Errorf("%w: %s", ErrCascadeNotLoaded, path)
	}

	return &CascadeDetector{
		name:       path,
		classifier: classifier,
		params:     params,
	}, nil
}

// Detect returns the boxes found inside region, in frame coordinates.
// Frames of a foreign type yield no detections.
func (d *CascadeDetector) Detect(f engagement.Frame, region image.Rectangle) []image.Rectangle {
	frame, err := asFrame(f)
	if err != nil || frame.Gray.Empty() {
		return nil
	}

	region = region.Intersect(frame.Bounds())
	if region.Empty() {
		return nil
	}

	roi := frame.Gray.Region(region)
	defer roi.Close()

	minSize := image.Pt(d.params.MinSize, d.params.MinSize)
	found := d.classifier.DetectMultiScaleWithParams(roi, d.params.ScaleFactor, d.params.MinNeighbors, 0, minSize, image.Point{})

	boxes := make([]image.Rectangle, 0, len(found))
	for _, r := range found {
		boxes = append(boxes, r.Add(region.Min))
	}
	return boxes
}

// Close releases the classifier.
func (d *CascadeDetector) Close() error {
	return d.classifier.Close()
}
