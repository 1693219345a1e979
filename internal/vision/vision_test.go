package vision

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/goodtune/classwatch/internal/config"
	"github.com/goodtune/classwatch/internal/engagement"
)

type foreignFrame struct{}

func (foreignFrame) Bounds() image.Rectangle { return image.Rect(0, 0, 640, 480) }

func TestLoadCascade_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "haarcascade_frontalface_default.xml")

	_, err := LoadCascade(path, config.CascadeParams{ScaleFactor: 1.1, MinNeighbors: 5, MinSize: 50})
	if !errors.Is(err, ErrCascadeNotLoaded) {
		t.Fatalf("Expected ErrCascadeNotLoaded, got %v", err)
	}
}

func TestFrame_Bounds(t *testing.T) {
	f := NewFrame()
	defer f.Close()

	if !f.Empty() {
		t.Error("Expected new frame to be empty")
	}
	if b := f.Bounds(); !b.Empty() {
		t.Errorf("Expected empty bounds, got %v", b)
	}
}

func TestOverlay_ForeignFrame(t *testing.T) {
	err := Overlay{}.Annotate(foreignFrame{}, engagement.Result{State: engagement.StateEngaged})
	if err == nil {
		t.Error("Expected an error for a frame without pixel data")
	}
}

func TestDetect_EmptyFrame(t *testing.T) {
	d := &CascadeDetector{params: config.CascadeParams{ScaleFactor: 1.1, MinNeighbors: 5, MinSize: 30}}

	f := NewFrame()
	defer f.Close()

	if boxes := d.Detect(f, f.Bounds()); len(boxes) != 0 {
		t.Errorf("Expected no detections, got %v", boxes)
	}
	if boxes := d.Detect(foreignFrame{}, image.Rect(0, 0, 10, 10)); len(boxes) != 0 {
		t.Errorf("Expected no detections for foreign frame, got %v", boxes)
	}
}

func TestFrame_RefreshGrayFailsOnEmptyFrame(t *testing.T) {
	f := NewFrame()
	defer f.Close()

	if err := f.refreshGray(); err == nil {
		t.Error("Expected grayscale conversion of an empty frame to fail")
	}
}
