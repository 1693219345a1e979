package vision

import (
	"fmt"
	"image"

	"github.com/goodtune/classwatch/internal/engagement"
	"gocv.io/x/gocv"
)

// Frame is a BGR video frame plus its grayscale copy for detection.
type Frame struct {
	Color gocv.Mat
	Gray  gocv.Mat
}

var _ engagement.Frame = (*Frame)(nil)

// NewFrame allocates an empty frame.
func NewFrame() *Frame {
	return &Frame{
		Color: gocv.NewMat(),
		Gray:  gocv.NewMat(),
	}
}

// Bounds returns the frame rectangle.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Color.Cols(), f.Color.Rows())
}

// Empty reports whether the frame holds no pixels.
func (f *Frame) Empty() bool {
	return f.Color.Empty()
}

// refreshGray recomputes the grayscale copy after Color changed.
func (f *Frame) refreshGray() error {
	if err := gocv.CvtColor(f.Color, &f.Gray, gocv.ColorBGRToGray); err != nil {
		return fmt.Errorf("convert frame to grayscale: %w", err)
	}
	return nil
}

// Close releases both matrices.
func (f *Frame) Close() error {
	if err := f.Color.Close(); err != nil {
		return err
	}
	return f.Gray.Close()
}

func asFrame(f engagement.Frame) (*Frame, error) {
	frame, ok := f.(*Frame)
	if !ok {
		return nil, fmt.Errorf("vision: unsupported frame type %T", f)
	}
	return frame, nil
}
