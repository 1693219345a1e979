package vision

import (
	"fmt"
	"image"
	"image/color"

	"github.com/goodtune/classwatch/internal/engagement"
	"gocv.io/x/gocv"
)

var (
	red   = color.RGBA{R: 255}
	green = color.RGBA{G: 255}
)

// Overlay draws detections and the engagement status onto frames.
type Overlay struct{}

// Annotate draws the face box in red, eye boxes in green and the status line
// in the state's colour.
func (Overlay) Annotate(f engagement.Frame, result engagement.Result) error {
	frame, err := asFrame(f)
	if err != nil {
		return err
	}

	if result.Face != nil {
		if err := gocv.Rectangle(&frame.Color, *result.Face, red, 2); err != nil {
			return fmt.Errorf("draw face: %w", err)
		}
	}
	for _, eye := range result.Eyes {
		if err := gocv.Rectangle(&frame.Color, eye, green, 2); err != nil {
			return fmt.Errorf("draw eye: %w", err)
		}
	}

	textColor := red
	if result.State == engagement.StateEngaged {
		textColor = green
	}
	if err := gocv.PutText(&frame.Color, "Status: "+string(result.State), image.Pt(10, 30), gocv.FontHersheySimplex, 0.7, textColor, 2); err != nil {
		return fmt.Errorf("draw status: %w", err)
	}
	return nil
}
