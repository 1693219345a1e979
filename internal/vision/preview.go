package vision

import (
	"github.com/goodtune/classwatch/internal/engagement"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// PreviewTitle is the local preview window title.
const PreviewTitle = "Your Monitor (Private)"

// Preview shows the annotated frame to the student.
type Preview struct {
	window *gocv.Window
	logger zerolog.Logger
}

// NewPreview opens the preview window.
func NewPreview(logger zerolog.Logger) *Preview {
	return &Preview{
		window: gocv.NewWindow(PreviewTitle),
		logger: logger.With().Str("component", "preview").Logger(),
	}
}

// Show displays frame and reports whether the student pressed q.
func (p *Preview) Show(f engagement.Frame) bool {
	frame, err := asFrame(f)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Cannot preview frame")
		return false
	}
	if err := p.window.IMShow(frame.Color); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to show preview frame")
	}
	return p.window.WaitKey(1)&0xFF == 'q'
}

// Close destroys the window.
func (p *Preview) Close() error {
	return p.window.Close()
}
