package student

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/classwatch/internal/clock"
	"github.com/goodtune/classwatch/internal/engagement"
	"github.com/goodtune/classwatch/internal/metrics"
	"github.com/rs/zerolog"
)

// Source produces video frames.
type Source interface {
	Read() (engagement.Frame, error)
	FPS() float64
}

// Sink receives annotated frames.
type Sink interface {
	Write(frame engagement.Frame) error
}

// Annotator draws a classification result onto a frame.
type Annotator interface {
	Annotate(frame engagement.Frame, result engagement.Result) error
}

// Viewer shows frames locally. Show returns true when the user asked to quit.
type Viewer interface {
	Show(frame engagement.Frame) bool
}

// Classifier turns a frame into an engagement result.
type Classifier interface {
	Classify(frame engagement.Frame) engagement.Result
}

// Reporter is offered the current state once per frame.
type Reporter interface {
	Tick(ctx context.Context, now time.Time, state engagement.State) bool
}

// Config holds runner settings.
type Config struct {
	StudentID string
	Clock     clock.Clock
}

// Runner drives the capture, classify, report and publish loop.
type Runner struct {
	config     Config
	source     Source
	classifier Classifier
	reporter   Reporter
	annotator  Annotator
	sink       Sink
	viewer     Viewer
	logger     zerolog.Logger
}

// NewRunner creates a runner. annotator and viewer may be nil.
func NewRunner(cfg Config, source Source, classifier Classifier, reporter Reporter, annotator Annotator, sink Sink, viewer Viewer, logger zerolog.Logger) *Runner {
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	return &Runner{
		config:     cfg,
		source:     source,
		classifier: classifier,
		reporter:   reporter,
		annotator:  annotator,
		sink:       sink,
		viewer:     viewer,
		logger:     logger.With().Str("component", "student").Str("student_id", cfg.StudentID).Logger(),
	}
}

// Run processes frames until the source runs dry, ctx is cancelled or the
// viewer asks to quit. Only a sink failure is returned as an error.
func (r *Runner) Run(ctx context.Context) error {
	fps := r.source.FPS()
	if fps <= 0 {
		return fmt.Errorf("invalid source frame rate: %v", fps)
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	lastState := engagement.State("")
	for {
		if ctx.Err() != nil {
			r.logger.Info().Msg("Shutting down")
			return nil
		}

		frame, err := r.source.Read()
		if err != nil {
			r.logger.Error().Err(err).Msg("Stopping capture")
			return nil
		}

		result := r.classifier.Classify(frame)
		metrics.FramesProcessed.Inc()
		r.recordState(result.State)
		if result.State != lastState {
			r.logger.Debug().Str("status", string(result.State)).Msg("Engagement changed")
			lastState = result.State
		}

		r.reporter.Tick(ctx, r.config.Clock.Now(), result.State)

		if r.annotator != nil {
			if err := r.annotator.Annotate(frame, result); err != nil {
				r.logger.Warn().Err(err).Msg("Failed to annotate frame")
			}
		}

		quit := false
		if r.viewer != nil {
			quit = r.viewer.Show(frame)
		}

		if err := r.sink.Write(frame); err != nil {
			return fmt.Errorf("write frame to virtual camera: %w", err)
		}

		if quit {
			r.logger.Info().Msg("Quit requested")
			return nil
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
}

func (r *Runner) recordState(state engagement.State) {
	v := 0.0
	if state == engagement.StateEngaged {
		v = 1
	}
	metrics.EngagementState.WithLabelValues(r.config.StudentID).Set(v)
}
