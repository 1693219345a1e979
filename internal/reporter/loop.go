package reporter

import (
	"context"
	"time"

	"github.com/goodtune/classwatch/internal/engagement"
	"github.com/goodtune/classwatch/internal/metrics"
	"github.com/rs/zerolog"
)

// Sender delivers one status report.
type Sender interface {
	Report(ctx context.Context, studentID string, state engagement.State) error
}

// Loop sends the current state on the schedule. Failures are logged and
// dropped; the next attempt carries whatever state is current then.
type Loop struct {
	studentID string
	sender    Sender
	schedule  *Schedule
	logger    zerolog.Logger
}

// NewLoop creates a reporting loop for studentID.
func NewLoop(studentID string, sender Sender, schedule *Schedule, logger zerolog.Logger) *Loop {
	return &Loop{
		studentID: studentID,
		sender:    sender,
		schedule:  schedule,
		logger:    logger.With().Str("component", "reporter").Str("student_id", studentID).Logger(),
	}
}

// Tick sends state if a report is due at now. It returns true when an attempt
// was made.
func (l *Loop) Tick(ctx context.Context, now time.Time, state engagement.State) bool {
	if !l.schedule.Due(now) {
		return false
	}
	l.schedule.Mark(now)

	start := time.Now()
	err := l.sender.Report(ctx, l.studentID, state)
	metrics.ReportDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ReportsTotal.WithLabelValues("error").Inc()
		l.logger.Warn().Err(err).Msg("Could not connect to server")
		return true
	}

	metrics.ReportsTotal.WithLabelValues("ok").Inc()
	l.logger.Info().Str("status", string(state)).Msg("Sent status to dashboard")
	return true
}
