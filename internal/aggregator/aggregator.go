package aggregator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodtune/classwatch/internal/clock"
	"github.com/goodtune/classwatch/internal/metrics"
	"github.com/goodtune/classwatch/internal/storage"
	"github.com/rs/zerolog"
)

// ErrInvalidData is returned when an update is missing the student id or status.
var ErrInvalidData = errors.New("invalid data")

// Aggregator owns the status table shared by all students.
type Aggregator struct {
	store  storage.StatusStore
	clock  clock.Clock
	logger zerolog.Logger
}

// New creates an aggregator over store. A nil clock uses the system clock.
func New(store storage.StatusStore, clk clock.Clock, logger zerolog.Logger) *Aggregator {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Aggregator{
		store:  store,
		clock:  clk,
		logger: logger.With().Str("component", "aggregator").Logger(),
	}
}

// Record stores status as the latest status for studentID, stamped with the
// current time. Both values must be non-empty; otherwise ErrInvalidData is
// returned and nothing is written.
func (a *Aggregator) Record(ctx context.Context, studentID, status string) (storage.StatusRecord, error) {
	if studentID == "" || status == "" {
		metrics.StatusUpdatesTotal.WithLabelValues("invalid").Inc()
		return storage.StatusRecord{}, ErrInvalidData
	}

	record := storage.StatusRecord{
		Status:    status,
		Timestamp: a.clock.Now(),
	}

	if err := a.store.Put(ctx, studentID, record); err != nil {
		metrics.StatusUpdatesTotal.WithLabelValues("error").Inc()
		return storage.StatusRecord{}, fmt.Errorf("record status for %s: %w", studentID, err)
	}

	metrics.StatusUpdatesTotal.WithLabelValues("ok").Inc()

	a.logger.Info().
		Str("student_id", studentID).
		Str("status", status).
		Msg("Received status")

	return record, nil
}

// Snapshot returns the whole status table.
func (a *Aggregator) Snapshot(ctx context.Context) (map[string]storage.StatusRecord, error) {
	snapshot, err := a.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot statuses: %w", err)
	}
	metrics.StudentsTracked.Set(float64(len(snapshot)))
	return snapshot, nil
}

// Lookup returns the latest record for studentID, or storage.ErrNotFound.
func (a *Aggregator) Lookup(ctx context.Context, studentID string) (*storage.StatusRecord, error) {
	record, err := a.store.Get(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("lookup status for %s: %w", studentID, err)
	}
	return record, nil
}

// Count returns the number of students with a recorded status.
func (a *Aggregator) Count(ctx context.Context) (int, error) {
	n, err := a.store.Len(ctx)
	if err != nil {
		return 0, fmt.Errorf("count statuses: %w", err)
	}
	return n, nil
}

// Close releases the underlying store.
func (a *Aggregator) Close() error {
	return a.store.Close()
}
