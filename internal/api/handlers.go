package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goodtune/classwatch/internal/aggregator"
	"github.com/goodtune/classwatch/internal/storage"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// maxUpdateBytes bounds the body of a status update.
const maxUpdateBytes = 64 << 10

// StatusHandler serves the student status endpoints.
type StatusHandler struct {
	aggregator *aggregator.Aggregator
	logger     zerolog.Logger
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(agg *aggregator.Aggregator, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		aggregator: agg,
		logger:     logger.With().Str("handler", "status").Logger(),
	}
}

// UpdateStatus records the status reported by a student client.
func (h *StatusHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	body := http.MaxBytesReader(w, r.Body, maxUpdateBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("Malformed update body")
		WriteError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	if _, err := h.aggregator.Record(r.Context(), req.StudentID, req.Status); err != nil {
		if errors.Is(err, aggregator.ErrInvalidData) {
			WriteError(w, http.StatusBadRequest, "Invalid data")
			return
		}
		h.logger.Error().Err(err).Str("student_id", req.StudentID).Msg("Failed to record status")
		WriteError(w, http.StatusInternalServerError, "Failed to record status")
		return
	}

	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Status updated successfully"})
}

// GetStatuses returns the latest status of every student.
func (h *StatusHandler) GetStatuses(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.aggregator.Snapshot(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to snapshot statuses")
		WriteError(w, http.StatusInternalServerError, "Failed to retrieve statuses")
		return
	}

	if snapshot == nil {
		snapshot = map[string]storage.StatusRecord{}
	}
	WriteJSON(w, http.StatusOK, snapshot)
}

// GetStatus returns the latest status of one student.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["student_id"]

	record, err := h.aggregator.Lookup(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Student not found")
			return
		}
		h.logger.Error().Err(err).Str("student_id", studentID).Msg("Failed to look up status")
		WriteError(w, http.StatusInternalServerError, "Failed to retrieve status")
		return
	}

	WriteJSON(w, http.StatusOK, record)
}
