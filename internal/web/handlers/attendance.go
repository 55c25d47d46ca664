package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// AttendanceHandler handles attendance ledger endpoints.
type AttendanceHandler struct {
	system *recognizer.System
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(system *recognizer.System) *AttendanceHandler {
	return &AttendanceHandler{system: system}
}

// Mark marks a person present for today, bypassing recognition. The first
// mark of the day wins; repeats report the existing time.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	result := h.system.MarkAttendance(name)
	log.WithFields(log.Fields{
		"name":     sanitizeForLog(name),
		"accepted": result.Accepted,
	}).Info("manual attendance mark")

	respondJSON(w, http.StatusOK, result)
}

// Dates lists all dates with attendance records, most recent first.
func (h *AttendanceHandler) Dates(w http.ResponseWriter, r *http.Request) {
	dates := h.system.Ledger().ListDates()
	if dates == nil {
		dates = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"dates": dates})
}

// Show returns all records of one date.
func (h *AttendanceHandler) Show(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	records := h.system.Ledger().RecordsFor(date)
	if records == nil {
		records = []ledger.Record{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"date":    date,
		"records": records,
	})
}

// Range returns records across a date range. Empty bounds are unbounded.
func (h *AttendanceHandler) Range(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	records := h.system.Ledger().RecordsBetween(from, to)
	if records == nil {
		records = []ledger.Record{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"from":    from,
		"to":      to,
		"records": records,
	})
}
