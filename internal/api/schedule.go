package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/olesko/rodovid/internal/apperr"
	"github.com/olesko/rodovid/internal/models"
	"github.com/olesko/rodovid/internal/store"
)

// ScheduleHandler serves the flat schedule resource.
type ScheduleHandler struct {
	db *store.DB
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(db *store.DB) *ScheduleHandler {
	return &ScheduleHandler{db: db}
}

// List handles GET /api/schedule.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.db.ListSchedules()
	if err != nil {
		slog.Error("list schedules failed", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []models.Schedule{}
	}
	respondList(w, items, len(items))
}

// Create handles POST /api/schedule.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry := &models.Schedule{
		ID:    uuid.NewString(),
		Title: req.Title,
		Date:  req.Date,
		Time:  req.Time,
	}
	if err := h.db.InsertSchedule(entry); err != nil {
		slog.Error("create schedule failed", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondData(w, http.StatusCreated, entry)
}

// Delete handles DELETE /api/schedule/{id}.
// Responds with the removed record, matching the list/create shapes.
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id format")
		return
	}
	entry, err := h.db.GetSchedule(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondError(w, http.StatusNotFound, "schedule entry not found")
			return
		}
		slog.Error("delete schedule failed", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.db.DeleteSchedule(id); err != nil {
		slog.Error("delete schedule failed", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondData(w, http.StatusOK, entry)
}
