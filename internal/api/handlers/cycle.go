package handlers

import (
	"net/http"
	"time"

	"github.com/xcixor/eld-route-planner/internal/api/dto"
	"github.com/xcixor/eld-route-planner/internal/services"
)

// CycleHandler exposes a driver's rolling 8-day cycle window.
type CycleHandler struct {
	Tracker *services.CycleTracker

	Now func() time.Time
}

func (h *CycleHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// Get reports the cycle window as of an optional ?date=YYYY-MM-DD,
// defaulting to today. Drivers without an open cycle are 404s.
func (h *CycleHandler) Get(w http.ResponseWriter, r *http.Request) {
	asOf := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	window, err := h.Tracker.Window(r.PathValue("id"), asOf)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewCycleResponse(window))
}
