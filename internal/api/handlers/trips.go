package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/xcixor/eld-route-planner/internal/api/dto"
	"github.com/xcixor/eld-route-planner/internal/domain"
	"github.com/xcixor/eld-route-planner/internal/ports"
)

// TripHandler exposes trip retrieval and lifecycle endpoints.
type TripHandler struct {
	Repo ports.TripRepository

	// Now is the transition clock; tests inject fixed times.
	Now func() time.Time
}

func (h *TripHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, err := h.Repo.ListTrips(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListTripsResponse{Trips: make([]dto.TripResponse, 0, len(trips))}
	for _, t := range trips {
		res.Trips = append(res.Trips, dto.NewTripResponse(t))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get returns the full planning bundle for one trip: the trip itself,
// waypoints, fuel stops, rest breaks, daily log sheets, and the cycle
// window recorded when it was planned.
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Repo.GetTripPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res, err := dto.NewPlanTripResponse(plan)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Logs returns the trip's daily log sheets with grid data.
func (h *TripHandler) Logs(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Repo.GetTripPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	logs := make([]dto.DailyLogResponse, 0, len(plan.DailyLogs))
	for _, logSheet := range plan.DailyLogs {
		logRes, err := dto.NewDailyLogResponse(logSheet)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		logs = append(logs, logRes)
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"daily_logs": logs})
}

func (h *TripHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(t *domain.Trip, at time.Time) error { return t.Start(at) })
}

func (h *TripHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(t *domain.Trip, at time.Time) error { return t.Complete(at) })
}

func (h *TripHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(t *domain.Trip, at time.Time) error { return t.Cancel(at) })
}

type transitionRequest struct {
	At *time.Time `json:"at"`
}

// transition applies a lifecycle action at the requested time, or the
// server clock when the body omits one. An empty body is allowed.
func (h *TripHandler) transition(w http.ResponseWriter, r *http.Request, apply func(*domain.Trip, time.Time) error) {
	at := h.now()

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	defer r.Body.Close()
	if req.At != nil {
		at = req.At.UTC()
	}

	plan, err := h.Repo.GetTripPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	trip := plan.Trip
	if err := apply(trip, at); err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.Repo.UpdateTrip(r.Context(), trip); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewTripResponse(trip))
}
