package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/xcixor/eld-route-planner/internal/api/dto"
	"github.com/xcixor/eld-route-planner/internal/domain"
	"github.com/xcixor/eld-route-planner/internal/metrics"
	"github.com/xcixor/eld-route-planner/internal/ports"
	"github.com/xcixor/eld-route-planner/internal/services"
)

type PlanHandler struct {
	Planner *services.Planner
}

// Plan runs the full planning pipeline for one trip request. Regulatory
// violations come back inside the 201 body as warnings; only input,
// conflict, and provider failures produce error statuses.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanTripRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	plan, err := h.Planner.PlanTrip(r.Context(), services.PlanTripRequest{
		DriverID:        req.DriverID,
		TractorID:       req.TractorID,
		TrailerID:       req.TrailerID,
		LoadID:          req.LoadID,
		CurrentLocation: req.CurrentLocation,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		CycleHoursUsed:  req.CurrentCycleUsedHours,
		StartTime:       req.StartTime,
	})
	if err != nil {
		metrics.TripsPlanned.WithLabelValues(planOutcome(err)).Inc()
		writeDomainError(w, r, err)
		return
	}

	metrics.TripsPlanned.WithLabelValues("planned").Inc()
	for _, warning := range plan.Warnings {
		metrics.HOSWarnings.WithLabelValues(warningCode(warning)).Inc()
	}

	res, err := dto.NewPlanTripResponse(plan)
	if err != nil {
		log.Printf("map plan response failed: trip=%s err=%v", plan.Trip.ID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, res)
}

// warningCode extracts the violation code from a "date: CODE: message"
// warning; advisories without a code count under "advisory".
func warningCode(warning string) string {
	parts := strings.SplitN(warning, ": ", 3)
	if len(parts) == 3 {
		return parts[1]
	}
	return "advisory"
}

func planOutcome(err error) string {
	var verr *domain.ValidationError
	var cerr *domain.ConflictError
	switch {
	case errors.As(err, &verr):
		return "validation_failed"
	case errors.As(err, &cerr):
		return "conflict"
	case errors.Is(err, ports.ErrProviderUnavailable), errors.Is(err, ports.ErrProviderTimeout):
		return "provider_error"
	default:
		return "error"
	}
}
