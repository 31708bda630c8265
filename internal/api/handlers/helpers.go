package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/xcixor/eld-route-planner/internal/domain"
	"github.com/xcixor/eld-route-planner/internal/ports"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Input
// problems are the caller's fault, conflicts and state errors carry
// enough context to find the blocking record, and provider failures
// surface as gateway errors rather than a fabricated plan.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, r, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
		return
	}

	var cerr *domain.ConflictError
	if errors.As(err, &cerr) {
		writeError(w, r, http.StatusConflict, cerr.Error())
		return
	}

	var serr *domain.InvalidStateError
	if errors.As(err, &serr) {
		writeError(w, r, http.StatusUnprocessableEntity, serr.Error())
		return
	}

	switch {
	case errors.Is(err, ports.ErrNotFound), errors.Is(err, domain.ErrUnknownDriver):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, ports.ErrProviderTimeout):
		writeError(w, r, http.StatusGatewayTimeout, "route provider timed out")
	case errors.Is(err, ports.ErrProviderUnavailable):
		writeError(w, r, http.StatusBadGateway, "route provider unavailable")
	default:
		log.Printf("request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
