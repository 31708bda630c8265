package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xcixor/eld-route-planner/internal/api/handlers"
	"github.com/xcixor/eld-route-planner/internal/metrics"
	"github.com/xcixor/eld-route-planner/internal/ports"
	"github.com/xcixor/eld-route-planner/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.TripRepository, planner *services.Planner) http.Handler {
	mux := http.NewServeMux()

	planHandler := &handlers.PlanHandler{Planner: planner}
	tripHandler := &handlers.TripHandler{Repo: repo}
	cycleHandler := &handlers.CycleHandler{Tracker: planner.Tracker()}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/plan-trip", planHandler.Plan)
	mux.HandleFunc("GET /trips", tripHandler.List)
	mux.HandleFunc("GET /trips/{id}", tripHandler.Get)
	mux.HandleFunc("GET /trips/{id}/logs", tripHandler.Logs)
	mux.HandleFunc("POST /trips/{id}/start", tripHandler.Start)
	mux.HandleFunc("POST /trips/{id}/complete", tripHandler.Complete)
	mux.HandleFunc("POST /trips/{id}/cancel", tripHandler.Cancel)
	mux.HandleFunc("GET /drivers/{id}/cycle", cycleHandler.Get)

	metrics.RegisterDefault()
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return loggingMiddleware(metricsMiddleware(mux))
}
