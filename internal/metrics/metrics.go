package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// TripsPlanned counts planning outcomes (planned, validation_failed,
	// conflict, provider_error, error).
	TripsPlanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trips_planned_total", Help: "Trip planning requests by outcome."},
		[]string{"outcome"},
	)
	// HOSWarnings counts regulatory warnings attached to planned trips,
	// by violation code.
	HOSWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hos_warnings_total", Help: "HOS warnings on planned trips by code."},
		[]string{"code"},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors on the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(TripsPlanned)
		Registry.MustRegister(HOSWarnings)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
