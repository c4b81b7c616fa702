// Package metrics owns the Prometheus registry of the service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry served on /metrics.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// ToursPlanned counts planning outcomes by algorithm and status (ok, error).
	ToursPlanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tours_planned_total", Help: "Tour planning runs by algorithm and outcome."},
		[]string{"algorithm", "status"},
	)
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "tour_solve_duration_seconds", Help: "Solver wall time in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 20, 60}},
		[]string{"algorithm"},
	)
	TourCost = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "tour_cost_meters", Help: "Cost of computed tours in meters.", Buckets: prometheus.ExponentialBuckets(500, 2, 10)},
		[]string{"algorithm"},
	)
	PathCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "path_cache_lookups_total", Help: "Shortest-path cache lookups by result (hit, miss, error)."},
		[]string{"result"},
	)
)

var regOnce sync.Once

// RegisterDefault registers the collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(ToursPlanned)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(TourCost)
		Registry.MustRegister(PathCacheLookups)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
