package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"tour-planner-service/internal/api/handlers"
	"tour-planner-service/internal/config"
	"tour-planner-service/internal/metrics"
	"tour-planner-service/internal/ports"
)

// Dependencies of the HTTP API. Cache may be nil.
type Deps struct {
	Networks    ports.RoadNetworkRepository
	RequestSets ports.RequestSetRepository
	Tours       ports.TourRepository
	Cache       ports.PathCache
	Solver      config.Solver
	// PlanRate and PlanBurst size the token bucket in front of tour planning.
	PlanRate  rate.Limit
	PlanBurst int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	metrics.RegisterDefault()
	mux := http.NewServeMux()

	networkHandler := &handlers.NetworkHandler{Repo: deps.Networks}
	tourHandler := &handlers.TourHandler{
		Networks:    deps.Networks,
		RequestSets: deps.RequestSets,
		Tours:       deps.Tours,
		Cache:       deps.Cache,
		Defaults:    deps.Solver,
	}

	burst := deps.PlanBurst
	if burst <= 0 {
		burst = 1
	}
	limit := deps.PlanRate
	if limit == 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, burst)

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/networks", networkHandler.List)
	mux.HandleFunc("/networks/{id}", networkHandler.Get)
	mux.HandleFunc("/networks/{id}/streets", networkHandler.Streets)
	mux.Handle("/tours", rateLimit(limiter, http.HandlerFunc(tourHandler.Plan)))
	mux.HandleFunc("/tours/{id}", tourHandler.Get)
	mux.HandleFunc("/tours/{id}/requests", tourHandler.RemoveRequest)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(metricsMiddleware(mux)))
}
