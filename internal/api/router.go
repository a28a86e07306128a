package api

import (
	"context"
	"ht-planning-service/internal/api/handlers"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/metrics"
	"ht-planning-service/internal/ports"
	"ht-planning-service/internal/services"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Deps are the collaborators the HTTP layer needs. Handlers stay unaware of
// concrete adapters.
type Deps struct {
	Service  *services.RunService
	Repo     ports.OutcomeRepository
	Registry *handlers.RunRegistry
	Config   config.Config
	BaseCtx  context.Context
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	metrics.RegisterDefault()

	if d.Registry == nil {
		d.Registry = handlers.NewRunRegistry()
	}
	runs := &handlers.RunHandler{
		Service:  d.Service,
		Repo:     d.Repo,
		Registry: d.Registry,
		Defaults: d.Config,
		BaseCtx:  d.BaseCtx,
	}

	var limiter *rate.Limiter
	if rps := d.Config.HTTP.RunsPerSecond; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), max(d.Config.HTTP.RunBurst, 1))
	}

	health := &handlers.HealthHandler{Registry: d.Registry}
	if d.Service != nil {
		health.Topo = d.Service.Topo
	}

	mux.Handle("/health", instrument("/health", http.HandlerFunc(health.Health)))
	mux.Handle("POST /runs", instrument("/runs", rateLimit(limiter, http.HandlerFunc(runs.Create))))
	mux.Handle("GET /runs/{id}", instrument("/runs/{id}", http.HandlerFunc(runs.Get)))
	mux.Handle("GET /runs/{id}/outcomes", instrument("/runs/{id}/outcomes", http.HandlerFunc(runs.Outcomes)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}
