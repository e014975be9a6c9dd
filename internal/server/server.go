package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tallerhub/taller-status/internal/api"
	"github.com/tallerhub/taller-status/internal/core"
	"github.com/tallerhub/taller-status/internal/metrics"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Backend    core.Backend
	Engines    *core.Engines
	Reloader   api.Reloader
	Subscriber core.EventSubscriber
	StoreType  string
}

// NewRouter creates and configures the HTTP router with all routes.
func NewRouter(deps Deps, logger *slog.Logger, cfg Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)
	r.Use(api.ServiceHeaders)
	r.Use(api.RequestLogger(logger))
	r.Use(api.ValidateContentType)

	// Optional API key authentication
	if cfg.APIKey != "" {
		r.Use(api.KeyAuth(cfg.APIKey, "/metrics", "/v1/health"))
	}

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Create handlers
	systemHandler := api.NewSystemHandler(deps.Backend, deps.Engines, deps.StoreType)
	statusHandler := api.NewStatusHandler(deps.Engines, deps.Reloader)
	vehicleHandler := api.NewVehicleHandler(deps.Backend)
	requestHandler := api.NewServiceRequestHandler(deps.Backend)

	// System endpoints
	r.Get("/v1/manifest", systemHandler.Manifest)
	r.Get("/v1/health", systemHandler.Health)

	// Status catalog endpoints
	r.Get("/v1/statuses/{machine}", statusHandler.List)
	r.Get("/v1/statuses/{machine}/{id}", statusHandler.Get)
	r.Post("/v1/statuses/{machine}/validate", statusHandler.Validate)
	r.Post("/v1/admin/config/reload", statusHandler.Reload)

	// Vehicle endpoints
	r.Get("/v1/vehicles", vehicleHandler.List)
	r.Post("/v1/vehicles", vehicleHandler.Create)
	r.Get("/v1/vehicles/summary", vehicleHandler.Summary)
	r.Get("/v1/vehicles/{id}", vehicleHandler.Get)
	r.Post("/v1/vehicles/{id}/transition", vehicleHandler.Transition)

	// Service request endpoints
	r.Get("/v1/service-requests", requestHandler.List)
	r.Post("/v1/service-requests", requestHandler.Create)
	r.Get("/v1/service-requests/summary", requestHandler.Summary)
	r.Get("/v1/service-requests/{id}", requestHandler.Get)
	r.Post("/v1/service-requests/{id}/transition", requestHandler.Transition)

	// Real-time status events
	if deps.Subscriber != nil {
		r.Get("/v1/events", api.NewSSEHandler(deps.Subscriber).Stream)
	}

	return r
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start).Seconds()
		path := metricRoutePattern(r)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, fmt.Sprintf("%d", ww.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, path, fmt.Sprintf("%d", ww.Status())).Observe(duration)
	})
}

func metricRoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
