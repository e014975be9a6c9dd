// Package metrics provides Prometheus instrumentation for the status service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StatusTransitions counts transition attempts by machine and result
	// (ok, invalid, conflict, not_found, error).
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taller",
		Name:      "status_transitions_total",
		Help:      "Total number of status transition attempts.",
	}, []string{"machine", "result"})

	// StatusValidations counts dry-run transition checks.
	StatusValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taller",
		Name:      "status_validations_total",
		Help:      "Total number of transition validations.",
	}, []string{"machine", "result"})

	// RegistryStatuses tracks how many statuses each registry holds.
	RegistryStatuses = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "taller",
		Name:      "registry_statuses",
		Help:      "Number of statuses loaded in each registry.",
	}, []string{"machine"})

	// ConfigRefreshes counts configuration refreshes by result.
	ConfigRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taller",
		Name:      "config_refresh_total",
		Help:      "Total number of status configuration refreshes.",
	}, []string{"result"})

	// ConfigLastRefresh records the unix time of the last successful refresh.
	ConfigLastRefresh = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taller",
		Name:      "config_last_refresh_timestamp_seconds",
		Help:      "Unix timestamp of the last successful configuration refresh.",
	})

	// EventsPublished counts status events handed to each sink.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taller",
		Name:      "events_published_total",
		Help:      "Total number of status events published.",
	}, []string{"sink", "result"})

	// ServerInfo exposes static server metadata as labels.
	ServerInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "taller",
		Name:      "server_info",
		Help:      "Static server metadata.",
	}, []string{"version", "store"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taller",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taller",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})
)

// Init sets static server metadata on the info metric.
func Init(version, store string) {
	ServerInfo.WithLabelValues(version, store).Set(1)
}
