package configsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tallerhub/taller-status/internal/core"
	"github.com/tallerhub/taller-status/internal/metrics"
)

// ErrEmptyCatalog is returned when a source yields no car statuses. Applying
// it would blank every status name, so the refresh is treated as failed.
var ErrEmptyCatalog = errors.New("configuration has no car statuses")

// Result summarizes one successful refresh.
type Result struct {
	Source          string           `json:"source"`
	CarStatuses     int              `json:"car_statuses"`
	ServiceStatuses int              `json:"service_request_statuses"`
	Dropped         int              `json:"dropped"`
	Missing         map[string][]int `json:"missing,omitempty"`
	RefreshedAt     string           `json:"refreshed_at"`
}

// Loader pulls configuration from a Source into the engines. A failed refresh
// leaves the engines with the catalog they already had.
type Loader struct {
	source    Source
	fallback  Source
	engines   *core.Engines
	publisher core.EventPublisher
	logger    *slog.Logger

	mu   sync.Mutex
	last *Result
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFallback sets a source used when the primary fails before the engines
// have ever been initialized.
func WithFallback(src Source) LoaderOption {
	return func(l *Loader) { l.fallback = src }
}

// WithPublisher announces successful refreshes as config.reloaded events.
func WithPublisher(p core.EventPublisher) LoaderOption {
	return func(l *Loader) { l.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader feeding engines from src.
func NewLoader(src Source, engines *core.Engines, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:  src,
		engines: engines,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Refresh loads the configuration and swaps it into the engines.
func (l *Loader) Refresh(ctx context.Context) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	src := l.source
	cfg, err := load(ctx, src)
	if err != nil && l.fallback != nil && !l.engines.Ready() {
		l.logger.Warn("config source failed, using fallback",
			"source", src.Name(), "fallback", l.fallback.Name(), "error", err)
		src = l.fallback
		cfg, err = load(ctx, src)
	}
	if err != nil {
		metrics.ConfigRefreshes.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("refresh status config: %w", err)
	}

	l.engines.Initialize(cfg)

	res := &Result{
		Source:      src.Name(),
		Dropped:     cfg.Dropped,
		Missing:     map[string][]int{},
		RefreshedAt: core.NowFormatted(),
	}
	for _, e := range l.engines.All() {
		metrics.RegistryStatuses.WithLabelValues(e.Name()).Set(float64(e.Registry().Len()))
		if missing := e.MissingStatuses(); len(missing) > 0 {
			res.Missing[e.Name()] = missing
			l.logger.Warn("status catalog is missing statuses used by the transition table",
				"machine", e.Name(), "missing", missing)
		}
	}
	res.CarStatuses = l.engines.Cars.Registry().Len()
	res.ServiceStatuses = l.engines.ServiceRequests.Registry().Len()
	if len(res.Missing) == 0 {
		res.Missing = nil
	}
	if cfg.Dropped > 0 {
		l.logger.Warn("skipped undecodable status entries", "count", cfg.Dropped)
	}

	metrics.ConfigRefreshes.WithLabelValues("ok").Inc()
	metrics.ConfigLastRefresh.Set(float64(time.Now().Unix()))
	l.logger.Info("status config refreshed",
		"source", res.Source, "cars", res.CarStatuses, "service_requests", res.ServiceStatuses)

	if l.publisher != nil {
		ev := &core.StatusEvent{
			ID:         core.NewUUIDv7(),
			EventType:  core.EventConfigReloaded,
			OccurredAt: res.RefreshedAt,
		}
		if err := l.publisher.PublishStatusEvent(ctx, ev); err != nil {
			l.logger.Warn("failed to publish config reload event", "error", err)
		}
	}

	l.last = res
	return res, nil
}

func load(ctx context.Context, src Source) (*core.SystemConfig, error) {
	cfg, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil || len(cfg.CarStatuses) == 0 {
		return nil, fmt.Errorf("%s: %w", src.Name(), ErrEmptyCatalog)
	}
	return cfg, nil
}

// Last returns the result of the most recent successful refresh, or nil.
func (l *Loader) Last() *Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}
