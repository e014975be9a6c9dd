// Package repair implements the shop's vehicle and service-request workflows
// on top of the status engines and the state store.
package repair

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallerhub/taller-status/internal/core"
	"github.com/tallerhub/taller-status/internal/metrics"
	"github.com/tallerhub/taller-status/internal/state"
	"github.com/tallerhub/taller-status/internal/tracing"
)

// Service implements core.Backend. Every status change is checked against
// the engine first and then written with a conditional update, so the store
// never holds a status reached through an illegal edge.
type Service struct {
	engines   *core.Engines
	store     state.Store
	publisher core.EventPublisher
	startTime time.Time
	logger    *slog.Logger
}

// New creates a Service. publisher may be nil.
func New(engines *core.Engines, store state.Store, publisher core.EventPublisher) *Service {
	return &Service{
		engines:   engines,
		store:     store,
		publisher: publisher,
		startTime: time.Now(),
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Engines returns the status engines the service validates against.
func (s *Service) Engines() *core.Engines {
	return s.engines
}

// Close closes the store and the publisher.
func (s *Service) Close() error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	errs = append(errs, s.store.Close())
	return errors.Join(errs...)
}

// Health returns the health status.
func (s *Service) Health(ctx context.Context) (*core.HealthResponse, error) {
	start := time.Now()
	storeErr := s.store.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	resp := &core.HealthResponse{
		Status:  "ok",
		Version: core.Version,
		Uptime:  int64(time.Since(s.startTime).Seconds()),
		Store: core.StoreHealth{
			Type:      s.store.Type(),
			Status:    "connected",
			LatencyMs: latency,
		},
	}

	for _, e := range s.engines.All() {
		mh := core.MachineHealth{
			Name:        e.Name(),
			Initialized: e.Registry().Initialized(),
			Statuses:    e.Registry().Len(),
			Missing:     e.MissingStatuses(),
		}
		if !mh.Initialized {
			resp.Status = "degraded"
		}
		resp.Machines = append(resp.Machines, mh)
	}

	if storeErr != nil {
		resp.Status = "degraded"
		resp.Store.Status = "disconnected"
		resp.Store.Error = storeErr.Error()
		return resp, fmt.Errorf("health check failed: %w", storeErr)
	}
	if resp.Status != "ok" {
		return resp, fmt.Errorf("health check failed: status engines not initialized")
	}
	return resp, nil
}

var _ core.Backend = (*Service)(nil)

// transitionFunc persists a status change for one entity kind.
type transitionFunc func(ctx context.Context, id string, from, to int, updatedAt string) error

// transition validates and persists a move from -> to. It returns the update
// timestamp on success.
func (s *Service) transition(ctx context.Context, e *core.Engine, resource, id string, from, to int, persist transitionFunc) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "status.transition",
		tracing.Machine(e.Name()), tracing.EntityID(id), tracing.FromStatus(from), tracing.ToStatus(to))
	defer span.End()

	if !e.IsValidTransition(from, to) {
		metrics.StatusTransitions.WithLabelValues(e.Name(), "invalid").Inc()
		apiErr := core.NewInvalidTransitionError(e, from, to)
		tracing.RecordError(span, apiErr)
		return "", apiErr
	}

	now := core.NowFormatted()
	if err := persist(ctx, id, from, to, now); err != nil {
		tracing.RecordError(span, err)
		switch {
		case errors.Is(err, state.ErrStatusConflict):
			metrics.StatusTransitions.WithLabelValues(e.Name(), "conflict").Inc()
			return "", core.NewConflictError(
				fmt.Sprintf("%s '%s' is no longer in status '%s'.", resource, id, e.StatusName(from)),
				map[string]any{"machine": e.Name(), "expected": from},
			)
		case errors.Is(err, state.ErrNotFound):
			metrics.StatusTransitions.WithLabelValues(e.Name(), "not_found").Inc()
			return "", core.NewNotFoundError(resource, id)
		}
		metrics.StatusTransitions.WithLabelValues(e.Name(), "error").Inc()
		return "", err
	}

	metrics.StatusTransitions.WithLabelValues(e.Name(), "ok").Inc()
	tracing.SetOK(span)
	s.logger.Info("status changed",
		"machine", e.Name(), "id", id,
		"from", e.StatusName(from), "to", e.StatusName(to))
	return now, nil
}

// publish sends a status event. A failed publish does not undo the change.
func (s *Service) publish(ctx context.Context, e *core.Engine, id string, from, to int, note string) {
	if s.publisher == nil {
		return
	}
	ev := core.NewStatusChangedEvent(e, id, from, to)
	ev.Note = note
	if err := s.publisher.PublishStatusEvent(ctx, ev); err != nil {
		s.logger.Warn("failed to publish status event", "machine", e.Name(), "id", id, "error", err)
	}
}

func requireTarget(req *core.TransitionRequest) *core.APIError {
	if req == nil || (req.To == 0 && req.ToCode == "") {
		return core.NewInvalidRequestError("The 'to' field is required.", map[string]any{
			"field":      "to",
			"validation": "required",
		})
	}
	return nil
}

func notFoundOr(err error, resource, id string) error {
	if errors.Is(err, state.ErrNotFound) {
		return core.NewNotFoundError(resource, id)
	}
	return err
}
