package configsource

import (
	"context"
	"errors"
	"testing"

	"github.com/tallerhub/taller-status/internal/core"
)

type failingSource struct{ err error }

func (f failingSource) Load(context.Context) (*core.SystemConfig, error) { return nil, f.err }
func (f failingSource) Name() string                                     { return "failing" }

type switchSource struct {
	cfg *core.SystemConfig
	err error
}

func (s *switchSource) Load(context.Context) (*core.SystemConfig, error) { return s.cfg, s.err }
func (s *switchSource) Name() string                                     { return "switch" }

type capturePublisher struct{ events []*core.StatusEvent }

func (c *capturePublisher) PublishStatusEvent(_ context.Context, ev *core.StatusEvent) error {
	c.events = append(c.events, ev)
	return nil
}
func (c *capturePublisher) Close() error { return nil }

func TestLoader_RefreshInitializesEngines(t *testing.T) {
	engines := core.NewEngines()
	pub := &capturePublisher{}
	l := NewLoader(NewStaticSource(nil), engines, WithPublisher(pub))

	res, err := l.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !engines.Ready() {
		t.Fatal("engines should be ready after refresh")
	}
	if res.CarStatuses != 8 || res.ServiceStatuses != 5 {
		t.Errorf("result = %+v", res)
	}
	if res.Missing != nil {
		t.Errorf("Missing = %v, want nil", res.Missing)
	}
	if l.Last() != res {
		t.Error("Last should return the latest result")
	}
	if len(pub.events) != 1 || pub.events[0].EventType != core.EventConfigReloaded {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestLoader_ReportsMissingStatuses(t *testing.T) {
	engines := core.NewEngines()
	src := NewStaticSource(&core.SystemConfig{
		CarStatuses: []core.Status{{ID: core.CarStatusEntrada, Name: "Entrada"}},
	})

	res, err := NewLoader(src, engines).Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	missing := res.Missing[core.MachineCars]
	if len(missing) != 7 {
		t.Errorf("missing car statuses = %v, want 7 ids", missing)
	}
	if _, ok := res.Missing[core.MachineServiceRequests]; ok {
		t.Error("service-request catalog falls back to defaults and should not be missing anything")
	}
}

func TestLoader_FailureKeepsPreviousCatalog(t *testing.T) {
	engines := core.NewEngines()
	src := &switchSource{cfg: core.DefaultSystemConfig()}
	l := NewLoader(src, engines)

	if _, err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}

	src.cfg, src.err = nil, errors.New("backend down")
	if _, err := l.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if got := engines.Cars.StatusName(core.CarStatusEnReparacion); got != "En Reparación" {
		t.Errorf("StatusName after failed refresh = %q, want previous catalog", got)
	}
}

func TestLoader_FallbackOnlyBeforeFirstSuccess(t *testing.T) {
	engines := core.NewEngines()
	l := NewLoader(failingSource{err: errors.New("offline")}, engines,
		WithFallback(NewStaticSource(nil)))

	res, err := l.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh with fallback: %v", err)
	}
	if res.Source != "static" {
		t.Errorf("Source = %q, want static", res.Source)
	}

	if _, err := l.Refresh(context.Background()); err == nil {
		t.Fatal("fallback should not be used once engines are ready")
	}
}

func TestLoader_EmptyCatalogKeepsPreviousCatalog(t *testing.T) {
	engines := core.NewEngines()
	src := &switchSource{cfg: core.DefaultSystemConfig()}
	l := NewLoader(src, engines)

	if _, err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}
	first := l.Last()

	for name, cfg := range map[string]*core.SystemConfig{
		"null body":       nil,
		"no car statuses": {ServiceRequestStatuses: core.DefaultServiceRequestStatuses()},
	} {
		src.cfg = cfg
		if _, err := l.Refresh(context.Background()); !errors.Is(err, ErrEmptyCatalog) {
			t.Errorf("%s: err = %v, want ErrEmptyCatalog", name, err)
		}
	}

	if got := engines.Cars.StatusName(core.CarStatusEntrada); got != "Entrada" {
		t.Errorf("StatusName after empty refresh = %q, want previous catalog", got)
	}
	if l.Last() != first {
		t.Error("Last should still report the last successful refresh")
	}
}

func TestLoader_EmptyPrimaryUsesFallback(t *testing.T) {
	engines := core.NewEngines()
	l := NewLoader(&switchSource{cfg: &core.SystemConfig{}}, engines,
		WithFallback(NewStaticSource(nil)))

	res, err := l.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res.Source != "static" || res.CarStatuses != 8 {
		t.Errorf("result = %+v", res)
	}
}
