// Package configsource loads the status catalogs that feed the engines and
// keeps them fresh.
package configsource

import (
	"context"

	"github.com/tallerhub/taller-status/internal/core"
)

// Source produces a system configuration.
type Source interface {
	// Load fetches the current configuration.
	Load(ctx context.Context) (*core.SystemConfig, error)
	// Name identifies the source in logs and reload responses.
	Name() string
}

// StaticSource serves a fixed configuration.
type StaticSource struct {
	cfg *core.SystemConfig
}

// NewStaticSource returns a source for cfg. A nil cfg serves the built-in
// catalogs.
func NewStaticSource(cfg *core.SystemConfig) *StaticSource {
	if cfg == nil {
		cfg = core.DefaultSystemConfig()
	}
	return &StaticSource{cfg: cfg}
}

// Load implements Source.
func (s *StaticSource) Load(context.Context) (*core.SystemConfig, error) {
	out := &core.SystemConfig{
		CarStatuses:            append([]core.Status(nil), s.cfg.CarStatuses...),
		ServiceRequestStatuses: append([]core.Status(nil), s.cfg.ServiceRequestStatuses...),
		Dropped:                s.cfg.Dropped,
	}
	return out, nil
}

// Name implements Source.
func (s *StaticSource) Name() string { return "static" }
