package events

import (
	"context"
	"errors"

	"github.com/tallerhub/taller-status/internal/core"
)

// Fanout publishes every event to each of its sinks. All sinks are tried even
// if one fails; the errors are joined.
type Fanout struct {
	sinks []core.EventPublisher
}

// NewFanout creates a Fanout over sinks. Nil sinks are skipped.
func NewFanout(sinks ...core.EventPublisher) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// PublishStatusEvent implements core.EventPublisher.
func (f *Fanout) PublishStatusEvent(ctx context.Context, event *core.StatusEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.PublishStatusEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
