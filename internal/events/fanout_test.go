package events

import (
	"context"
	"errors"
	"testing"

	"github.com/tallerhub/taller-status/internal/core"
)

type recordingSink struct {
	got    []*core.StatusEvent
	err    error
	closed bool
}

func (r *recordingSink) PublishStatusEvent(_ context.Context, ev *core.StatusEvent) error {
	r.got = append(r.got, ev)
	return r.err
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func TestFanout_PublishesToEverySink(t *testing.T) {
	failing := &recordingSink{err: errors.New("down")}
	ok := &recordingSink{}
	f := NewFanout(failing, nil, ok)

	err := f.PublishStatusEvent(context.Background(), statusEvent(core.MachineCars, "veh-1", 1, 2))
	if err == nil {
		t.Fatal("expected error from failing sink")
	}
	if len(ok.got) != 1 {
		t.Errorf("healthy sink received %d events, want 1", len(ok.got))
	}

	_ = f.Close()
	if !failing.closed || !ok.closed {
		t.Error("Close should close every sink")
	}
}
