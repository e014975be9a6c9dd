package events

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tallerhub/taller-status/internal/core"
	"github.com/tallerhub/taller-status/internal/metrics"
)

func statusEvent(machine, entityID string, from, to int) *core.StatusEvent {
	return &core.StatusEvent{
		ID:        core.NewUUIDv7(),
		EventType: core.EventStatusChanged,
		Machine:   machine,
		EntityID:  entityID,
		From:      from,
		To:        to,
	}
}

func receive(t *testing.T, ch <-chan *core.StatusEvent) *core.StatusEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertEmpty(t *testing.T, ch <-chan *core.StatusEvent) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestBroker_Filters(t *testing.T) {
	b := NewBroker(nil)
	defer b.Close()

	entityCh, unsubEntity, _ := b.SubscribeEntity("veh-1")
	defer unsubEntity()
	machineCh, unsubMachine, _ := b.SubscribeMachine(core.MachineServiceRequests)
	defer unsubMachine()
	allCh, unsubAll, _ := b.SubscribeAll()
	defer unsubAll()

	ctx := context.Background()
	_ = b.PublishStatusEvent(ctx, statusEvent(core.MachineCars, "veh-1", 1, 2))
	_ = b.PublishStatusEvent(ctx, statusEvent(core.MachineServiceRequests, "req-1", 1, 2))

	if ev := receive(t, entityCh); ev.EntityID != "veh-1" {
		t.Errorf("entity subscriber got %q", ev.EntityID)
	}
	assertEmpty(t, entityCh)

	if ev := receive(t, machineCh); ev.EntityID != "req-1" {
		t.Errorf("machine subscriber got %q", ev.EntityID)
	}
	assertEmpty(t, machineCh)

	receive(t, allCh)
	receive(t, allCh)
}

func TestBroker_DropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBroker(nil)
	defer b.Close()

	ch, unsub, _ := b.SubscribeAll()
	defer unsub()

	for i := 0; i < 100; i++ {
		if err := b.PublishStatusEvent(context.Background(), statusEvent(core.MachineCars, "veh-1", 1, 2)); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if got := len(ch); got != 64 {
		t.Errorf("buffered events = %d, want 64", got)
	}
}

func brokerCount(result string) float64 {
	return testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("broker", result))
}

func TestBroker_MetricsCountDeliveries(t *testing.T) {
	b := NewBroker(nil)
	defer b.Close()
	ctx := context.Background()

	ok, dropped, unrouted := brokerCount("ok"), brokerCount("dropped"), brokerCount("unrouted")

	_ = b.PublishStatusEvent(ctx, statusEvent(core.MachineCars, "veh-1", 1, 2))
	if got := brokerCount("unrouted") - unrouted; got != 1 {
		t.Errorf("unrouted delta = %v, want 1", got)
	}

	ch, unsub, _ := b.SubscribeEntity("veh-1")
	defer unsub()
	for i := 0; i < 64; i++ {
		_ = b.PublishStatusEvent(ctx, statusEvent(core.MachineCars, "veh-1", 1, 2))
	}
	if got := brokerCount("ok") - ok; got != 64 {
		t.Errorf("ok delta = %v, want 64", got)
	}

	// The only matching subscriber is full now.
	_ = b.PublishStatusEvent(ctx, statusEvent(core.MachineCars, "veh-1", 1, 2))
	if got := brokerCount("ok") - ok; got != 64 {
		t.Errorf("ok delta after drop = %v, want 64", got)
	}
	if got := brokerCount("dropped") - dropped; got != 1 {
		t.Errorf("dropped delta = %v, want 1", got)
	}
	if len(ch) != 64 {
		t.Errorf("buffered = %d, want 64", len(ch))
	}
}

func TestBroker_UnsubscribeAfterClose(t *testing.T) {
	b := NewBroker(nil)
	ch, unsub, _ := b.SubscribeAll()

	_ = b.Close()
	unsub()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}

	late, _, _ := b.SubscribeAll()
	if _, ok := <-late; ok {
		t.Error("subscribing after Close should return a closed channel")
	}
}
