package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tallerhub/taller-status/internal/core"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "taller.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_VehicleLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	rec := VehicleToRecord(&core.Vehicle{
		ID: "veh-1", Plate: "1234-ABC", Brand: "Seat", Year: 2019,
		StatusID: core.CarStatusEntrada, CreatedAt: "2025-01-01T10:00:00.000Z",
	})
	if err := store.PutVehicle(ctx, rec); err != nil {
		t.Fatalf("PutVehicle: %v", err)
	}
	if err := store.PutVehicle(ctx, rec); err == nil {
		t.Fatal("second PutVehicle with the same ID should fail")
	}

	if err := store.UpdateVehicleStatus(ctx, "veh-1", core.CarStatusEntrada, core.CarStatusPendiente, "2025-01-02T10:00:00.000Z"); err != nil {
		t.Fatalf("UpdateVehicleStatus: %v", err)
	}

	got, err := store.GetVehicle(ctx, "veh-1")
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if got.StatusID != core.CarStatusPendiente || got.UpdatedAt != "2025-01-02T10:00:00.000Z" {
		t.Errorf("after update = %+v", got)
	}
	if got.Brand != "Seat" || got.Year != 2019 || got.PK != "VEHICLE#veh-1" {
		t.Errorf("record = %+v", got)
	}
}

func TestSQLiteStore_UpdateConflictAndNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	_ = store.PutVehicle(ctx, VehicleToRecord(&core.Vehicle{ID: "veh-1", Plate: "X", StatusID: core.CarStatusPendiente, CreatedAt: core.NowFormatted()}))

	err := store.UpdateVehicleStatus(ctx, "veh-1", core.CarStatusEntrada, core.CarStatusPendiente, core.NowFormatted())
	if !errors.Is(err, ErrStatusConflict) {
		t.Errorf("stale update error = %v, want ErrStatusConflict", err)
	}

	err = store.UpdateServiceRequestStatus(ctx, "missing", 1, 2, core.NowFormatted())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing update error = %v, want ErrNotFound", err)
	}

	got, err := store.GetVehicle(ctx, "veh-1")
	if err != nil {
		t.Fatalf("GetVehicle: %v", err)
	}
	if got.StatusID != core.CarStatusPendiente {
		t.Errorf("status changed by a failed update: %d", got.StatusID)
	}
}

func TestSQLiteStore_NotFound(t *testing.T) {
	store := newTestSQLiteStore(t)
	if _, err := store.GetVehicle(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVehicle error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetServiceRequest(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetServiceRequest error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_ServiceRequestsOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	_ = store.PutVehicle(ctx, VehicleToRecord(&core.Vehicle{ID: "veh-1", Plate: "X", StatusID: 1, CreatedAt: "2025-01-01T00:00:00.000Z"}))

	for _, sr := range []*core.ServiceRequest{
		{ID: "b", VehicleID: "veh-1", Description: "frenos", StatusID: 1, CreatedAt: "2025-01-02T00:00:00.000Z"},
		{ID: "a", VehicleID: "veh-1", Description: "aceite", StatusID: 1, CreatedAt: "2025-01-03T00:00:00.000Z"},
		{ID: "c", VehicleID: "veh-1", Description: "ruedas", StatusID: 1, CreatedAt: "2025-01-01T00:00:00.000Z"},
	} {
		if err := store.PutServiceRequest(ctx, ServiceRequestToRecord(sr)); err != nil {
			t.Fatalf("PutServiceRequest(%s): %v", sr.ID, err)
		}
	}

	list, err := store.ListServiceRequests(ctx)
	if err != nil {
		t.Fatalf("ListServiceRequests: %v", err)
	}
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "c" || ids[1] != "b" || ids[2] != "a" {
		t.Errorf("order = %v, want [c b a]", ids)
	}

	if err := store.UpdateServiceRequestStatus(ctx, "a", core.RequestStatusPending, core.RequestStatusAssigned, core.NowFormatted()); err != nil {
		t.Fatalf("UpdateServiceRequestStatus: %v", err)
	}
	got, _ := store.GetServiceRequest(ctx, "a")
	if got.StatusID != core.RequestStatusAssigned || got.Description != "aceite" {
		t.Errorf("request = %+v", got)
	}
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "taller.db")

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	_ = store.PutVehicle(ctx, VehicleToRecord(&core.Vehicle{ID: "veh-1", Plate: "X", StatusID: 1, CreatedAt: core.NowFormatted()}))
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err = OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	list, err := store.ListVehicles(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListVehicles = %v, %v", list, err)
	}
}
