package state

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store for local development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	vehicles map[string]VehicleRecord
	requests map[string]ServiceRequestRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vehicles: make(map[string]VehicleRecord),
		requests: make(map[string]ServiceRequestRecord),
	}
}

// Type implements Store.
func (m *MemoryStore) Type() string { return "memory" }

func (m *MemoryStore) PutVehicle(_ context.Context, record *VehicleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[record.ID]; ok {
		return fmt.Errorf("failed to put vehicle: item already exists")
	}
	m.vehicles[record.ID] = *record
	return nil
}

func (m *MemoryStore) GetVehicle(_ context.Context, id string) (*VehicleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("failed to get vehicle %s: %w", id, ErrNotFound)
	}
	return &r, nil
}

func (m *MemoryStore) ListVehicles(_ context.Context) ([]*VehicleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*VehicleRecord, 0, len(m.vehicles))
	for _, r := range m.vehicles {
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GSI1SK < out[j].GSI1SK })
	return out, nil
}

func (m *MemoryStore) UpdateVehicleStatus(_ context.Context, id string, from, to int, updatedAt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.vehicles[id]
	if !ok {
		return fmt.Errorf("failed to update vehicle status: %w", ErrNotFound)
	}
	if r.StatusID != from {
		return fmt.Errorf("failed to update vehicle status: %w", ErrStatusConflict)
	}
	r.StatusID = to
	r.UpdatedAt = updatedAt
	m.vehicles[id] = r
	return nil
}

func (m *MemoryStore) PutServiceRequest(_ context.Context, record *ServiceRequestRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[record.ID]; ok {
		return fmt.Errorf("failed to put service request: item already exists")
	}
	m.requests[record.ID] = *record
	return nil
}

func (m *MemoryStore) GetServiceRequest(_ context.Context, id string) (*ServiceRequestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("failed to get service request %s: %w", id, ErrNotFound)
	}
	return &r, nil
}

func (m *MemoryStore) ListServiceRequests(_ context.Context) ([]*ServiceRequestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*ServiceRequestRecord, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GSI1SK < out[j].GSI1SK })
	return out, nil
}

func (m *MemoryStore) UpdateServiceRequestStatus(_ context.Context, id string, from, to int, updatedAt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return fmt.Errorf("failed to update service request status: %w", ErrNotFound)
	}
	if r.StatusID != from {
		return fmt.Errorf("failed to update service request status: %w", ErrStatusConflict)
	}
	r.StatusID = to
	r.UpdatedAt = updatedAt
	m.requests[id] = r
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
