package core

import "context"

// VehicleManager handles vehicle registration and repair-status changes.
type VehicleManager interface {
	CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*Vehicle, error)
	ListVehicles(ctx context.Context, filter StatusFilter) ([]*Vehicle, error)
	VehicleSummary(ctx context.Context) ([]StatusCount, error)
	TransitionVehicle(ctx context.Context, id string, req *TransitionRequest) (*Vehicle, error)
}

// ServiceRequestManager handles service requests.
type ServiceRequestManager interface {
	CreateServiceRequest(ctx context.Context, req *CreateServiceRequestRequest) (*ServiceRequest, error)
	GetServiceRequest(ctx context.Context, id string) (*ServiceRequest, error)
	ListServiceRequests(ctx context.Context, filter StatusFilter) ([]*ServiceRequest, error)
	ServiceRequestSummary(ctx context.Context) ([]StatusCount, error)
	TransitionServiceRequest(ctx context.Context, id string, req *TransitionRequest) (*ServiceRequest, error)
}

// Backend is the full set of operations the transports expose.
type Backend interface {
	VehicleManager
	ServiceRequestManager

	// Health returns the health status.
	Health(ctx context.Context) (*HealthResponse, error)

	// Close releases backend resources.
	Close() error
}

// HealthResponse describes service health.
type HealthResponse struct {
	Status   string          `json:"status"`
	Version  string          `json:"version"`
	Uptime   int64           `json:"uptime_seconds"`
	Store    StoreHealth     `json:"store"`
	Machines []MachineHealth `json:"machines"`
}

// StoreHealth describes the persistence layer.
type StoreHealth struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// MachineHealth describes one status engine.
type MachineHealth struct {
	Name        string `json:"name"`
	Initialized bool   `json:"initialized"`
	Statuses    int    `json:"statuses"`
	Missing     []int  `json:"missing,omitempty"`
}
