package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/tallerhub/taller-status/internal/core"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStatusConflict is returned when a conditional status update finds a
	// different current status than the caller validated against.
	ErrStatusConflict = errors.New("status changed concurrently")
)

// Item kinds, used as sort keys and in the GSI1 partition.
const (
	KindVehicle = "VEHICLE"
	KindRequest = "REQUEST"
)

// VehicleRecord represents a vehicle stored in DynamoDB.
type VehicleRecord struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	ID         string `dynamodbav:"id"`
	Plate      string `dynamodbav:"plate"`
	Brand      string `dynamodbav:"brand,omitempty"`
	Model      string `dynamodbav:"model,omitempty"`
	Year       int    `dynamodbav:"year,omitempty"`
	OwnerID    string `dynamodbav:"owner_id,omitempty"`
	MechanicID string `dynamodbav:"mechanic_id,omitempty"`
	StatusID   int    `dynamodbav:"status_id"`
	CreatedAt  string `dynamodbav:"created_at"`
	UpdatedAt  string `dynamodbav:"updated_at,omitempty"`

	// GSI attributes for listing
	GSI1PK string `dynamodbav:"GSI1PK,omitempty"` // KIND#VEHICLE
	GSI1SK string `dynamodbav:"GSI1SK,omitempty"` // <created_at>#<id>
}

// ServiceRequestRecord represents a service request stored in DynamoDB.
type ServiceRequestRecord struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	ID          string `dynamodbav:"id"`
	VehicleID   string `dynamodbav:"vehicle_id"`
	ClientID    string `dynamodbav:"client_id,omitempty"`
	Description string `dynamodbav:"description"`
	StatusID    int    `dynamodbav:"status_id"`
	CreatedAt   string `dynamodbav:"created_at"`
	UpdatedAt   string `dynamodbav:"updated_at,omitempty"`

	GSI1PK string `dynamodbav:"GSI1PK,omitempty"` // KIND#REQUEST
	GSI1SK string `dynamodbav:"GSI1SK,omitempty"` // <created_at>#<id>
}

// Store persists the entities whose status the engines govern. It is the only
// writer of status values.
type Store interface {
	// Vehicle operations
	PutVehicle(ctx context.Context, record *VehicleRecord) error
	GetVehicle(ctx context.Context, id string) (*VehicleRecord, error)
	ListVehicles(ctx context.Context) ([]*VehicleRecord, error)
	UpdateVehicleStatus(ctx context.Context, id string, from, to int, updatedAt string) error

	// Service request operations
	PutServiceRequest(ctx context.Context, record *ServiceRequestRecord) error
	GetServiceRequest(ctx context.Context, id string) (*ServiceRequestRecord, error)
	ListServiceRequests(ctx context.Context) ([]*ServiceRequestRecord, error)
	UpdateServiceRequestStatus(ctx context.Context, id string, from, to int, updatedAt string) error

	// Type names the backing implementation for health output.
	Type() string

	// Health check
	Ping(ctx context.Context) error

	// Close the store
	Close() error
}

func itemKey(kind, id string) string {
	return fmt.Sprintf("%s#%s", kind, id)
}

func kindPartition(kind string) string {
	return "KIND#" + kind
}

func listSortKey(createdAt, id string) string {
	return createdAt + "#" + id
}

// VehicleToRecord converts a core.Vehicle to a VehicleRecord with keys set.
func VehicleToRecord(v *core.Vehicle) *VehicleRecord {
	return &VehicleRecord{
		PK:         itemKey(KindVehicle, v.ID),
		SK:         KindVehicle,
		ID:         v.ID,
		Plate:      v.Plate,
		Brand:      v.Brand,
		Model:      v.Model,
		Year:       v.Year,
		OwnerID:    v.OwnerID,
		MechanicID: v.MechanicID,
		StatusID:   v.StatusID,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
		GSI1PK:     kindPartition(KindVehicle),
		GSI1SK:     listSortKey(v.CreatedAt, v.ID),
	}
}

// RecordToVehicle converts a VehicleRecord to a core.Vehicle.
func RecordToVehicle(r *VehicleRecord) *core.Vehicle {
	return &core.Vehicle{
		ID:         r.ID,
		Plate:      r.Plate,
		Brand:      r.Brand,
		Model:      r.Model,
		Year:       r.Year,
		OwnerID:    r.OwnerID,
		MechanicID: r.MechanicID,
		StatusID:   r.StatusID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// ServiceRequestToRecord converts a core.ServiceRequest to a record with keys set.
func ServiceRequestToRecord(sr *core.ServiceRequest) *ServiceRequestRecord {
	return &ServiceRequestRecord{
		PK:          itemKey(KindRequest, sr.ID),
		SK:          KindRequest,
		ID:          sr.ID,
		VehicleID:   sr.VehicleID,
		ClientID:    sr.ClientID,
		Description: sr.Description,
		StatusID:    sr.StatusID,
		CreatedAt:   sr.CreatedAt,
		UpdatedAt:   sr.UpdatedAt,
		GSI1PK:      kindPartition(KindRequest),
		GSI1SK:      listSortKey(sr.CreatedAt, sr.ID),
	}
}

// RecordToServiceRequest converts a record to a core.ServiceRequest.
func RecordToServiceRequest(r *ServiceRequestRecord) *core.ServiceRequest {
	return &core.ServiceRequest{
		ID:          r.ID,
		VehicleID:   r.VehicleID,
		ClientID:    r.ClientID,
		Description: r.Description,
		StatusID:    r.StatusID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
