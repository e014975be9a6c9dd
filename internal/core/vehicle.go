package core

// Vehicle is a car registered at the shop. Its StatusID follows the car
// machine and is only ever written by the store.
type Vehicle struct {
	ID         string `json:"id"`
	Plate      string `json:"plate"`
	Brand      string `json:"brand,omitempty"`
	Model      string `json:"model,omitempty"`
	Year       int    `json:"year,omitempty"`
	OwnerID    string `json:"owner_id,omitempty"`
	MechanicID string `json:"mechanic_id,omitempty"`
	StatusID   int    `json:"status_id"`
	StatusName string `json:"status_name,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// CurrentStatus implements StatusHolder.
func (v *Vehicle) CurrentStatus() int { return v.StatusID }

// ServiceRequest is a client's request for work on a vehicle. Its StatusID
// follows the service-request machine.
type ServiceRequest struct {
	ID          string `json:"id"`
	VehicleID   string `json:"vehicle_id"`
	ClientID    string `json:"client_id,omitempty"`
	Description string `json:"description"`
	StatusID    int    `json:"status_id"`
	StatusCode  string `json:"status_code,omitempty"`
	StatusName  string `json:"status_name,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// CurrentStatus implements StatusHolder.
func (r *ServiceRequest) CurrentStatus() int { return r.StatusID }

// CreateVehicleRequest is the body accepted when registering a vehicle.
type CreateVehicleRequest struct {
	Plate      string `json:"plate"`
	Brand      string `json:"brand,omitempty"`
	Model      string `json:"model,omitempty"`
	Year       int    `json:"year,omitempty"`
	OwnerID    string `json:"owner_id,omitempty"`
	MechanicID string `json:"mechanic_id,omitempty"`
}

// Validate checks the request before it reaches the store.
func (r *CreateVehicleRequest) Validate() *APIError {
	if r.Plate == "" {
		return NewInvalidRequestError("The 'plate' field is required.", map[string]any{
			"field":      "plate",
			"validation": "required",
		})
	}
	if r.Year < 0 {
		return NewValidationError("The 'year' field must not be negative.", map[string]any{
			"field":    "year",
			"received": r.Year,
		})
	}
	return nil
}

// CreateServiceRequestRequest is the body accepted when opening a request.
type CreateServiceRequestRequest struct {
	VehicleID   string `json:"vehicle_id"`
	ClientID    string `json:"client_id,omitempty"`
	Description string `json:"description"`
}

// Validate checks the request before it reaches the store.
func (r *CreateServiceRequestRequest) Validate() *APIError {
	if r.VehicleID == "" {
		return NewInvalidRequestError("The 'vehicle_id' field is required.", map[string]any{
			"field":      "vehicle_id",
			"validation": "required",
		})
	}
	if r.Description == "" {
		return NewInvalidRequestError("The 'description' field is required.", map[string]any{
			"field":      "description",
			"validation": "required",
		})
	}
	return nil
}

// TransitionRequest asks to move an entity to another status. Service requests
// may name the target by code instead of ID.
type TransitionRequest struct {
	To     int    `json:"to,omitempty"`
	ToCode string `json:"to_code,omitempty"`
	Note   string `json:"note,omitempty"`
}
