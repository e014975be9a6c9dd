package api

import (
	"net/http"

	"github.com/tallerhub/taller-status/internal/core"
)

// VehicleHandler handles vehicle endpoints.
type VehicleHandler struct {
	backend core.VehicleManager
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(backend core.VehicleManager) *VehicleHandler {
	return &VehicleHandler{backend: backend}
}

// List handles GET /v1/vehicles?status=
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := statusFilter(r)
	if apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}
	vehicles, err := h.backend.ListVehicles(r.Context(), filter)
	if err != nil {
		HandleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"vehicles": vehicles,
		"count":    len(vehicles),
		"status":   filter.String(),
	})
}

// Create handles POST /v1/vehicles
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req core.CreateVehicleRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}
	v, err := h.backend.CreateVehicle(r.Context(), &req)
	if err != nil {
		HandleError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/vehicles/"+v.ID)
	WriteJSON(w, http.StatusCreated, map[string]any{"vehicle": v})
}

// Summary handles GET /v1/vehicles/summary
func (h *VehicleHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.backend.VehicleSummary(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

// Get handles GET /v1/vehicles/{id}
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, apiErr := pathEntityID(r)
	if apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}
	v, err := h.backend.GetVehicle(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"vehicle": v})
}

// Transition handles POST /v1/vehicles/{id}/transition
func (h *VehicleHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, apiErr := pathEntityID(r)
	if apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}
	var req core.TransitionRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}
	v, err := h.backend.TransitionVehicle(r.Context(), id, &req)
	if err != nil {
		HandleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"vehicle": v})
}
