package api

import (
	"net/http"

	"github.com/tallerhub/taller-status/internal/core"
)

// ServiceRequestHandler handles service-request endpoints.
type ServiceRequestHandler struct {
	backend core.ServiceRequestManager
}

// NewServiceRequestHandler creates a new ServiceRequestHandler.
func NewServiceRequestHandler(backend core.ServiceRequestManager) *ServiceRequestHandler {
	return &ServiceRequestHandler{backend: backend}
}

// List handles GET /v1/service-requests?status=
func (h *ServiceRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := statusFilter(r)
	if apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}
	requests, err := h.backend.ListServiceRequests(r.Context(), filter)
	if err != nil {
		HandleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"service_requests": requests,
		"count":            len(requests),
		"status":           filter.String(),
	})
}

// Create handles POST /v1/service-requests
func (h *ServiceRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req core.CreateServiceRequestRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}
	sr, err := h.backend.CreateServiceRequest(r.Context(), &req)
	if err != nil {
		HandleError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/service-requests/"+sr.ID)
	WriteJSON(w, http.StatusCreated, map[string]any{"service_request": sr})
}

// Summary handles GET /v1/service-requests/summary
func (h *ServiceRequestHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.backend.ServiceRequestSummary(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

// Get handles GET /v1/service-requests/{id}
func (h *ServiceRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, apiErr := pathEntityID(r)
	if apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}
	sr, err := h.backend.GetServiceRequest(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"service_request": sr})
}

// Transition handles POST /v1/service-requests/{id}/transition
func (h *ServiceRequestHandler) Transition(w http.ResponseWriter, r *http.Request) {
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
	sr, err := h.backend.TransitionServiceRequest(r.Context(), id, &req)
	if err != nil {
		HandleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"service_request": sr})
}
