package api

import (
	"net/http"

	"github.com/tallerhub/taller-status/internal/core"
)

// SystemHandler handles system-related HTTP endpoints.
type SystemHandler struct {
	backend core.Backend
	engines *core.Engines
	store   string
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(backend core.Backend, engines *core.Engines, store string) *SystemHandler {
	return &SystemHandler{backend: backend, engines: engines, store: store}
}

// Manifest handles GET /v1/manifest
func (h *SystemHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	machines := make([]map[string]any, 0, 2)
	for _, e := range h.engines.All() {
		machines = append(machines, map[string]any{
			"name":     e.Name(),
			"statuses": e.Registry().Len(),
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"name":     "taller-status",
		"version":  core.Version,
		"store":    h.store,
		"machines": machines,
	})
}

// Health handles GET /v1/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp, err := h.backend.Health(r.Context())
	if err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	WriteJSON(w, status, resp)
}
