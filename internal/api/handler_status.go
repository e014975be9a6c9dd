package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallerhub/taller-status/internal/configsource"
	"github.com/tallerhub/taller-status/internal/core"
	"github.com/tallerhub/taller-status/internal/metrics"
)

// Reloader refreshes the status catalogs on demand.
type Reloader interface {
	Refresh(ctx context.Context) (*configsource.Result, error)
}

// StatusHandler exposes the status engines read-only, plus catalog reloads.
type StatusHandler struct {
	engines  *core.Engines
	reloader Reloader
}

// NewStatusHandler creates a new StatusHandler. reloader may be nil.
func NewStatusHandler(engines *core.Engines, reloader Reloader) *StatusHandler {
	return &StatusHandler{engines: engines, reloader: reloader}
}

// ValidateRequest is the body of POST /v1/statuses/{machine}/validate.
type ValidateRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ValidateResponse reports whether a transition is allowed.
type ValidateResponse struct {
	Machine   string `json:"machine"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Valid     bool   `json:"valid"`
	Available []int  `json:"available"`
}

func (h *StatusHandler) machine(w http.ResponseWriter, r *http.Request) (*core.Engine, bool) {
	name := chi.URLParam(r, "machine")
	e, ok := h.engines.Machine(name)
	if !ok {
		WriteAPIError(w, core.NewNotFoundError("Machine", name))
		return nil, false
	}
	return e, true
}

// List handles GET /v1/statuses/{machine}
func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	e, ok := h.machine(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"machine":  e.Name(),
		"statuses": e.AllStatuses(),
	})
}

// Get handles GET /v1/statuses/{machine}/{id}. Unknown IDs are answered with
// the engine's defaults.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, ok := h.machine(w, r)
	if !ok {
		return
	}
	id, apiErr := pathInt(chi.URLParam(r, "id"), "id")
	if apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": e.StatusInfo(id)})
}

// Validate handles POST /v1/statuses/{machine}/validate
func (h *StatusHandler) Validate(w http.ResponseWriter, r *http.Request) {
	e, ok := h.machine(w, r)
	if !ok {
		return
	}
	var req ValidateRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}

	valid := e.IsValidTransition(req.From, req.To)
	result := "invalid"
	if valid {
		result = "valid"
	}
	metrics.StatusValidations.WithLabelValues(e.Name(), result).Inc()

	WriteJSON(w, http.StatusOK, ValidateResponse{
		Machine:   e.Name(),
		From:      req.From,
		To:        req.To,
		Valid:     valid,
		Available: e.AvailableTransitions(req.From),
	})
}

// Reload handles POST /v1/admin/config/reload
func (h *StatusHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		WriteAPIError(w, core.NewUnavailableError("No configuration source is configured."))
		return
	}
	res, err := h.reloader.Refresh(r.Context())
	if err != nil {
		WriteAPIError(w, core.NewUnavailableError(err.Error()))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"reload": res})
}
