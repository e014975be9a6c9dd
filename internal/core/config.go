package core

import (
	"encoding/json"
	"fmt"
)

// SystemConfig is the subset of the system configuration payload
// (GET /config/system) that feeds the status engines.
type SystemConfig struct {
	CarStatuses            []Status `json:"carStatuses" yaml:"carStatuses"`
	ServiceRequestStatuses []Status `json:"serviceRequestStatuses,omitempty" yaml:"serviceRequestStatuses,omitempty"`

	// Dropped counts entries that could not be decoded and were skipped.
	Dropped int `json:"-" yaml:"-"`
}

type rawSystemConfig struct {
	CarStatuses            []json.RawMessage `json:"carStatuses"`
	ServiceRequestStatuses []json.RawMessage `json:"serviceRequestStatuses"`
}

// ParseSystemConfig decodes a configuration payload. The payload is untrusted:
// unknown fields are ignored, missing fields are left empty, and individual
// status entries that do not decode are skipped rather than failing the whole
// document. Only a body that is not a JSON object is an error.
func ParseSystemConfig(data []byte) (*SystemConfig, error) {
	var raw rawSystemConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode system config: %w", err)
	}

	cfg := &SystemConfig{}
	cfg.CarStatuses, cfg.Dropped = decodeStatuses(raw.CarStatuses)
	var dropped int
	cfg.ServiceRequestStatuses, dropped = decodeStatuses(raw.ServiceRequestStatuses)
	cfg.Dropped += dropped
	return cfg, nil
}

func decodeStatuses(entries []json.RawMessage) ([]Status, int) {
	out := make([]Status, 0, len(entries))
	dropped := 0
	for _, entry := range entries {
		var s Status
		if err := json.Unmarshal(entry, &s); err != nil {
			dropped++
			continue
		}
		out = append(out, s)
	}
	return out, dropped
}

// DefaultCarStatuses is the catalog shipped by the backend at the time of
// writing. It is used when no configuration source is set.
func DefaultCarStatuses() []Status {
	return []Status{
		{ID: CarStatusEntrada, Name: "Entrada", Color: "bg-blue-100 text-blue-800", TabColor: "bg-blue-500"},
		{ID: CarStatusPendiente, Name: "Pendiente", Color: "bg-yellow-100 text-yellow-800", TabColor: "bg-yellow-500"},
		{ID: CarStatusEnRevision, Name: "En Revisión", Color: "bg-purple-100 text-purple-800", TabColor: "bg-purple-500"},
		{ID: CarStatusRechazado, Name: "Rechazado", Color: "bg-red-100 text-red-800", TabColor: "bg-red-500"},
		{ID: CarStatusEnReparacion, Name: "En Reparación", Color: "bg-orange-100 text-orange-800", TabColor: "bg-orange-500"},
		{ID: CarStatusFinalizado, Name: "Finalizado", Color: "bg-green-100 text-green-800", TabColor: "bg-green-500"},
		{ID: CarStatusEntregado, Name: "Entregado", Color: "bg-teal-100 text-teal-800", TabColor: "bg-teal-500"},
		{ID: CarStatusCancelado, Name: "Cancelado", Color: "bg-gray-100 text-gray-800", TabColor: "bg-gray-500"},
	}
}

// DefaultServiceRequestStatuses is the built-in service-request catalog.
func DefaultServiceRequestStatuses() []Status {
	return []Status{
		{ID: RequestStatusPending, Code: "PENDING", Name: "Pendiente", Color: "bg-yellow-100 text-yellow-800", TabColor: "bg-yellow-500"},
		{ID: RequestStatusAssigned, Code: "ASSIGNED", Name: "Asignada", Color: "bg-blue-100 text-blue-800", TabColor: "bg-blue-500"},
		{ID: RequestStatusInProgress, Code: "IN_PROGRESS", Name: "En Progreso", Color: "bg-orange-100 text-orange-800", TabColor: "bg-orange-500"},
		{ID: RequestStatusCompleted, Code: "COMPLETED", Name: "Completada", Color: "bg-green-100 text-green-800", TabColor: "bg-green-500"},
		{ID: RequestStatusCancelled, Code: "CANCELLED", Name: "Cancelada", Color: "bg-gray-100 text-gray-800", TabColor: "bg-gray-500"},
	}
}

// DefaultSystemConfig returns the built-in configuration.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		CarStatuses:            DefaultCarStatuses(),
		ServiceRequestStatuses: DefaultServiceRequestStatuses(),
	}
}
