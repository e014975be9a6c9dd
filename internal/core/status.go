package core

import "time"

const (
	Version    = "0.4.0"
	TimeFormat = "2006-01-02T15:04:05.000Z"
)

// FormatTime formats a time as ISO 8601 UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// NowFormatted returns the current time formatted as ISO 8601 UTC.
func NowFormatted() string {
	return FormatTime(time.Now())
}

// Car (vehicle repair case) statuses, as issued by the system configuration.
const (
	CarStatusEntrada      = 1
	CarStatusPendiente    = 2
	CarStatusEnRevision   = 3
	CarStatusRechazado    = 4
	CarStatusEnReparacion = 5
	CarStatusFinalizado   = 6
	CarStatusEntregado    = 7
	CarStatusCancelado    = 8
)

// Service request statuses. The wire codes are kept alongside the numeric IDs
// because requests are exchanged by code.
const (
	RequestStatusPending    = 1
	RequestStatusAssigned   = 2
	RequestStatusInProgress = 3
	RequestStatusCompleted  = 4
	RequestStatusCancelled  = 5
)

// Fallbacks returned for unknown or unconfigured statuses.
const (
	UnknownStatusName    = "Sin estado"
	DefaultColorToken    = "bg-gray-100 text-gray-800"
	DefaultTabColorToken = "bg-gray-500"
)

// Status is one entry of a status catalog. Color tokens are opaque to the
// engine and passed through unchanged.
type Status struct {
	ID       int    `json:"id" yaml:"id"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Name     string `json:"name" yaml:"name"`
	Color    string `json:"color,omitempty" yaml:"color,omitempty"`
	TabColor string `json:"tabColor,omitempty" yaml:"tabColor,omitempty"`
}

// StatusInfo is the aggregate view of a status handed to presentation code.
type StatusInfo struct {
	ID                   int    `json:"id"`
	Code                 string `json:"code,omitempty"`
	Name                 string `json:"name"`
	Color                string `json:"color"`
	TabColor             string `json:"tabColor"`
	IsTerminal           bool   `json:"isTerminal"`
	AllowsTransitions    bool   `json:"allowsTransitions"`
	AvailableTransitions []int  `json:"availableTransitions"`
}
