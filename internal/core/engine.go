package core

import "slices"

// Machine names used in routes, metrics and events.
const (
	MachineCars            = "cars"
	MachineServiceRequests = "service-requests"
)

// Engine pairs a status Registry with a TransitionTable. The table is the only
// authority on legality; the registry only supplies display metadata. Engine
// never mutates entities: callers validate here and persist elsewhere.
type Engine struct {
	name     string
	registry *Registry
	table    TransitionTable
}

// NewEngine creates an engine over table with an empty registry.
func NewEngine(name string, table TransitionTable) *Engine {
	return &Engine{
		name:     name,
		registry: NewRegistry(),
		table:    table,
	}
}

// NewCarEngine creates an engine for the repair-case lifecycle.
func NewCarEngine() *Engine {
	return NewEngine(MachineCars, CarTransitions())
}

// NewServiceRequestEngine creates an engine for the service-request lifecycle.
func NewServiceRequestEngine() *Engine {
	return NewEngine(MachineServiceRequests, ServiceRequestTransitions())
}

// Name returns the machine name.
func (e *Engine) Name() string { return e.name }

// Registry returns the engine's status registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Initialize replaces the status catalog.
func (e *Engine) Initialize(statuses []Status) {
	e.registry.Initialize(statuses)
}

// MissingStatuses returns the IDs declared by the transition table that the
// registry does not know about. An empty result means the catalog covers the
// whole table.
func (e *Engine) MissingStatuses() []int {
	var missing []int
	for _, id := range e.table.IDs() {
		if !e.registry.Contains(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

func (e *Engine) StatusName(id int) string     { return e.registry.StatusName(id) }
func (e *Engine) StatusColor(id int) string    { return e.registry.StatusColor(id) }
func (e *Engine) StatusTabColor(id int) string { return e.registry.StatusTabColor(id) }

// AvailableTransitions returns the statuses reachable from id. Unknown IDs
// yield an empty slice.
func (e *Engine) AvailableTransitions(id int) []int {
	return e.table.Targets(id)
}

// IsTerminalStatus reports whether no transition leaves id. It is derived from
// the table, so unknown IDs are terminal as well.
func (e *Engine) IsTerminalStatus(id int) bool {
	return len(e.table.Targets(id)) == 0
}

// AllowsTransitions is the negation of IsTerminalStatus.
func (e *Engine) AllowsTransitions(id int) bool {
	return !e.IsTerminalStatus(id)
}

// IsValidTransition reports whether moving from -> to is permitted. Unknown
// source statuses fail closed.
func (e *Engine) IsValidTransition(from, to int) bool {
	return slices.Contains(e.table.Targets(from), to)
}

// StatusInfo builds a fresh snapshot of everything known about id.
func (e *Engine) StatusInfo(id int) StatusInfo {
	s, _ := e.registry.Lookup(id)
	targets := e.AvailableTransitions(id)
	return StatusInfo{
		ID:                   id,
		Code:                 s.Code,
		Name:                 e.registry.StatusName(id),
		Color:                e.registry.StatusColor(id),
		TabColor:             e.registry.StatusTabColor(id),
		IsTerminal:           len(targets) == 0,
		AllowsTransitions:    len(targets) > 0,
		AvailableTransitions: targets,
	}
}

// AllStatuses returns a StatusInfo for every registry entry, in registry order.
func (e *Engine) AllStatuses() []StatusInfo {
	statuses := e.registry.Statuses()
	out := make([]StatusInfo, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, e.StatusInfo(s.ID))
	}
	return out
}

// StatusByCode finds a catalog entry by its wire code.
func (e *Engine) StatusByCode(code string) (Status, bool) {
	for _, s := range e.registry.Statuses() {
		if s.Code != "" && s.Code == code {
			return s, true
		}
	}
	return Status{}, false
}

// Engines is the set of independent state machines the application uses.
// It is built once at the composition root and passed to whoever needs it.
type Engines struct {
	Cars            *Engine
	ServiceRequests *Engine
}

// NewEngines creates both machines with empty registries.
func NewEngines() *Engines {
	return &Engines{
		Cars:            NewCarEngine(),
		ServiceRequests: NewServiceRequestEngine(),
	}
}

// Initialize loads every machine's catalog from cfg. A config without
// service-request statuses falls back to the built-in catalog for that machine.
func (e *Engines) Initialize(cfg *SystemConfig) {
	if cfg == nil {
		cfg = &SystemConfig{}
	}
	e.Cars.Initialize(cfg.CarStatuses)
	if len(cfg.ServiceRequestStatuses) > 0 {
		e.ServiceRequests.Initialize(cfg.ServiceRequestStatuses)
	} else {
		e.ServiceRequests.Initialize(DefaultServiceRequestStatuses())
	}
}

// Ready reports whether every machine has been initialized.
func (e *Engines) Ready() bool {
	return e.Cars.Registry().Initialized() && e.ServiceRequests.Registry().Initialized()
}

// Machine returns the engine registered under name.
func (e *Engines) Machine(name string) (*Engine, bool) {
	switch name {
	case MachineCars:
		return e.Cars, true
	case MachineServiceRequests:
		return e.ServiceRequests, true
	}
	return nil, false
}

// All returns every engine in a stable order.
func (e *Engines) All() []*Engine {
	return []*Engine{e.Cars, e.ServiceRequests}
}
