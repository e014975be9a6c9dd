package core

import (
	"fmt"
	"slices"
)

// TransitionTable maps each status ID to the set of status IDs directly
// reachable from it. A status declared with no targets is terminal. Tables are
// immutable once built; accessors return copies.
type TransitionTable struct {
	edges map[int][]int
}

// NewTransitionTable builds a table from the given edges. Every target must be
// declared as a key of its own, so that terminal statuses are explicit.
func NewTransitionTable(edges map[int][]int) (TransitionTable, error) {
	t := TransitionTable{edges: make(map[int][]int, len(edges))}
	for from, targets := range edges {
		set := make([]int, 0, len(targets))
		for _, to := range targets {
			if _, ok := edges[to]; !ok {
				return TransitionTable{}, fmt.Errorf("transition %d -> %d targets an undeclared status", from, to)
			}
			if !slices.Contains(set, to) {
				set = append(set, to)
			}
		}
		slices.Sort(set)
		t.edges[from] = set
	}
	return t, nil
}

// MustTransitionTable is like NewTransitionTable but panics on error. It is
// meant for package-level tables.
func MustTransitionTable(edges map[int][]int) TransitionTable {
	t, err := NewTransitionTable(edges)
	if err != nil {
		panic(err)
	}
	return t
}

// Targets returns the statuses reachable from id, or an empty slice if id is
// not in the table.
func (t TransitionTable) Targets(id int) []int {
	return append([]int{}, t.edges[id]...)
}

// Declares reports whether id appears as a key of the table.
func (t TransitionTable) Declares(id int) bool {
	_, ok := t.edges[id]
	return ok
}

// IDs returns every status ID declared by the table, in ascending order.
func (t TransitionTable) IDs() []int {
	ids := make([]int, 0, len(t.edges))
	for id := range t.edges {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of declared statuses.
func (t TransitionTable) Len() int {
	return len(t.edges)
}

// carTransitions is the repair-case lifecycle. Every non-terminal status can be
// cancelled; Rechazado, Entregado and Cancelado are sinks.
var carTransitions = MustTransitionTable(map[int][]int{
	CarStatusEntrada:      {CarStatusPendiente, CarStatusRechazado, CarStatusCancelado},
	CarStatusPendiente:    {CarStatusEnRevision, CarStatusRechazado, CarStatusCancelado},
	CarStatusEnRevision:   {CarStatusRechazado, CarStatusEnReparacion, CarStatusCancelado},
	CarStatusEnReparacion: {CarStatusFinalizado, CarStatusCancelado},
	CarStatusFinalizado:   {CarStatusEntregado, CarStatusCancelado},
	CarStatusRechazado:    {},
	CarStatusEntregado:    {},
	CarStatusCancelado:    {},
})

// serviceRequestTransitions is independent of the car lifecycle.
var serviceRequestTransitions = MustTransitionTable(map[int][]int{
	RequestStatusPending:    {RequestStatusAssigned, RequestStatusCancelled},
	RequestStatusAssigned:   {RequestStatusInProgress, RequestStatusCancelled},
	RequestStatusInProgress: {RequestStatusCompleted, RequestStatusCancelled},
	RequestStatusCompleted:  {},
	RequestStatusCancelled:  {},
})

// CarTransitions returns the repair-case transition table.
func CarTransitions() TransitionTable {
	return carTransitions
}

// ServiceRequestTransitions returns the service-request transition table.
func ServiceRequestTransitions() TransitionTable {
	return serviceRequestTransitions
}
