package core

import (
	"fmt"
	"slices"
	"testing"
)

func TestIsValidTransition(t *testing.T) {
	e := NewCarEngine()
	tests := []struct {
		from, to int
		want     bool
	}{
		// Valid transitions
		{CarStatusEntrada, CarStatusPendiente, true},
		{CarStatusEntrada, CarStatusRechazado, true},
		{CarStatusEntrada, CarStatusCancelado, true},
		{CarStatusPendiente, CarStatusEnRevision, true},
		{CarStatusPendiente, CarStatusRechazado, true},
		{CarStatusPendiente, CarStatusCancelado, true},
		{CarStatusEnRevision, CarStatusRechazado, true},
		{CarStatusEnRevision, CarStatusEnReparacion, true},
		{CarStatusEnRevision, CarStatusCancelado, true},
		{CarStatusEnReparacion, CarStatusFinalizado, true},
		{CarStatusEnReparacion, CarStatusCancelado, true},
		{CarStatusFinalizado, CarStatusEntregado, true},
		{CarStatusFinalizado, CarStatusCancelado, true},

		// Invalid transitions
		{CarStatusEntrada, CarStatusEnRevision, false},
		{CarStatusEntrada, CarStatusEntrada, false},
		{CarStatusPendiente, CarStatusEntrada, false},
		{CarStatusEnReparacion, CarStatusEnRevision, false},
		{CarStatusFinalizado, CarStatusEnReparacion, false},
		{CarStatusEntregado, CarStatusEntrada, false},
		{CarStatusRechazado, CarStatusPendiente, false},
		{CarStatusCancelado, CarStatusEntrada, false},

		// Unknown statuses
		{9999, CarStatusEntrada, false},
		{CarStatusEntrada, 9999, false},
		{0, 0, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d->%d", tt.from, tt.to), func(t *testing.T) {
			if got := e.IsValidTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("IsValidTransition(%d, %d) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	e := NewCarEngine()
	terminal := []int{CarStatusRechazado, CarStatusEntregado, CarStatusCancelado}
	nonTerminal := []int{CarStatusEntrada, CarStatusPendiente, CarStatusEnRevision, CarStatusEnReparacion, CarStatusFinalizado}

	for _, id := range terminal {
		if !e.IsTerminalStatus(id) {
			t.Errorf("IsTerminalStatus(%d) = false, want true", id)
		}
		if e.AllowsTransitions(id) {
			t.Errorf("AllowsTransitions(%d) = true, want false", id)
		}
	}
	for _, id := range nonTerminal {
		if e.IsTerminalStatus(id) {
			t.Errorf("IsTerminalStatus(%d) = true, want false", id)
		}
		if !e.AllowsTransitions(id) {
			t.Errorf("AllowsTransitions(%d) = false, want true", id)
		}
	}
}

func TestUniversalAbort(t *testing.T) {
	e := NewCarEngine()
	for _, id := range CarTransitions().IDs() {
		if e.IsTerminalStatus(id) {
			continue
		}
		if !e.IsValidTransition(id, CarStatusCancelado) {
			t.Errorf("IsValidTransition(%d, Cancelado) = false, want true", id)
		}
	}
}

func TestTerminalLockout(t *testing.T) {
	e := NewCarEngine()
	for _, id := range []int{CarStatusRechazado, CarStatusEntregado, CarStatusCancelado} {
		if got := e.AvailableTransitions(id); len(got) != 0 {
			t.Errorf("AvailableTransitions(%d) = %v, want empty", id, got)
		}
	}
	if e.IsValidTransition(CarStatusEntregado, CarStatusEntrada) {
		t.Error("Entregado must not revert to Entrada")
	}
}

func TestLinearHappyPath(t *testing.T) {
	e := NewCarEngine()
	path := []int{
		CarStatusEntrada,
		CarStatusPendiente,
		CarStatusEnRevision,
		CarStatusEnReparacion,
		CarStatusFinalizado,
		CarStatusEntregado,
	}
	for i := 1; i < len(path); i++ {
		if !e.IsValidTransition(path[i-1], path[i]) {
			t.Errorf("step %d -> %d should be valid", path[i-1], path[i])
		}
	}
	if !e.IsTerminalStatus(path[len(path)-1]) {
		t.Error("Entregado should be terminal")
	}
}

func TestTerminalConsistency(t *testing.T) {
	for _, e := range NewEngines().All() {
		for id := -1; id <= 10; id++ {
			if got, want := e.IsTerminalStatus(id), len(e.AvailableTransitions(id)) == 0; got != want {
				t.Errorf("%s: IsTerminalStatus(%d) = %v, empty transitions = %v", e.Name(), id, got, want)
			}
		}
	}
}

func TestValidatorTableAgreement(t *testing.T) {
	for _, e := range NewEngines().All() {
		for from := -1; from <= 10; from++ {
			targets := e.AvailableTransitions(from)
			for to := -1; to <= 10; to++ {
				if got, want := e.IsValidTransition(from, to), slices.Contains(targets, to); got != want {
					t.Errorf("%s: IsValidTransition(%d, %d) = %v, want %v", e.Name(), from, to, got, want)
				}
			}
		}
	}
}

func TestAvailableTransitionsUnknownIsEmpty(t *testing.T) {
	e := NewCarEngine()
	got := e.AvailableTransitions(9999)
	if got == nil || len(got) != 0 {
		t.Errorf("AvailableTransitions(9999) = %#v, want empty non-nil slice", got)
	}
}

func TestAvailableTransitionsReturnsCopy(t *testing.T) {
	e := NewCarEngine()
	got := e.AvailableTransitions(CarStatusEntrada)
	got[0] = CarStatusEntregado

	if e.IsValidTransition(CarStatusEntrada, CarStatusEntregado) {
		t.Fatal("mutating the returned slice changed the table")
	}
}

func TestNewTransitionTable_RejectsUndeclaredTarget(t *testing.T) {
	_, err := NewTransitionTable(map[int][]int{1: {2}})
	if err == nil {
		t.Fatal("expected error for undeclared target")
	}
}

func TestNewTransitionTable_DedupsAndSorts(t *testing.T) {
	table, err := NewTransitionTable(map[int][]int{1: {3, 2, 3}, 2: {}, 3: {}})
	if err != nil {
		t.Fatalf("NewTransitionTable: %v", err)
	}
	if got := table.Targets(1); !slices.Equal(got, []int{2, 3}) {
		t.Errorf("Targets(1) = %v, want [2 3]", got)
	}
	if got := table.IDs(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("IDs() = %v, want [1 2 3]", got)
	}
}

func TestServiceRequestTransitions(t *testing.T) {
	e := NewServiceRequestEngine()
	tests := []struct {
		from, to int
		want     bool
	}{
		{RequestStatusPending, RequestStatusAssigned, true},
		{RequestStatusPending, RequestStatusCancelled, true},
		{RequestStatusPending, RequestStatusInProgress, false},
		{RequestStatusAssigned, RequestStatusInProgress, true},
		{RequestStatusInProgress, RequestStatusCompleted, true},
		{RequestStatusInProgress, RequestStatusPending, false},
		{RequestStatusCompleted, RequestStatusCancelled, false},
		{RequestStatusCancelled, RequestStatusPending, false},
	}
	for _, tt := range tests {
		if got := e.IsValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("IsValidTransition(%d, %d) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
