package core

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusHolder is anything that currently occupies one status.
type StatusHolder interface {
	CurrentStatus() int
}

// StatusFilter selects items by status. The zero value matches everything.
type StatusFilter struct {
	id  int
	set bool
}

// AnyStatus returns the pass-through filter.
func AnyStatus() StatusFilter {
	return StatusFilter{}
}

// StatusIs returns a filter matching exactly id.
func StatusIs(id int) StatusFilter {
	return StatusFilter{id: id, set: true}
}

// ParseStatusFilter parses a query value. "", "all", "null" and "undefined"
// mean no filtering; anything else must be a status ID.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all", "null", "undefined":
		return AnyStatus(), nil
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return StatusFilter{}, fmt.Errorf("invalid status filter %q", raw)
	}
	return StatusIs(id), nil
}

// IsAll reports whether the filter passes everything through.
func (f StatusFilter) IsAll() bool { return !f.set }

// Matches reports whether statusID passes the filter.
func (f StatusFilter) Matches(statusID int) bool {
	return !f.set || f.id == statusID
}

func (f StatusFilter) String() string {
	if !f.set {
		return "all"
	}
	return strconv.Itoa(f.id)
}

// FilterByStatus returns the items matching f. The pass-through filter returns
// items itself, unchanged.
func FilterByStatus[T StatusHolder](items []T, f StatusFilter) []T {
	if f.IsAll() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if f.Matches(item.CurrentStatus()) {
			out = append(out, item)
		}
	}
	return out
}

// CountByStatus is len(FilterByStatus(items, f)).
func CountByStatus[T StatusHolder](items []T, f StatusFilter) int {
	return len(FilterByStatus(items, f))
}

// StatusCount is one row of a per-status summary.
type StatusCount struct {
	StatusID int    `json:"statusId"`
	Name     string `json:"name"`
	TabColor string `json:"tabColor"`
	Count    int    `json:"count"`
}

// Summarize counts items for every status in the engine's registry, in
// registry order, plus a leading "all" row with StatusID 0.
func Summarize[T StatusHolder](e *Engine, items []T) []StatusCount {
	statuses := e.Registry().Statuses()
	out := make([]StatusCount, 0, len(statuses)+1)
	out = append(out, StatusCount{Name: "Todos", TabColor: DefaultTabColorToken, Count: CountByStatus(items, AnyStatus())})
	for _, s := range statuses {
		out = append(out, StatusCount{
			StatusID: s.ID,
			Name:     e.StatusName(s.ID),
			TabColor: e.StatusTabColor(s.ID),
			Count:    CountByStatus(items, StatusIs(s.ID)),
		})
	}
	return out
}
