package core

import "sync/atomic"

// catalog is an immutable snapshot of a status list.
type catalog struct {
	statuses []Status
	index    map[int]int
}

func newCatalog(statuses []Status) *catalog {
	c := &catalog{
		statuses: make([]Status, 0, len(statuses)),
		index:    make(map[int]int, len(statuses)),
	}
	for _, s := range statuses {
		// First occurrence of an ID wins.
		if _, dup := c.index[s.ID]; dup {
			continue
		}
		c.index[s.ID] = len(c.statuses)
		c.statuses = append(c.statuses, s)
	}
	return c
}

func (c *catalog) lookup(id int) (Status, bool) {
	if c == nil {
		return Status{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Status{}, false
	}
	return c.statuses[i], true
}

// Registry holds the catalog of known statuses and their display metadata.
// Initialize swaps in a new snapshot atomically, so readers never observe a
// partially built catalog. Lookups on an uninitialized registry return the
// documented fallbacks.
type Registry struct {
	current atomic.Pointer[catalog]
}

// NewRegistry returns an empty, uninitialized registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Initialize replaces the whole catalog with statuses. Nothing from a previous
// call survives. The slice is copied.
func (r *Registry) Initialize(statuses []Status) {
	r.current.Store(newCatalog(statuses))
}

// Initialized reports whether Initialize has been called.
func (r *Registry) Initialized() bool {
	return r.current.Load() != nil
}

// Len returns the number of statuses in the catalog.
func (r *Registry) Len() int {
	c := r.current.Load()
	if c == nil {
		return 0
	}
	return len(c.statuses)
}

// Lookup returns the catalog entry for id.
func (r *Registry) Lookup(id int) (Status, bool) {
	return r.current.Load().lookup(id)
}

// Contains reports whether id is in the catalog.
func (r *Registry) Contains(id int) bool {
	_, ok := r.Lookup(id)
	return ok
}

// Statuses returns a copy of the catalog in configuration order.
func (r *Registry) Statuses() []Status {
	c := r.current.Load()
	if c == nil {
		return []Status{}
	}
	out := make([]Status, len(c.statuses))
	copy(out, c.statuses)
	return out
}

// StatusName returns the display name for id, or UnknownStatusName.
func (r *Registry) StatusName(id int) string {
	s, ok := r.Lookup(id)
	if !ok || s.Name == "" {
		return UnknownStatusName
	}
	return s.Name
}

// StatusColor returns the badge color token for id, or DefaultColorToken.
func (r *Registry) StatusColor(id int) string {
	s, ok := r.Lookup(id)
	if !ok || s.Color == "" {
		return DefaultColorToken
	}
	return s.Color
}

// StatusTabColor returns the tab color token for id, or DefaultTabColorToken.
func (r *Registry) StatusTabColor(id int) string {
	s, ok := r.Lookup(id)
	if !ok || s.TabColor == "" {
		return DefaultTabColorToken
	}
	return s.TabColor
}
