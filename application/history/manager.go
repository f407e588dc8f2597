// Package history keeps a bounded, linear undo/redo stack of graph snapshots.
package history

import (
	"flowboard/domain/core/aggregates"
)

// DefaultLimit is the number of entries kept when none is configured
const DefaultLimit = 50

// Manager stores deep copies of settled graph states. It is not safe for
// concurrent use; the owning session serializes access.
type Manager struct {
	entries []aggregates.GraphState
	current int
	limit   int
}

// New creates a history manager holding at most limit entries
func New(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{
		entries: make([]aggregates.GraphState, 0, limit),
		current: -1,
		limit:   limit,
	}
}

// Push records a copy of state after the current pointer, discarding any redo
// future first. Returns how many of the oldest entries were evicted.
func (m *Manager) Push(state aggregates.GraphState) (evicted int) {
	if m.current < len(m.entries)-1 {
		m.entries = m.entries[:m.current+1]
	}
	m.entries = append(m.entries, state.Clone())

	if over := len(m.entries) - m.limit; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
		evicted = over
	}
	m.current = len(m.entries) - 1
	return evicted
}

// CanUndo returns true if we can undo
func (m *Manager) CanUndo() bool {
	return m.current > 0
}

// CanRedo returns true if we can redo
func (m *Manager) CanRedo() bool {
	return m.current < len(m.entries)-1
}

// Undo moves the pointer back and returns a copy of that entry. At the oldest
// entry it reports false and changes nothing.
func (m *Manager) Undo() (aggregates.GraphState, bool) {
	if !m.CanUndo() {
		return aggregates.GraphState{}, false
	}
	m.current--
	return m.entries[m.current].Clone(), true
}

// Redo moves the pointer forward and returns a copy of that entry
func (m *Manager) Redo() (aggregates.GraphState, bool) {
	if !m.CanRedo() {
		return aggregates.GraphState{}, false
	}
	m.current++
	return m.entries[m.current].Clone(), true
}

// Len returns the number of retained entries
func (m *Manager) Len() int {
	return len(m.entries)
}

// Index returns the pointer position, -1 when empty
func (m *Manager) Index() int {
	return m.current
}

// SetLimit changes the cap, evicting the oldest entries if needed
func (m *Manager) SetLimit(limit int) (evicted int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m.limit = limit
	if over := len(m.entries) - limit; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
		m.current -= over
		if m.current < 0 {
			m.current = 0
		}
		evicted = over
	}
	return evicted
}

// Stats returns current position (1-based) and total entries
func (m *Manager) Stats() (current, total int) {
	return m.current + 1, len(m.entries)
}
