// Package focus hands out stacking values and tracks the active window.
package focus

import "github.com/1broseidon/capsulewm/internal/registry"

// Manager issues strictly increasing z values from two ranges: one for normal
// windows and a higher one reserved for capsules. The capsule base sits far
// enough above the normal base that the ranges do not meet within a session.
type Manager struct {
	nextNormal  int
	nextCapsule int
	capsuleBase int
	active      registry.ID
}

// New returns a manager whose first normal value is normalBase and first
// capsule value is capsuleBase.
func New(normalBase, capsuleBase int) *Manager {
	return &Manager{
		nextNormal:  normalBase,
		nextCapsule: capsuleBase,
		capsuleBase: capsuleBase,
	}
}

// Active returns the focused window.
func (m *Manager) Active() (registry.ID, bool) {
	return m.active, !m.active.IsZero()
}

// IsActive reports whether id has focus.
func (m *Manager) IsActive(id registry.ID) bool {
	return !id.IsZero() && m.active == id
}

// Raise makes id the active window and returns its new z value.
func (m *Manager) Raise(id registry.ID, capsule bool) int {
	m.active = id
	return m.Next(capsule)
}

// Next issues a z value without touching focus.
func (m *Manager) Next(capsule bool) int {
	if capsule {
		z := m.nextCapsule
		m.nextCapsule++
		return z
	}
	z := m.nextNormal
	m.nextNormal++
	return z
}

// Clear drops focus.
func (m *Manager) Clear() {
	m.active = registry.ID{}
}

// Forget drops focus if id holds it.
func (m *Manager) Forget(id registry.ID) {
	if m.active == id {
		m.Clear()
	}
}

// IsCapsuleZ reports whether z lies in the reserved capsule range.
func (m *Manager) IsCapsuleZ(z int) bool {
	return z >= m.capsuleBase
}
