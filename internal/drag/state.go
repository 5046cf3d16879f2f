// Package drag tracks pointer drags of windows and the snap preview they
// arm while hovering a zone.
package drag

import (
	"github.com/1broseidon/capsulewm/internal/loop"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/snap"
)

// Phase represents the current phase of a drag
type Phase int

const (
	// PhaseIdle means no drag is in progress
	PhaseIdle Phase = iota
	// PhaseDragging means the window follows the pointer
	PhaseDragging
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Session holds the state of one window's drag
type Session struct {
	Window       registry.ID
	Phase        Phase
	PointerStart platform.Point // Pointer position at pointer-down
	WindowStart  platform.Rect  // Window geometry at pointer-down
	Capsule      bool           // Capsules never snap
	Hover        snap.Name      // Zone under the pointer ("" if none)
	Preview      snap.Name      // Zone whose preview is shown ("" if none)

	pending    platform.Point
	dirty      bool
	hoverTimer loop.Timer
}

// Position returns where the window would sit for pointer p, before clamping.
func (s *Session) Position(p platform.Point) platform.Point {
	return platform.Point{
		X: s.WindowStart.X + p.X - s.PointerStart.X,
		Y: s.WindowStart.Y + p.Y - s.PointerStart.Y,
	}
}

// Dirty reports whether a pointer move is waiting for the next frame.
func (s *Session) Dirty() bool {
	return s.dirty
}

func (s *Session) stopHover() {
	if s.hoverTimer != nil {
		s.hoverTimer.Stop()
		s.hoverTimer = nil
	}
}

// Reset returns the session to idle
func (s *Session) Reset() {
	s.stopHover()
	s.Phase = PhaseIdle
	s.Hover = ""
	s.Preview = ""
	s.dirty = false
}
