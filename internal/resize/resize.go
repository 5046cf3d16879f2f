// Package resize computes window geometry while an edge or corner handle is
// being dragged.
package resize

import (
	"fmt"
	"strings"

	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
)

// Direction is the handle being dragged.
type Direction string

const (
	North     Direction = "n"
	South     Direction = "s"
	East      Direction = "e"
	West      Direction = "w"
	NorthEast Direction = "ne"
	NorthWest Direction = "nw"
	SouthEast Direction = "se"
	SouthWest Direction = "sw"
)

// Directions lists every handle.
var Directions = []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}

// ParseDirection validates a handle name.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown resize direction: %q", s)
}

func (d Direction) north() bool { return strings.Contains(string(d), "n") }
func (d Direction) south() bool { return strings.Contains(string(d), "s") }
func (d Direction) east() bool  { return strings.Contains(string(d), "e") }
func (d Direction) west() bool  { return strings.Contains(string(d), "w") }

// Limits are the smallest allowed window size.
type Limits struct {
	MinWidth  int
	MinHeight int
}

// Session is one window's resize.
type Session struct {
	Window       registry.ID
	Direction    Direction
	PointerStart platform.Point
	Start        platform.Rect
}

// Apply returns the geometry for pointer p. Width and height never drop
// below the limits, and a west or north drag moves the origin only by the
// amount the size actually changed, so the opposite edge stays put.
func (s *Session) Apply(p platform.Point, lim Limits) platform.Rect {
	dx := p.X - s.PointerStart.X
	dy := p.Y - s.PointerStart.Y
	r := s.Start

	switch {
	case s.Direction.east():
		r.Width = max(s.Start.Width+dx, lim.MinWidth)
	case s.Direction.west():
		r.Width = max(s.Start.Width-dx, lim.MinWidth)
		r.X = s.Start.X + s.Start.Width - r.Width
	}
	switch {
	case s.Direction.south():
		r.Height = max(s.Start.Height+dy, lim.MinHeight)
	case s.Direction.north():
		r.Height = max(s.Start.Height-dy, lim.MinHeight)
		r.Y = s.Start.Y + s.Start.Height - r.Height
	}
	return r
}

// Controller owns the resize sessions, one per window.
type Controller struct {
	limits   Limits
	sessions map[registry.ID]*Session
}

// NewController returns a controller enforcing lim.
func NewController(lim Limits) *Controller {
	return &Controller{limits: lim, sessions: make(map[registry.ID]*Session)}
}

// Limits returns the minimum size.
func (c *Controller) Limits() Limits {
	return c.limits
}

// Begin starts resizing id from the given handle.
func (c *Controller) Begin(id registry.ID, dir Direction, pointer platform.Point, start platform.Rect) *Session {
	s := &Session{Window: id, Direction: dir, PointerStart: pointer, Start: start}
	c.sessions[id] = s
	return s
}

// Active reports whether id is being resized.
func (c *Controller) Active(id registry.ID) bool {
	_, ok := c.sessions[id]
	return ok
}

// Move returns the new geometry for id.
func (c *Controller) Move(id registry.ID, pointer platform.Point) (platform.Rect, bool) {
	s, ok := c.sessions[id]
	if !ok {
		return platform.Rect{}, false
	}
	return s.Apply(pointer, c.limits), true
}

// End finishes the resize and returns the final geometry.
func (c *Controller) End(id registry.ID, pointer platform.Point) (platform.Rect, bool) {
	r, ok := c.Move(id, pointer)
	delete(c.sessions, id)
	return r, ok
}

// Cancel drops the resize of id.
func (c *Controller) Cancel(id registry.ID) {
	delete(c.sessions, id)
}
