package drag

import (
	"time"

	"github.com/1broseidon/capsulewm/internal/loop"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/snap"
)

// Params tunes drag behavior.
type Params struct {
	MinVisible     int           // Pixels of the window kept on-screen horizontally
	TitlebarHeight int           // Height kept reachable at the bottom edge
	HoverDelay     time.Duration // Time a zone must be hovered before its preview shows
}

// Listener receives the effects of a drag.
type Listener interface {
	// DragMoved reports a new clamped window position.
	DragMoved(id registry.ID, pos platform.Point)
	// DragPreview reports the zone whose preview should be shown, or "" to
	// hide it.
	DragPreview(id registry.ID, zone snap.Name)
}

// Result is how a drag ended.
type Result struct {
	Start    platform.Rect // Geometry when the drag began
	Position platform.Point
	Zone     snap.Name // Zone to snap into ("" to stay in place)
}

// Controller owns the drag sessions, one per window.
type Controller struct {
	zones    *snap.Engine
	clock    loop.Clock
	params   Params
	listener Listener
	bounds   platform.Rect
	sessions map[registry.ID]*Session
}

// NewController returns a controller. bounds is the on-screen rectangle
// positions are clamped to.
func NewController(zones *snap.Engine, clock loop.Clock, params Params, listener Listener, bounds platform.Rect) *Controller {
	return &Controller{
		zones:    zones,
		clock:    clock,
		params:   params,
		listener: listener,
		bounds:   bounds,
		sessions: make(map[registry.ID]*Session),
	}
}

// SetBounds changes the clamp rectangle.
func (c *Controller) SetBounds(r platform.Rect) {
	c.bounds = r
}

// Begin starts dragging id. An existing session for id is replaced.
func (c *Controller) Begin(id registry.ID, pointer platform.Point, window platform.Rect, capsule bool) *Session {
	c.Cancel(id)
	s := &Session{
		Window:       id,
		Phase:        PhaseDragging,
		PointerStart: pointer,
		WindowStart:  window,
		Capsule:      capsule,
		pending:      pointer,
	}
	c.sessions[id] = s
	return s
}

// Session returns the active session for id.
func (c *Controller) Session(id registry.ID) (*Session, bool) {
	s, ok := c.sessions[id]
	return s, ok
}

// Active reports whether id is being dragged.
func (c *Controller) Active(id registry.ID) bool {
	_, ok := c.sessions[id]
	return ok
}

// Move records a pointer move. Nothing else happens until Flush.
func (c *Controller) Move(id registry.ID, pointer platform.Point) bool {
	s, ok := c.sessions[id]
	if !ok {
		return false
	}
	s.pending = pointer
	s.dirty = true
	return true
}

// Dirty reports whether any session has an unflushed move.
func (c *Controller) Dirty() bool {
	for _, s := range c.sessions {
		if s.dirty {
			return true
		}
	}
	return false
}

// FlushAll applies every pending move.
func (c *Controller) FlushAll() {
	for id := range c.sessions {
		c.Flush(id)
	}
}

// Flush applies the pending move of id, if any.
func (c *Controller) Flush(id registry.ID) {
	s, ok := c.sessions[id]
	if !ok || !s.dirty {
		return
	}
	s.dirty = false
	c.listener.DragMoved(id, c.Clamp(s.Position(s.pending), s.WindowStart.Width))
	if s.Capsule {
		return
	}

	zone, _ := c.zones.ZoneAt(s.pending.X, s.pending.Y)
	if zone == s.Hover {
		return
	}
	s.stopHover()
	if s.Preview != "" {
		s.Preview = ""
		c.listener.DragPreview(id, "")
	}
	s.Hover = zone
	if zone == "" {
		return
	}
	s.hoverTimer = c.clock.AfterFunc(c.params.HoverDelay, func() {
		if c.sessions[id] != s || s.Hover != zone {
			return
		}
		s.hoverTimer = nil
		s.Preview = zone
		c.listener.DragPreview(id, zone)
	})
}

// End finishes the drag of id at pointer. A pending move is flushed first.
// Hiding a shown preview is left to the caller, which snaps into Result.Zone.
func (c *Controller) End(id registry.ID, pointer platform.Point) (Result, bool) {
	s, ok := c.sessions[id]
	if !ok {
		return Result{}, false
	}
	if pointer != s.pending {
		s.pending = pointer
		s.dirty = true
	}
	c.Flush(id)
	res := Result{
		Start:    s.WindowStart,
		Position: c.Clamp(s.Position(s.pending), s.WindowStart.Width),
		Zone:     s.Preview,
	}
	s.Reset()
	delete(c.sessions, id)
	return res, true
}

// Cancel drops the drag of id without snapping. A shown preview is hidden.
func (c *Controller) Cancel(id registry.ID) {
	s, ok := c.sessions[id]
	if !ok {
		return
	}
	hadPreview := s.Preview != ""
	s.Reset()
	delete(c.sessions, id)
	if hadPreview {
		c.listener.DragPreview(id, "")
	}
}

// Clamp keeps MinVisible pixels of a window of the given width inside the
// bounds horizontally and keeps its titlebar reachable vertically.
func (c *Controller) Clamp(p platform.Point, width int) platform.Point {
	b := c.bounds
	vis := min(c.params.MinVisible, width)
	minX := b.X + vis - width
	maxX := b.Right() - vis
	if p.X < minX {
		p.X = minX
	}
	if p.X > maxX {
		p.X = maxX
	}
	minY := b.Y
	maxY := b.Bottom() - c.params.TitlebarHeight
	if p.Y > maxY {
		p.Y = maxY
	}
	if p.Y < minY {
		p.Y = minY
	}
	return p
}
