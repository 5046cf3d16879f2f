package wm

import (
	"github.com/1broseidon/capsulewm/internal/dom"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/snap"
)

func (m *Manager) availableArea() platform.Rect {
	v, in := m.viewport, m.insets
	return platform.Rect{
		X:      v.X + in.Left,
		Y:      v.Y + in.Top,
		Width:  max(v.Width-in.Left-in.Right, 0),
		Height: max(v.Height-in.Top-in.Bottom, 0),
	}
}

// AvailableArea returns the desktop rectangle windows snap and maximize into.
func (m *Manager) AvailableArea() platform.Rect {
	return m.availableArea()
}

// Viewport returns the host surface rectangle.
func (m *Manager) Viewport() platform.Rect {
	return m.viewport
}

// UpdateAvailableArea reserves the given pixels on each side of the viewport
// and recomputes the snap zones. Maximized windows are refit.
func (m *Manager) UpdateAvailableArea(left, right, top, bottom int) {
	m.insets = Insets{Left: max(left, 0), Right: max(right, 0), Top: max(top, 0), Bottom: max(bottom, 0)}
	m.areaChanged()
}

// SetViewport updates the host surface size.
func (m *Manager) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		m.logger.Warn("ignoring invalid viewport", "width", width, "height", height)
		return
	}
	m.viewport = platform.Rect{Width: width, Height: height}
	m.drags.SetBounds(m.viewport)
	m.areaChanged()
}

func (m *Manager) areaChanged() {
	area := m.availableArea()
	m.zones.SetArea(area)
	m.windows.Each(func(_ registry.ID, w *Window) {
		if w.IsMaximized && !w.IsCapsule {
			w.Geometry = area
			m.renderWindow(w)
		}
	})
	m.changed()
}

// Zones returns the current snap zones.
func (m *Manager) Zones() []snap.Zone {
	return m.zones.Zones()
}

// PreviewState is the snap preview overlay as transports see it.
type PreviewState struct {
	Window registry.ID   `json:"window"`
	Zone   snap.Name     `json:"zone"`
	Rect   platform.Rect `json:"rect"`
}

// Preview returns the shown snap preview.
func (m *Manager) Preview() (PreviewState, bool) {
	if m.preview == "" {
		return PreviewState{}, false
	}
	r, _ := m.zones.DimensionsFor(m.preview)
	return PreviewState{Window: m.previewWindow, Zone: m.preview, Rect: r}, true
}

// SnapWindowToZone moves the window into the named zone. Capsules never
// snap.
func (m *Manager) SnapWindowToZone(id registry.ID, zone snap.Name) {
	w, ok := m.lookup("snap", id)
	if !ok || w.IsCapsule {
		return
	}
	if !m.snapWindow(w, zone) {
		m.logger.Warn("unknown snap zone", "window", id, "zone", zone)
		return
	}
	m.changed()
}

// snapWindow commits the zone geometry with an animated transition.
func (m *Manager) snapWindow(w *Window, zone snap.Name) bool {
	r, ok := m.zones.DimensionsFor(zone)
	if !ok {
		return false
	}
	m.cancelSessions(w.ID)
	m.saveGeometry(w)
	w.Geometry = r
	w.IsMaximized = zone == snap.Top
	if w.IsMinimized {
		w.IsMinimized = false
	}
	m.renderWindow(w)
	m.animate(w)
	return true
}

// animate tags the root with the snapping class for the transition length.
func (m *Manager) animate(w *Window) {
	w.stopSnapTimer()
	dom.AddClass(w.view.Root, dom.ClassSnapping)
	id := w.ID
	w.snapTimer = m.clock.AfterFunc(m.cfg.SnapAnimation(), func() {
		cur, ok := m.windows.Get(id)
		if !ok || cur != w {
			return
		}
		w.snapTimer = nil
		dom.RemoveClass(w.view.Root, dom.ClassSnapping)
		m.changed()
	})
}

func (m *Manager) showPreview(id registry.ID, zone snap.Name) {
	r, ok := m.zones.DimensionsFor(zone)
	if !ok {
		return
	}
	m.preview = zone
	m.previewWindow = id
	dom.ShowOverlay(m.overlay, r, string(zone))
}

func (m *Manager) hidePreview() {
	if m.preview == "" {
		return
	}
	m.preview = ""
	m.previewWindow = registry.ID{}
	dom.HideOverlay(m.overlay)
}

// dragListener applies drag effects to the manager.
type dragListener struct {
	m *Manager
}

func (l dragListener) DragMoved(id registry.ID, pos platform.Point) {
	w, ok := l.m.windows.Get(id)
	if !ok {
		return
	}
	if w.Geometry.X == pos.X && w.Geometry.Y == pos.Y {
		return
	}
	w.Geometry.X, w.Geometry.Y = pos.X, pos.Y
	w.IsMaximized = false
	l.m.renderWindow(w)
	l.m.changed()
}

func (l dragListener) DragPreview(id registry.ID, zone snap.Name) {
	if zone == "" {
		if l.m.previewWindow == id {
			l.m.hidePreview()
			l.m.changed()
		}
		return
	}
	l.m.showPreview(id, zone)
	l.m.changed()
}
