package wm

import (
	"sort"

	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/resize"
)

// Chrome metrics the shell's stylesheet lays out with.
const (
	ButtonWidth  = 28
	TabBarHeight = 28
	TabWidth     = 120
)

// Region is the part of a window under the pointer.
type Region string

const (
	RegionNone     Region = ""
	RegionResize   Region = "resize"
	RegionButton   Region = "button"
	RegionTitlebar Region = "titlebar"
	RegionTab      Region = "tab"
	RegionTabBar   Region = "tabbar"
	RegionContent  Region = "content"
	RegionCapsule  Region = "capsule"
)

// Hit is the result of a hit test.
type Hit struct {
	Window    registry.ID      `json:"window"`
	Region    Region           `json:"region"`
	Direction resize.Direction `json:"direction,omitempty"`
	Action    string           `json:"action,omitempty"`
	Tab       string           `json:"tab,omitempty"`
}

type grabKind int

const (
	grabDrag grabKind = iota
	grabResize
)

type grab struct {
	window registry.ID
	kind   grabKind
}

// stack returns visible windows, topmost first.
func (m *Manager) stack() []*Window {
	var out []*Window
	m.windows.Each(func(_ registry.ID, w *Window) {
		if !w.IsMinimized {
			out = append(out, w)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Z > out[j].Z })
	return out
}

// HitTest finds the topmost window at (x, y) and the region under it.
func (m *Manager) HitTest(x, y int) (Hit, bool) {
	p := platform.Point{X: x, Y: y}
	for _, w := range m.stack() {
		if w.Geometry.Contains(p) {
			return m.regionAt(w, p), true
		}
	}
	return Hit{}, false
}

func (m *Manager) titlebarHeight(w *Window) int {
	if w.IsCapsule {
		return m.cfg.Capsule.TitlebarHeight
	}
	return m.cfg.Window.TitlebarHeight
}

func (m *Manager) regionAt(w *Window, p platform.Point) Hit {
	g := w.Geometry
	hit := Hit{Window: w.ID}

	if dir, ok := m.handleAt(w, p); ok {
		hit.Region = RegionResize
		hit.Direction = dir
		return hit
	}

	rx, ry := p.X-g.X, p.Y-g.Y
	if ry < m.titlebarHeight(w) {
		actions := w.view.Actions
		controls := len(actions) * ButtonWidth
		if off := rx - (g.Width - controls); off >= 0 && len(actions) > 0 {
			hit.Region = RegionButton
			hit.Action = actions[min(off/ButtonWidth, len(actions)-1)]
			return hit
		}
		hit.Region = RegionTitlebar
		if w.IsCapsule {
			hit.Region = RegionCapsule
		}
		return hit
	}
	if w.IsCapsule {
		hit.Region = RegionCapsule
		return hit
	}

	if w.view.TabBar != nil && ry < m.titlebarHeight(w)+TabBarHeight {
		if i := rx / TabWidth; i < len(w.tabOrder) {
			hit.Region = RegionTab
			hit.Tab = w.tabOrder[i]
			return hit
		}
		hit.Region = RegionTabBar
		return hit
	}
	hit.Region = RegionContent
	return hit
}

// handleAt reports the resize handle under p, if the window has handles.
func (m *Manager) handleAt(w *Window, p platform.Point) (resize.Direction, bool) {
	if !w.Config.Resizable || w.IsCapsule || w.IsMaximized {
		return "", false
	}
	g, hs := w.Geometry, m.cfg.Resize.HandleSize
	n := p.Y < g.Y+hs
	s := p.Y >= g.Bottom()-hs
	e := p.X >= g.Right()-hs
	west := p.X < g.X+hs

	var d string
	switch {
	case n:
		d = "n"
	case s:
		d = "s"
	}
	switch {
	case e:
		d += "e"
	case west:
		d += "w"
	}
	if d == "" {
		return "", false
	}
	return resize.Direction(d), true
}

// PointerDown handles a press. Presses on empty desktop clear focus; presses
// on a window focus it and may start a drag, start a resize, or trigger a
// control button.
func (m *Manager) PointerDown(pointerID, x, y int) {
	hit, ok := m.HitTest(x, y)
	if !ok {
		m.ClearFocus()
		return
	}
	w, _ := m.windows.Get(hit.Window)
	p := platform.Point{X: x, Y: y}
	focused := m.focusWindow(w)

	switch hit.Region {
	case RegionButton:
		m.control(w, hit.Action)
		return
	case RegionResize:
		m.resizes.Begin(w.ID, hit.Direction, p, w.Geometry)
		m.pointers[pointerID] = grab{window: w.ID, kind: grabResize}
	case RegionTitlebar, RegionCapsule:
		w.stopSnapTimer()
		m.drags.Begin(w.ID, p, w.Geometry, w.IsCapsule)
		m.pointers[pointerID] = grab{window: w.ID, kind: grabDrag}
	case RegionTab:
		m.ActivateTab(w.ID, hit.Tab)
	}
	if focused {
		m.changed()
	}
}

func (m *Manager) control(w *Window, action string) {
	switch action {
	case "close":
		m.CloseWindow(w.ID)
	case "maximize":
		m.MaximizeWindow(w.ID)
	case "minimize":
		m.MinimizeWindow(w.ID)
	case "capsule":
		m.ToggleWindowCapsule(w.ID)
	}
}

// PointerMove feeds a pointer move to the drag or resize it drives.
func (m *Manager) PointerMove(pointerID, x, y int) {
	g, ok := m.pointers[pointerID]
	if !ok {
		return
	}
	p := platform.Point{X: x, Y: y}
	switch g.kind {
	case grabDrag:
		if m.drags.Move(g.window, p) {
			m.scheduleFrame()
		}
	case grabResize:
		if r, ok := m.resizes.Move(g.window, p); ok {
			m.setGeometry(g.window, r)
		}
	}
}

// PointerUp ends the drag or resize driven by pointerID.
func (m *Manager) PointerUp(pointerID, x, y int) {
	g, ok := m.pointers[pointerID]
	if !ok {
		return
	}
	delete(m.pointers, pointerID)
	p := platform.Point{X: x, Y: y}

	switch g.kind {
	case grabDrag:
		res, ok := m.drags.End(g.window, p)
		if m.frameTimer != nil && !m.drags.Dirty() {
			m.frameTimer.Stop()
			m.frameTimer = nil
		}
		if !ok {
			return
		}
		w, alive := m.windows.Get(g.window)
		if !alive {
			return
		}
		if res.Zone != "" && !w.IsCapsule {
			m.hidePreview()
			if w.SavedGeometry == nil {
				start := res.Start
				w.SavedGeometry = &start
			}
			m.snapWindow(w, res.Zone)
			m.changed()
		} else if m.previewWindow == g.window {
			m.hidePreview()
			m.changed()
		}
	case grabResize:
		if r, ok := m.resizes.End(g.window, p); ok {
			m.setGeometry(g.window, r)
		}
	}
}

// Frame flushes coalesced pointer moves. Hosts with frame callbacks call it
// directly; otherwise it runs on the frame interval while a drag is dirty.
func (m *Manager) Frame() {
	if m.frameTimer != nil {
		m.frameTimer.Stop()
		m.frameTimer = nil
	}
	m.drags.FlushAll()
}

func (m *Manager) scheduleFrame() {
	if m.frameTimer != nil {
		return
	}
	m.frameTimer = m.clock.AfterFunc(m.cfg.FrameInterval(), func() {
		m.frameTimer = nil
		m.drags.FlushAll()
	})
}

func (m *Manager) setGeometry(id registry.ID, r platform.Rect) {
	w, ok := m.windows.Get(id)
	if !ok || w.Geometry == r {
		return
	}
	w.Geometry = r
	m.renderWindow(w)
	m.changed()
}
