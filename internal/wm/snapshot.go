package wm

import (
	"fmt"
	"time"

	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/snap"
)

// TabState describes one tab.
type TabState struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// ScreenshotState describes a stored capture without its payload.
type ScreenshotState struct {
	Strategy   string    `json:"strategy"`
	MIME       string    `json:"mime"`
	Bytes      int       `json:"bytes"`
	CapturedAt time.Time `json:"captured_at"`
}

// WindowState is a serializable copy of a window record.
type WindowState struct {
	ID         registry.ID      `json:"id"`
	Title      string           `json:"title"`
	Icon       string           `json:"icon,omitempty"`
	Geometry   platform.Rect    `json:"geometry"`
	Z          int              `json:"z"`
	Focused    bool             `json:"focused"`
	Maximized  bool             `json:"maximized"`
	Minimized  bool             `json:"minimized"`
	Capsule    bool             `json:"capsule"`
	Resizable  bool             `json:"resizable"`
	Tabs       []TabState       `json:"tabs,omitempty"`
	Screenshot *ScreenshotState `json:"screenshot,omitempty"`
}

// State is a full snapshot of the desktop.
type State struct {
	Version  uint64        `json:"version"`
	Viewport platform.Rect `json:"viewport"`
	Area     platform.Rect `json:"area"`
	Active   *registry.ID  `json:"active,omitempty"`
	Preview  *PreviewState `json:"preview,omitempty"`
	Windows  []WindowState `json:"windows"`
	Zones    []snap.Zone   `json:"zones"`
}

func (m *Manager) windowState(w *Window) WindowState {
	st := WindowState{
		ID:        w.ID,
		Title:     w.Config.Title,
		Icon:      w.Config.Icon,
		Geometry:  w.Geometry,
		Z:         w.Z,
		Focused:   m.focus.IsActive(w.ID),
		Maximized: w.IsMaximized,
		Minimized: w.IsMinimized,
		Capsule:   w.IsCapsule,
		Resizable: w.Config.Resizable,
	}
	for _, t := range w.Tabs() {
		st.Tabs = append(st.Tabs, TabState{ID: t.ID, Title: t.Title, Active: t.ID == w.activeTab})
	}
	if shot, ok := m.screenshots[w.ID]; ok {
		st.Screenshot = &ScreenshotState{
			Strategy:   shot.Strategy,
			MIME:       shot.Image.MIME,
			Bytes:      len(shot.Image.Data),
			CapturedAt: shot.CapturedAt,
		}
	}
	return st
}

// Windows returns every window in creation order.
func (m *Manager) Windows() []WindowState {
	out := make([]WindowState, 0, m.windows.Len())
	m.windows.Each(func(_ registry.ID, w *Window) {
		out = append(out, m.windowState(w))
	})
	return out
}

// Window returns the state of id.
func (m *Manager) Window(id registry.ID) (WindowState, error) {
	w, ok := m.windows.Get(id)
	if !ok {
		return WindowState{}, fmt.Errorf("window %s: %w", id, ErrUnknownWindow)
	}
	return m.windowState(w), nil
}

// Record returns the live record for id. Callers must stay on the loop.
func (m *Manager) Record(id registry.ID) (*Window, bool) {
	return m.windows.Get(id)
}

// Snapshot captures the whole desktop.
func (m *Manager) Snapshot() State {
	st := State{
		Version:  m.version,
		Viewport: m.viewport,
		Area:     m.availableArea(),
		Windows:  m.Windows(),
		Zones:    m.Zones(),
	}
	if id, ok := m.focus.Active(); ok {
		st.Active = &id
	}
	if p, ok := m.Preview(); ok {
		st.Preview = &p
	}
	return st
}
