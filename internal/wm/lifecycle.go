package wm

import (
	"github.com/1broseidon/capsulewm/internal/dom"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"golang.org/x/net/html"
)

// CreateWindow builds a window, adds it to the desktop and focuses it.
func (m *Manager) CreateWindow(cfg Config) registry.ID {
	w := &Window{Config: cfg, tabs: make(map[string]*Tab)}
	w.ID = m.windows.Insert(w)
	w.view = dom.NewWindow(w.ID.String(), dom.WindowOptions{
		Title:     cfg.Title,
		Icon:      cfg.Icon,
		Resizable: cfg.Resizable,
		HasTabBar: cfg.HasTabBar,
		Controls:  controlActions(cfg),
	})
	w.Geometry = m.initialGeometry(cfg)
	m.desktop.InsertBefore(w.view.Root, m.overlay)

	w.Z = m.focus.Raise(w.ID, false)
	m.renderFocus()
	m.logger.Debug("window created", "window", w.ID, "title", cfg.Title, "geometry", w.Geometry)
	m.changed()
	return w.ID
}

// controlActions keeps the titlebar buttons whose capability is enabled.
func controlActions(cfg Config) []string {
	out := make([]string, 0, len(dom.ControlActions))
	for _, a := range dom.ControlActions {
		switch {
		case a == "minimize" && !cfg.Minimizable:
		case a == "maximize" && !cfg.Maximizable:
		default:
			out = append(out, a)
		}
	}
	return out
}

func (m *Manager) initialGeometry(cfg Config) platform.Rect {
	area := m.availableArea()
	r := platform.Rect{Width: cfg.Width, Height: cfg.Height}
	if r.Width <= 0 {
		r.Width = m.cfg.Window.DefaultWidth
	}
	if r.Height <= 0 {
		r.Height = m.cfg.Window.DefaultHeight
	}
	r.Width = max(r.Width, m.cfg.Resize.MinWidth)
	r.Height = max(r.Height, m.cfg.Resize.MinHeight)
	if cfg.Position != nil {
		r.X, r.Y = cfg.Position.X, cfg.Position.Y
	} else {
		r.X = area.X + max((area.Width-r.Width)/2, 0)
		r.Y = area.Y + max((area.Height-r.Height)/2, 0)
	}
	return r
}

// LoadApp renders app into the window's content region. An app already
// loaded there is cleaned up first.
func (m *Manager) LoadApp(id registry.ID, app App) {
	w, ok := m.lookup("load_app", id)
	if !ok {
		return
	}
	if err := w.app.runCleanup(); err != nil {
		m.logger.Error("app cleanup failed", "window", id, "error", err)
	}
	w.app = bindApp(app)
	m.mountApp(w, &w.app, w.view.Content, nil)
	m.changed()
}

// mountApp renders b into target and pushes its title and icon to the
// titlebar and, for tab apps, to the tab header.
func (m *Manager) mountApp(w *Window, b *appBinding, target *html.Node, tab *Tab) {
	content, err := b.safeRender()
	if err != nil {
		m.logger.Error("app render failed", "window", w.ID, "error", err)
	} else if err := m.mount(target, content); err != nil {
		m.logger.Error("app mount failed", "window", w.ID, "error", err)
	}

	if title, err := b.safeTitle(); err != nil {
		m.logger.Error("app title failed", "window", w.ID, "error", err)
	} else if title != "" {
		w.Config.Title = title
		w.view.SetTitle(title)
		if tab != nil {
			tab.Title = title
			dom.SetText(tab.header, title)
		}
	}
	if icon, err := b.safeIcon(); err != nil {
		m.logger.Error("app icon failed", "window", w.ID, "error", err)
	} else if icon != "" {
		w.Config.Icon = icon
		w.view.SetIcon(icon)
		if tab != nil {
			tab.Icon = icon
		}
	}
}

func (m *Manager) mount(target *html.Node, c Content) error {
	if c.Node != nil {
		dom.Mount(target, c.Node)
		return nil
	}
	nodes, err := m.sanitizer.ParseMarkup(c.Markup)
	if err != nil {
		return err
	}
	dom.Mount(target, nodes...)
	return nil
}

// CloseWindow tears the window down. It always succeeds for a live id.
func (m *Manager) CloseWindow(id registry.ID) {
	w, ok := m.lookup("close", id)
	if !ok {
		return
	}
	for _, tab := range w.Tabs() {
		if err := tab.app.runCleanup(); err != nil {
			m.logger.Error("tab cleanup failed", "window", id, "tab", tab.ID, "error", err)
		}
	}
	if err := w.app.runCleanup(); err != nil {
		m.logger.Error("app cleanup failed", "window", id, "error", err)
	}

	m.cancelSessions(id)
	w.stopSnapTimer()
	w.cancelCapture()
	delete(m.screenshots, id)
	dom.Detach(w.view.Root)
	m.windows.Remove(id)
	if m.focus.IsActive(id) {
		m.focus.Clear()
	}
	m.refreshCapsuleTimer()
	m.logger.Debug("window closed", "window", id)
	m.changed()
}

// FocusWindow raises id and makes it the active window. Focusing the active
// window is a no-op; minimized windows cannot take focus.
func (m *Manager) FocusWindow(id registry.ID) {
	w, ok := m.lookup("focus", id)
	if !ok {
		return
	}
	if m.focusWindow(w) {
		m.changed()
	}
}

func (m *Manager) focusWindow(w *Window) bool {
	if w.IsMinimized || m.focus.IsActive(w.ID) {
		return false
	}
	w.Z = m.focus.Raise(w.ID, w.IsCapsule)
	m.renderFocus()
	return true
}

// ClearFocus drops focus from every window.
func (m *Manager) ClearFocus() {
	if _, ok := m.focus.Active(); !ok {
		return
	}
	m.focus.Clear()
	m.renderFocus()
	m.changed()
}

// Active returns the focused window.
func (m *Manager) Active() (registry.ID, bool) {
	return m.focus.Active()
}

func (m *Manager) renderFocus() {
	m.windows.Each(func(id registry.ID, w *Window) {
		w.render(m.focus.IsActive(id))
	})
}

func (m *Manager) renderWindow(w *Window) {
	w.render(m.focus.IsActive(w.ID))
}

// MinimizeWindow hides the window and drops its focus.
func (m *Manager) MinimizeWindow(id registry.ID) {
	w, ok := m.lookup("minimize", id)
	if !ok || w.IsMinimized || !w.Config.Minimizable {
		return
	}
	m.cancelSessions(id)
	w.IsMinimized = true
	m.focus.Forget(id)
	m.renderFocus()
	m.changed()
}

// RestoreWindow undoes the most visible transition: it un-minimizes, leaves
// capsule mode, or returns a maximized or snapped window to its saved
// geometry, in that order of precedence.
func (m *Manager) RestoreWindow(id registry.ID) {
	w, ok := m.lookup("restore", id)
	if !ok {
		return
	}
	switch {
	case w.IsMinimized:
		w.IsMinimized = false
		m.renderWindow(w)
		m.focusWindow(w)
	case w.IsCapsule:
		m.exitCapsule(w)
	case w.SavedGeometry != nil:
		m.restoreSaved(w)
	default:
		return
	}
	m.changed()
}

// MaximizeWindow toggles between the full available area and the saved
// geometry.
func (m *Manager) MaximizeWindow(id registry.ID) {
	w, ok := m.lookup("maximize", id)
	if !ok || w.IsCapsule || !w.Config.Maximizable {
		return
	}
	if w.IsMaximized {
		m.restoreSaved(w)
	} else {
		m.cancelSessions(id)
		m.saveGeometry(w)
		w.Geometry = m.availableArea()
		w.IsMaximized = true
		m.renderWindow(w)
	}
	m.changed()
}

// saveGeometry remembers the pre-transition geometry unless one is already
// saved, so a snap followed by a maximize still returns to the original.
func (m *Manager) saveGeometry(w *Window) {
	if w.SavedGeometry == nil {
		g := w.Geometry
		w.SavedGeometry = &g
	}
}

func (m *Manager) restoreSaved(w *Window) {
	if w.SavedGeometry != nil {
		w.Geometry = *w.SavedGeometry
		w.SavedGeometry = nil
	}
	w.IsMaximized = false
	m.renderWindow(w)
}
