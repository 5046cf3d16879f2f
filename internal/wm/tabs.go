package wm

import (
	"fmt"
	"slices"

	"github.com/1broseidon/capsulewm/internal/dom"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/google/uuid"
)

// CreateTab adds a tab to the window, creating the tab bar if needed, and
// shows it.
func (m *Manager) CreateTab(id registry.ID, title string) (string, error) {
	w, ok := m.lookup("create_tab", id)
	if !ok {
		return "", fmt.Errorf("create tab in %s: %w", id, ErrUnknownWindow)
	}
	if w.view.TabBar == nil {
		w.view.TabBar = dom.Element("div", dom.ClassTabBar)
		w.view.Root.InsertBefore(w.view.TabBar, w.view.Content)
		if w.IsCapsule {
			dom.SetHidden(w.view.TabBar, true)
		}
		w.Config.HasTabBar = true
	}

	tab := &Tab{ID: uuid.NewString(), Title: title}
	tab.header = dom.Element("div", dom.ClassTab)
	dom.SetAttr(tab.header, "data-tab", tab.ID)
	dom.SetText(tab.header, title)
	tab.pane = dom.Element("div", dom.ClassTabPane)
	dom.SetAttr(tab.pane, "data-tab", tab.ID)

	w.view.TabBar.AppendChild(tab.header)
	w.view.Content.AppendChild(tab.pane)
	w.tabs[tab.ID] = tab
	w.tabOrder = append(w.tabOrder, tab.ID)
	m.showTab(w, tab.ID)
	m.changed()
	return tab.ID, nil
}

// LoadTabApp renders app into a tab's pane.
func (m *Manager) LoadTabApp(id registry.ID, tabID string, app App) error {
	w, ok := m.lookup("load_tab_app", id)
	if !ok {
		return fmt.Errorf("load app in %s: %w", id, ErrUnknownWindow)
	}
	tab, ok := w.tabs[tabID]
	if !ok {
		return fmt.Errorf("load app in tab %s: %w", tabID, ErrUnknownTab)
	}
	if err := tab.app.runCleanup(); err != nil {
		m.logger.Error("tab cleanup failed", "window", id, "tab", tabID, "error", err)
	}
	tab.app = bindApp(app)
	m.mountApp(w, &tab.app, tab.pane, tab)
	m.changed()
	return nil
}

// ActivateTab shows tabID and hides the window's other tabs.
func (m *Manager) ActivateTab(id registry.ID, tabID string) {
	w, ok := m.lookup("activate_tab", id)
	if !ok {
		return
	}
	if _, ok := w.tabs[tabID]; !ok {
		m.logger.Warn("unknown tab", "window", id, "tab", tabID)
		return
	}
	if w.activeTab == tabID {
		return
	}
	m.showTab(w, tabID)
	m.changed()
}

func (m *Manager) showTab(w *Window, tabID string) {
	w.activeTab = tabID
	for _, t := range w.tabs {
		active := t.ID == tabID
		dom.ToggleClass(t.header, dom.ClassActive, active)
		dom.SetHidden(t.pane, !active)
	}
	if t := w.tabs[tabID]; t.Title != "" {
		w.view.SetTitle(t.Title)
	}
}

// CloseTab runs the tab app's cleanup and removes the tab. Closing the last
// tab closes the window.
func (m *Manager) CloseTab(id registry.ID, tabID string) {
	w, ok := m.lookup("close_tab", id)
	if !ok {
		return
	}
	tab, ok := w.tabs[tabID]
	if !ok {
		m.logger.Warn("unknown tab", "window", id, "tab", tabID)
		return
	}
	if err := tab.app.runCleanup(); err != nil {
		m.logger.Error("tab cleanup failed", "window", id, "tab", tabID, "error", err)
	}
	dom.Detach(tab.header)
	dom.Detach(tab.pane)
	idx := slices.Index(w.tabOrder, tabID)
	w.tabOrder = slices.Delete(w.tabOrder, idx, idx+1)
	delete(w.tabs, tabID)

	if len(w.tabOrder) == 0 {
		w.activeTab = ""
		m.CloseWindow(id)
		return
	}
	if w.activeTab == tabID {
		m.showTab(w, w.tabOrder[max(idx-1, 0)])
	}
	m.changed()
}
