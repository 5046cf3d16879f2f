package wm

import (
	"context"

	"github.com/1broseidon/capsulewm/internal/dom"
	"github.com/1broseidon/capsulewm/internal/loop"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"golang.org/x/net/html"
)

// Config describes a window at creation. Zero width or height take the
// configured defaults; a window without a Position is centered in the
// available area.
type Config struct {
	Title       string          `json:"title"`
	Icon        string          `json:"icon,omitempty"`
	Width       int             `json:"width,omitempty"`
	Height      int             `json:"height,omitempty"`
	Position    *platform.Point `json:"position,omitempty"`
	Resizable   bool            `json:"resizable"`
	Maximizable bool            `json:"maximizable"`
	Minimizable bool            `json:"minimizable"`
	HasTabBar   bool            `json:"has_tab_bar"`
}

// DefaultWindowConfig returns a config with every capability enabled.
func DefaultWindowConfig(title string) Config {
	return Config{
		Title:       title,
		Resizable:   true,
		Maximizable: true,
		Minimizable: true,
	}
}

// CapsuleState is everything needed to leave capsule mode exactly where the
// window was.
type CapsuleState struct {
	Geometry      platform.Rect
	Z             int
	IsMaximized   bool
	IsMinimized   bool
	SavedGeometry *platform.Rect
}

// Tab is one page of a multi-tab window.
type Tab struct {
	ID     string
	Title  string
	Icon   string
	header *html.Node
	pane   *html.Node
	app    appBinding
}

// Window is the record the manager keeps for each window.
type Window struct {
	ID       registry.ID
	Config   Config
	Geometry platform.Rect
	Z        int

	IsMaximized bool
	IsMinimized bool
	IsCapsule   bool

	// SavedGeometry is the geometry before a maximize or snap.
	SavedGeometry *platform.Rect
	CapsuleState  *CapsuleState

	view *dom.Window
	app  appBinding

	tabs      map[string]*Tab
	tabOrder  []string
	activeTab string

	capture   *captureJob
	snapTimer loop.Timer
}

type captureJob struct {
	token  uint64
	cancel context.CancelFunc
}

// Root returns the window's visual root.
func (w *Window) Root() *html.Node {
	return w.view.Root
}

// Title returns the current title.
func (w *Window) Title() string {
	return w.Config.Title
}

// Tabs returns the tabs in display order.
func (w *Window) Tabs() []*Tab {
	out := make([]*Tab, 0, len(w.tabOrder))
	for _, id := range w.tabOrder {
		out = append(out, w.tabs[id])
	}
	return out
}

// ActiveTab returns the id of the shown tab.
func (w *Window) ActiveTab() string {
	return w.activeTab
}

func (w *Window) cancelCapture() {
	if w.capture != nil {
		w.capture.cancel()
		w.capture = nil
	}
}

func (w *Window) stopSnapTimer() {
	if w.snapTimer != nil {
		w.snapTimer.Stop()
		w.snapTimer = nil
	}
	dom.RemoveClass(w.view.Root, dom.ClassSnapping)
}

// render pushes the record's geometry, stacking and flags into its nodes.
func (w *Window) render(focused bool) {
	w.view.SetGeometry(w.Geometry)
	w.view.SetZ(w.Z)
	dom.ToggleClass(w.view.Root, dom.ClassFocused, focused)
	dom.ToggleClass(w.view.Root, dom.ClassMaximized, w.IsMaximized)
	dom.ToggleClass(w.view.Root, dom.ClassMinimized, w.IsMinimized)
	dom.ToggleClass(w.view.Root, dom.ClassCapsule, w.IsCapsule)
	dom.SetHidden(w.view.Root, w.IsMinimized)
}
