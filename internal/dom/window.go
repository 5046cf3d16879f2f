package dom

import (
	"strconv"

	"github.com/1broseidon/capsulewm/internal/platform"
	"golang.org/x/net/html"
)

// Class names shared with the browser shell's stylesheet.
const (
	ClassDesktop  = "wm-desktop"
	ClassWindow   = "wm-window"
	ClassTitlebar = "wm-titlebar"
	ClassTitle    = "wm-title"
	ClassIcon     = "wm-icon"
	ClassControls = "wm-controls"
	ClassButton   = "wm-btn"
	ClassTabBar   = "wm-tabbar"
	ClassTab      = "wm-tab"
	ClassContent  = "wm-content"
	ClassTabPane  = "wm-tabpane"
	ClassHandle   = "wm-resize"
	ClassPreview  = "wm-capsule-preview"
	ClassOverlay  = "wm-snap-preview"

	ClassFocused   = "focused"
	ClassMaximized = "maximized"
	ClassMinimized = "minimized"
	ClassCapsule   = "capsule"
	ClassSnapping  = "snapping"
	ClassActive    = "active"
)

// Control actions carried on titlebar buttons, in left-to-right order.
var ControlActions = []string{"capsule", "minimize", "maximize", "close"}

// HandleDirections lists the resize handle directions.
var HandleDirections = []string{"n", "s", "e", "w", "ne", "nw", "se", "sw"}

// WindowOptions controls which chrome a window root gets.
type WindowOptions struct {
	Title     string
	Icon      string
	Resizable bool
	HasTabBar bool
	// Controls lists the titlebar buttons to build, a subset of
	// ControlActions. Nil builds all of them.
	Controls []string
}

// Window is the set of nodes making up one window's chrome.
type Window struct {
	Root     *html.Node
	Titlebar *html.Node
	Title    *html.Node
	Icon     *html.Node
	Controls *html.Node
	TabBar   *html.Node
	Content  *html.Node
	Preview  *html.Node
	Handles  []*html.Node
	// Actions are the titlebar buttons present, left to right.
	Actions []string
}

// NewWindow builds the chrome for a window identified by id.
func NewWindow(id string, opts WindowOptions) *Window {
	w := &Window{}
	w.Root = Element("div", ClassWindow)
	SetAttr(w.Root, "id", id)
	SetAttr(w.Root, "data-window", id)

	w.Titlebar = Element("div", ClassTitlebar)
	w.Icon = Element("span", ClassIcon)
	SetText(w.Icon, opts.Icon)
	w.Title = Element("span", ClassTitle)
	SetText(w.Title, opts.Title)
	w.Controls = Element("div", ClassControls)
	w.Actions = opts.Controls
	if w.Actions == nil {
		w.Actions = ControlActions
	}
	for _, action := range w.Actions {
		btn := Element("button", ClassButton)
		SetAttr(btn, "data-action", action)
		w.Controls.AppendChild(btn)
	}
	w.Titlebar.AppendChild(w.Icon)
	w.Titlebar.AppendChild(w.Title)
	w.Titlebar.AppendChild(w.Controls)
	w.Root.AppendChild(w.Titlebar)

	if opts.HasTabBar {
		w.TabBar = Element("div", ClassTabBar)
		w.Root.AppendChild(w.TabBar)
	}

	w.Content = Element("div", ClassContent)
	w.Root.AppendChild(w.Content)

	if opts.Resizable {
		for _, dir := range HandleDirections {
			h := Element("div", ClassHandle, ClassHandle+"-"+dir)
			SetAttr(h, "data-dir", dir)
			w.Handles = append(w.Handles, h)
			w.Root.AppendChild(h)
		}
	}
	return w
}

// SetGeometry writes the window rectangle into the root's inline style.
func (w *Window) SetGeometry(r platform.Rect) {
	SetStyle(w.Root, map[string]string{
		"left":   px(r.X),
		"top":    px(r.Y),
		"width":  px(r.Width),
		"height": px(r.Height),
	})
}

// SetZ writes the stacking value.
func (w *Window) SetZ(z int) {
	SetStyle(w.Root, map[string]string{"z-index": strconv.Itoa(z)})
}

// SetTitle updates the titlebar text.
func (w *Window) SetTitle(title string) {
	SetText(w.Title, title)
}

// SetIcon updates the titlebar icon.
func (w *Window) SetIcon(icon string) {
	SetText(w.Icon, icon)
}

// SetHandlesEnabled hides resize handles, e.g. while in capsule mode.
func (w *Window) SetHandlesEnabled(enabled bool) {
	for _, h := range w.Handles {
		SetHidden(h, !enabled)
	}
}

// ShowPreview inserts (or updates) the capsule preview image.
func (w *Window) ShowPreview(src string) {
	if w.Preview == nil {
		w.Preview = Element("img", ClassPreview)
		SetAttr(w.Preview, "alt", "preview")
		w.Root.InsertBefore(w.Preview, w.Content)
	}
	if src == "" {
		RemoveAttr(w.Preview, "src")
		return
	}
	SetAttr(w.Preview, "src", src)
}

// RemovePreview drops the capsule preview image.
func (w *Window) RemovePreview() {
	if w.Preview != nil {
		Detach(w.Preview)
		w.Preview = nil
	}
}

// NewOverlay returns the snap preview overlay, hidden.
func NewOverlay() *html.Node {
	n := Element("div", ClassOverlay)
	SetHidden(n, true)
	return n
}

// ShowOverlay positions the snap preview overlay over r.
func ShowOverlay(n *html.Node, r platform.Rect, zone string) {
	SetAttr(n, "data-zone", zone)
	SetStyle(n, map[string]string{
		"display": "",
		"left":    px(r.X),
		"top":     px(r.Y),
		"width":   px(r.Width),
		"height":  px(r.Height),
	})
}

// HideOverlay hides the snap preview overlay.
func HideOverlay(n *html.Node) {
	RemoveAttr(n, "data-zone")
	SetHidden(n, true)
}

func px(v int) string {
	return strconv.Itoa(v) + "px"
}
