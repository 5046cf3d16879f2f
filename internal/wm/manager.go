// Package wm is the window manager engine: it owns every window record and
// the visual tree, and runs the focus, snap, drag, resize and capsule logic
// on a single loop goroutine.
package wm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/1broseidon/capsulewm/internal/capsule"
	"github.com/1broseidon/capsulewm/internal/capture"
	"github.com/1broseidon/capsulewm/internal/config"
	"github.com/1broseidon/capsulewm/internal/dom"
	"github.com/1broseidon/capsulewm/internal/drag"
	"github.com/1broseidon/capsulewm/internal/focus"
	"github.com/1broseidon/capsulewm/internal/loop"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/resize"
	"github.com/1broseidon/capsulewm/internal/snap"
	"golang.org/x/net/html"
)

// ErrUnknownWindow is returned for ids that do not name a live window.
var ErrUnknownWindow = errors.New("unknown window")

// ErrCaptureCancelled ends a manual capture whose window closed, left
// capsule mode or started a newer capture before it finished.
var ErrCaptureCancelled = errors.New("capture cancelled")

// ErrUnknownTab is returned for tab ids the window does not have.
var ErrUnknownTab = errors.New("unknown tab")

// Notification is a short user-facing message, such as a failed capture.
type Notification struct {
	Level   slog.Level
	Window  registry.ID
	Message string
}

// Notifier delivers transient notifications to the user.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Notify(note Notification) {
	n.logger.Log(context.Background(), note.Level, note.Message, "window", note.Window)
}

// Insets are the pixels reserved on each side of the viewport, e.g. by a
// taskbar.
type Insets struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Options configures a Manager. Loop is required; everything else has a
// default.
type Options struct {
	Config   *config.Config
	Loop     *loop.Loop
	Clock    loop.Clock
	Host     platform.Host
	Pipeline *capture.Pipeline
	Logger   *slog.Logger
	Notifier Notifier
}

// Manager is the window manager. Its methods must run on the loop goroutine;
// other goroutines use Do.
type Manager struct {
	cfg       *config.Config
	loop      *loop.Loop
	clock     loop.Clock
	logger    *slog.Logger
	notifier  Notifier
	pipeline  *capture.Pipeline
	sanitizer *dom.Sanitizer
	layout    *capsule.Layout

	windows *registry.Arena[*Window]
	focus   *focus.Manager
	zones   *snap.Engine
	drags   *drag.Controller
	resizes *resize.Controller

	viewport platform.Rect
	insets   Insets

	desktop       *html.Node
	overlay       *html.Node
	preview       snap.Name
	previewWindow registry.ID

	pointers     map[int]grab
	frameTimer   loop.Timer
	refreshTimer loop.Timer
	autoRefresh  bool
	jobSeq       uint64
	screenshots  map[registry.ID]capture.Screenshot

	subscribers map[int]func()
	nextSub     int
	version     uint64
}

// NewManager creates a manager with an empty desktop.
func NewManager(opts Options) *Manager {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "wm")
	clock := opts.Clock
	if clock == nil {
		clock = loop.NewRealClock(opts.Loop)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = logNotifier{logger: logger}
	}
	pipeline := opts.Pipeline
	if pipeline == nil {
		pipeline = capture.FromHost(opts.Host, cfg.CaptureTimeout(), logger)
	}

	m := &Manager{
		cfg:         cfg,
		loop:        opts.Loop,
		clock:       clock,
		logger:      logger,
		notifier:    notifier,
		pipeline:    pipeline,
		sanitizer:   dom.NewSanitizer(),
		windows:     registry.NewArena[*Window](),
		focus:       focus.New(cfg.Window.ZBase, cfg.Capsule.ZBase),
		viewport:    platform.Rect{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height},
		desktop:     dom.Element("div", dom.ClassDesktop),
		overlay:     dom.NewOverlay(),
		pointers:    make(map[int]grab),
		screenshots: make(map[registry.ID]capture.Screenshot),
		subscribers: make(map[int]func()),
		autoRefresh: cfg.Capsule.AutoRefresh,
	}
	m.desktop.AppendChild(m.overlay)
	m.applyConfig(cfg)
	return m
}

func (m *Manager) applyConfig(cfg *config.Config) {
	m.cfg = cfg
	m.layout = capsule.NewLayout(capsule.Params{
		TitlebarHeight: cfg.Capsule.TitlebarHeight,
		PreviewHeight:  cfg.Capsule.PreviewHeight,
		MinWidth:       cfg.Capsule.MinWidth,
		MaxWidth:       cfg.Capsule.MaxWidth,
		CascadeOffset:  cfg.Capsule.CascadeOffset,
	}, nil)
	m.zones = snap.NewEngine(snap.Params{
		EdgeBand:   cfg.Snap.EdgeBand,
		CornerSize: cfg.Snap.CornerSize,
		DockHeight: cfg.Snap.DockHeight,
	}, m.availableArea())
	m.drags = drag.NewController(m.zones, m.clock, drag.Params{
		MinVisible:     cfg.Drag.MinVisible,
		TitlebarHeight: cfg.Window.TitlebarHeight,
		HoverDelay:     cfg.HoverDelay(),
	}, dragListener{m}, m.viewport)
	m.resizes = resize.NewController(resize.Limits{
		MinWidth:  cfg.Resize.MinWidth,
		MinHeight: cfg.Resize.MinHeight,
	})
}

// ApplyConfig swaps in a new configuration. Drags and resizes in progress are
// dropped; windows keep their geometry.
func (m *Manager) ApplyConfig(cfg *config.Config) {
	for _, id := range m.windows.IDs() {
		m.cancelSessions(id)
	}
	m.pointers = make(map[int]grab)
	m.applyConfig(cfg)
	m.SetAutoRefresh(cfg.Capsule.AutoRefresh)
	m.changed()
}

// Do runs fn on the loop goroutine and waits for it.
func (m *Manager) Do(ctx context.Context, fn func(*Manager)) error {
	return m.loop.Do(ctx, func() { fn(m) })
}

// Subscribe registers fn to run on the loop after state changes. The
// returned function removes it.
func (m *Manager) Subscribe(fn func()) func() {
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	return func() { delete(m.subscribers, id) }
}

// Version increases with every state change.
func (m *Manager) Version() uint64 {
	return m.version
}

func (m *Manager) changed() {
	m.version++
	for _, fn := range m.subscribers {
		fn()
	}
}

// Desktop returns the root of the visual tree.
func (m *Manager) Desktop() *html.Node {
	return m.desktop
}

// Markup renders the visual tree.
func (m *Manager) Markup() string {
	return dom.Render(m.desktop)
}

func (m *Manager) lookup(op string, id registry.ID) (*Window, bool) {
	w, ok := m.windows.Get(id)
	if !ok {
		m.logger.Warn("unknown window", "op", op, "window", id)
	}
	return w, ok
}

// cancelSessions drops drag and resize state for id.
func (m *Manager) cancelSessions(id registry.ID) {
	m.drags.Cancel(id)
	m.resizes.Cancel(id)
	for pid, g := range m.pointers {
		if g.window == id {
			delete(m.pointers, pid)
		}
	}
	if m.previewWindow == id {
		m.hidePreview()
	}
}
