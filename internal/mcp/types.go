package mcp

import (
	"time"

	"github.com/1broseidon/capsulewm/internal/platform"
)

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	WindowCount   int           `json:"window_count"`
	CapsuleCount  int           `json:"capsule_count"`
	Active        string        `json:"active,omitempty"`
	Viewport      platform.Rect `json:"viewport"`
	Area          platform.Rect `json:"area"`
	UptimeSeconds int64         `json:"uptime_seconds"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	CapsulesOnly bool `json:"capsules_only,omitempty" jsonschema:"When true, only list windows currently shown as capsules"`
}

// WindowInfo describes a single managed window.
type WindowInfo struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Geometry  platform.Rect `json:"geometry"`
	Z         int           `json:"z"`
	Focused   bool          `json:"focused"`
	Maximized bool          `json:"maximized"`
	Minimized bool          `json:"minimized"`
	Capsule   bool          `json:"capsule"`
	Tabs      int           `json:"tabs,omitempty"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// CreateWindowInput is the input for the create_window tool.
type CreateWindowInput struct {
	Title     string `json:"title" jsonschema:"required,Window title shown in the titlebar"`
	Icon      string `json:"icon,omitempty" jsonschema:"Optional icon text or emoji"`
	Width     int    `json:"width,omitempty" jsonschema:"Width in pixels (default: 800)"`
	Height    int    `json:"height,omitempty" jsonschema:"Height in pixels (default: 600)"`
	X         *int   `json:"x,omitempty" jsonschema:"Left edge in pixels. Leave x and y unset to center the window."`
	Y         *int   `json:"y,omitempty" jsonschema:"Top edge in pixels"`
	Resizable *bool  `json:"resizable,omitempty" jsonschema:"Whether the window shows resize handles (default: true)"`
	Tabs      bool   `json:"tabs,omitempty" jsonschema:"When true, the window starts with a tab bar"`
}

// CreateWindowOutput is the output for the create_window tool.
type CreateWindowOutput struct {
	ID string `json:"id"`
}

// WindowInput names a single window.
type WindowInput struct {
	ID string `json:"id" jsonschema:"required,Window id as returned by list_windows (e.g. w0.1)"`
}

// WindowActionInput is the input for the window_action tool.
type WindowActionInput struct {
	ID     string `json:"id" jsonschema:"required,Window id as returned by list_windows"`
	Action string `json:"action" jsonschema:"required,One of focus, minimize, restore, maximize, capsule"`
}

// SnapWindowInput is the input for the snap_window tool.
type SnapWindowInput struct {
	ID   string `json:"id" jsonschema:"required,Window id as returned by list_windows"`
	Zone string `json:"zone" jsonschema:"required,Zone name (left, right, top, bottom, top-left, top-right, bottom-left, bottom-right)"`
}

// WindowOutput reports the window state after an operation.
type WindowOutput struct {
	Window *WindowInfo `json:"window,omitempty"`
	Closed bool        `json:"closed,omitempty"`
}

// CaptureWindowOutput is the output for the capture_window tool.
type CaptureWindowOutput struct {
	ID         string    `json:"id"`
	Strategy   string    `json:"strategy"`
	MIME       string    `json:"mime"`
	Bytes      int       `json:"bytes"`
	CapturedAt time.Time `json:"captured_at"`
}
