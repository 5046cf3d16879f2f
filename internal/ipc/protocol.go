package ipc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandListWindows    CommandType = "LIST_WINDOWS"
	CommandCreateWindow   CommandType = "CREATE_WINDOW"
	CommandCloseWindow    CommandType = "CLOSE_WINDOW"
	CommandFocusWindow    CommandType = "FOCUS_WINDOW"
	CommandMinimizeWindow CommandType = "MINIMIZE_WINDOW"
	CommandRestoreWindow  CommandType = "RESTORE_WINDOW"
	CommandMaximizeWindow CommandType = "MAXIMIZE_WINDOW"
	CommandToggleCapsule  CommandType = "TOGGLE_CAPSULE"
	CommandSnapWindow     CommandType = "SNAP_WINDOW"
	CommandSetArea        CommandType = "SET_AREA"
	CommandCaptureWindow  CommandType = "CAPTURE_WINDOW"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	WindowCount   int           `json:"window_count"`
	CapsuleCount  int           `json:"capsule_count"`
	Active        string        `json:"active,omitempty"`
	Viewport      platform.Rect `json:"viewport"`
	Area          platform.Rect `json:"area"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	DaemonRunning bool          `json:"daemon_running"`
}

// WindowsData is returned by LIST_WINDOWS
type WindowsData struct {
	Windows []wm.WindowState `json:"windows"`
}

// WindowPayload names a single window
type WindowPayload struct {
	ID registry.ID `json:"id"`
}

// CreateWindowData is returned by CREATE_WINDOW
type CreateWindowData struct {
	ID registry.ID `json:"id"`
}

// SnapWindowPayload represents the payload for SNAP_WINDOW
type SnapWindowPayload struct {
	ID   registry.ID `json:"id"`
	Zone string      `json:"zone"`
}

// SetAreaPayload reserves pixels on each viewport side
type SetAreaPayload = wm.Insets

// CaptureData is returned by CAPTURE_WINDOW
type CaptureData struct {
	ID         registry.ID `json:"id"`
	Strategy   string      `json:"strategy"`
	MIME       string      `json:"mime"`
	Data       []byte      `json:"data"`
	CapturedAt time.Time   `json:"captured_at"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
