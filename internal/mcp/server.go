package mcp

import (
	"context"
	"io"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/capsulewm/internal/ipc"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/wm"
)

const (
	ServerName    = "capsulewm"
	ServerVersion = "0.1.0"
)

// Backend is the subset of the daemon client the tools need.
type Backend interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() ([]wm.WindowState, error)
	CreateWindow(cfg wm.Config) (registry.ID, error)
	CloseWindow(id registry.ID) error
	FocusWindow(id registry.ID) error
	MinimizeWindow(id registry.ID) error
	RestoreWindow(id registry.ID) error
	MaximizeWindow(id registry.ID) error
	ToggleCapsule(id registry.ID) error
	SnapWindow(id registry.ID, zone string) error
	CaptureWindow(id registry.ID) (*ipc.CaptureData, error)
}

var _ Backend = (*ipc.Client)(nil)

// Server exposes the window manager as MCP tools over stdio.
type Server struct {
	backend   Backend
	logger    *slog.Logger
	mcpServer *mcpsdk.Server
}

// NewServer creates a server backed by the given daemon client.
func NewServer(backend Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		backend: backend,
		logger:  logger.With("component", "mcp"),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report daemon status: window and capsule counts, the focused window, the viewport and the usable work area.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List all managed windows with geometry, z-order, focus and capsule state. Window ids look like w3.1 and go stale once the window is closed.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_window",
		Description: "Open a new window. Width and height default to 800x600 and the window is centered in the work area when no position is given. Returns the new window id.",
	}, s.handleCreateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window and run its application cleanup.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Focus a window and raise it to the top of its layer. Minimized windows cannot take focus.",
	}, s.actionHandler("focus"))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_capsule",
		Description: "Collapse a window into a small floating capsule with a live preview, or expand a capsule back to its previous geometry.",
	}, s.actionHandler("capsule"))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_action",
		Description: "Apply a state change to a window. action is one of focus, minimize, restore, maximize (toggles) or capsule (toggles the floating preview capsule).",
	}, s.handleWindowAction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_window",
		Description: "Snap a window into a named zone: left, right, top, bottom, top-left, top-right, bottom-left or bottom-right. Snapping to top maximizes.",
	}, s.handleSnapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_window",
		Description: "Take a screenshot of a window's content using the best strategy the host supports. Fails when every strategy fails.",
	}, s.handleCaptureWindow)
}
