package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/snap"
	"github.com/1broseidon/capsulewm/internal/wm"
)

// ServerConfig holds configuration for the IPC server.
type ServerConfig struct {
	SocketPath string
	// Reload re-reads the configuration and applies it.
	Reload func(ctx context.Context) error
	// Timeout bounds how long a command may wait on the engine.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	manager      *wm.Manager
	reload       func(ctx context.Context) error
	timeout      time.Duration
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig, manager *wm.Manager) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Server{
		socketPath: cfg.SocketPath,
		manager:    manager,
		reload:     cfg.Reload,
		timeout:    timeout,
		logger:     logger.With("component", "ipc"),
		startTime:  time.Now(),
	}
}

// SocketPath returns the unix socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove existing socket if present
	_ = os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// Serve runs the server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.shutdownMu.Lock()
	s.shuttingDown = false
	s.shutdownMu.Unlock()
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.send(conn, s.handleCommand(ctx, req))
}

func (s *Server) send(conn net.Conn, resp *Response) {
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)
	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandListWindows:
		return s.handleListWindows(ctx)
	case CommandCreateWindow:
		return s.handleCreateWindow(ctx, req.Payload)
	case CommandCloseWindow:
		return s.windowOp(ctx, req.Payload, (*wm.Manager).CloseWindow)
	case CommandFocusWindow:
		return s.windowOp(ctx, req.Payload, (*wm.Manager).FocusWindow)
	case CommandMinimizeWindow:
		return s.windowOp(ctx, req.Payload, (*wm.Manager).MinimizeWindow)
	case CommandRestoreWindow:
		return s.windowOp(ctx, req.Payload, (*wm.Manager).RestoreWindow)
	case CommandMaximizeWindow:
		return s.windowOp(ctx, req.Payload, (*wm.Manager).MaximizeWindow)
	case CommandToggleCapsule:
		return s.windowOp(ctx, req.Payload, (*wm.Manager).ToggleWindowCapsule)
	case CommandSnapWindow:
		return s.handleSnapWindow(ctx, req.Payload)
	case CommandSetArea:
		return s.handleSetArea(ctx, req.Payload)
	case CommandCaptureWindow:
		return s.handleCaptureWindow(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload(ctx context.Context) *Response {
	s.logger.Info("IPC: received RELOAD command")
	if s.reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	if err := s.reload(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.logger.Info("IPC: config reloaded")
	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus(ctx context.Context) *Response {
	var status StatusData
	err := s.manager.Do(ctx, func(m *wm.Manager) {
		st := m.Snapshot()
		status.WindowCount = len(st.Windows)
		for _, w := range st.Windows {
			if w.Capsule {
				status.CapsuleCount++
			}
		}
		if st.Active != nil {
			status.Active = st.Active.String()
		}
		status.Viewport = st.Viewport
		status.Area = st.Area
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListWindows(ctx context.Context) *Response {
	var data WindowsData
	if err := s.manager.Do(ctx, func(m *wm.Manager) { data.Windows = m.Windows() }); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list windows: %v", err))
	}
	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleCreateWindow(ctx context.Context, payload json.RawMessage) *Response {
	cfg := wm.DefaultWindowConfig("")
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &cfg); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid create payload: %v", err))
		}
	}
	var data CreateWindowData
	if err := s.manager.Do(ctx, func(m *wm.Manager) { data.ID = m.CreateWindow(cfg) }); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to create window: %v", err))
	}
	resp, _ := NewOKResponse(data)
	return resp
}

// windowOp decodes a window id and applies op to it on the engine loop.
func (s *Server) windowOp(ctx context.Context, payload json.RawMessage, op func(*wm.Manager, registry.ID)) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid window payload: %v", err))
	}
	var opErr error
	err := s.manager.Do(ctx, func(m *wm.Manager) {
		if _, opErr = m.Window(req.ID); opErr != nil {
			return
		}
		op(m, req.ID)
	})
	if err == nil {
		err = opErr
	}
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSnapWindow(ctx context.Context, payload json.RawMessage) *Response {
	var req SnapWindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid snap payload: %v", err))
	}
	zone, err := snap.ParseName(req.Zone)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.windowOp(ctx, payload, func(m *wm.Manager, id registry.ID) {
		m.SnapWindowToZone(id, zone)
	})
}

func (s *Server) handleSetArea(ctx context.Context, payload json.RawMessage) *Response {
	var req SetAreaPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid area payload: %v", err))
	}
	if err := s.manager.Do(ctx, func(m *wm.Manager) {
		m.UpdateAvailableArea(req.Left, req.Right, req.Top, req.Bottom)
	}); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set area: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleCaptureWindow(ctx context.Context, payload json.RawMessage) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid capture payload: %v", err))
	}
	shot, err := wm.CaptureAndWait(ctx, s.manager, req.ID)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to capture window: %v", err))
	}
	resp, _ := NewOKResponse(CaptureData{
		ID:         req.ID,
		Strategy:   shot.Strategy,
		MIME:       shot.Image.MIME,
		Data:       shot.Image.Data,
		CapturedAt: shot.CapturedAt,
	})
	return resp
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	_ = os.Remove(s.socketPath)
}
