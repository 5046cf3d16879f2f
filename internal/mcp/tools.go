package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/snap"
	"github.com/1broseidon/capsulewm/internal/wm"
)

// windowActions maps window_action names to backend calls.
var windowActions = map[string]func(Backend, registry.ID) error{
	"focus":    Backend.FocusWindow,
	"minimize": Backend.MinimizeWindow,
	"restore":  Backend.RestoreWindow,
	"maximize": Backend.MaximizeWindow,
	"capsule":  Backend.ToggleCapsule,
}

func windowInfo(w wm.WindowState) WindowInfo {
	return WindowInfo{
		ID:        w.ID.String(),
		Title:     w.Title,
		Geometry:  w.Geometry,
		Z:         w.Z,
		Focused:   w.Focused,
		Maximized: w.Maximized,
		Minimized: w.Minimized,
		Capsule:   w.Capsule,
		Tabs:      len(w.Tabs),
	}
}

func parseID(s string) (registry.ID, error) {
	return registry.ParseID(s)
}

func textResult(format string, args ...any) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// lookup re-reads a window after a state change.
func (s *Server) lookup(id registry.ID) (*WindowInfo, error) {
	windows, err := s.backend.ListWindows()
	if err != nil {
		return nil, err
	}
	for _, w := range windows {
		if w.ID == id {
			info := windowInfo(w)
			return &info, nil
		}
	}
	return nil, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	st, err := s.backend.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		WindowCount:   st.WindowCount,
		CapsuleCount:  st.CapsuleCount,
		Active:        st.Active,
		Viewport:      st.Viewport,
		Area:          st.Area,
		UptimeSeconds: st.UptimeSeconds,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.backend.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(windows))}
	for _, w := range windows {
		if args.CapsulesOnly && !w.Capsule {
			continue
		}
		out.Windows = append(out.Windows, windowInfo(w))
	}
	return nil, out, nil
}

func (s *Server) handleCreateWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CreateWindowInput) (*mcpsdk.CallToolResult, CreateWindowOutput, error) {
	title := strings.TrimSpace(args.Title)
	if title == "" {
		return nil, CreateWindowOutput{}, fmt.Errorf("title is required")
	}
	if args.Width < 0 || args.Height < 0 {
		return nil, CreateWindowOutput{}, fmt.Errorf("width and height must not be negative")
	}

	cfg := wm.DefaultWindowConfig(title)
	cfg.Icon = args.Icon
	cfg.Width = args.Width
	cfg.Height = args.Height
	if args.X != nil || args.Y != nil {
		cfg.Position = &platform.Point{}
		if args.X != nil {
			cfg.Position.X = *args.X
		}
		if args.Y != nil {
			cfg.Position.Y = *args.Y
		}
	}
	cfg.HasTabBar = args.Tabs
	if args.Resizable != nil {
		cfg.Resizable = *args.Resizable
	}

	id, err := s.backend.CreateWindow(cfg)
	if err != nil {
		return nil, CreateWindowOutput{}, err
	}
	s.logger.Info("window created", "window", id.String(), "title", title)
	return nil, CreateWindowOutput{ID: id.String()}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if err := s.backend.CloseWindow(id); err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Closed: true}, nil
}

func (s *Server) handleWindowAction(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowActionInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	action := strings.ToLower(strings.TrimSpace(args.Action))
	fn, ok := windowActions[action]
	if !ok {
		return nil, WindowOutput{}, fmt.Errorf("unknown action %q (want focus, minimize, restore, maximize or capsule)", args.Action)
	}
	if err := fn(s.backend, id); err != nil {
		return nil, WindowOutput{}, err
	}
	info, err := s.lookup(id)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: info}, nil
}

// actionHandler binds a window_action to a single-purpose tool.
func (s *Server) actionHandler(action string) mcpsdk.ToolHandlerFor[WindowInput, WindowOutput] {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
		return s.handleWindowAction(ctx, req, WindowActionInput{ID: args.ID, Action: action})
	}
}

func (s *Server) handleSnapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	zone, err := snap.ParseName(strings.ToLower(strings.TrimSpace(args.Zone)))
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if err := s.backend.SnapWindow(id, string(zone)); err != nil {
		return nil, WindowOutput{}, err
	}
	info, err := s.lookup(id)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: info}, nil
}

func (s *Server) handleCaptureWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, CaptureWindowOutput, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, CaptureWindowOutput{}, err
	}
	shot, err := s.backend.CaptureWindow(id)
	if err != nil {
		return nil, CaptureWindowOutput{}, err
	}
	out := CaptureWindowOutput{
		ID:         shot.ID.String(),
		Strategy:   shot.Strategy,
		MIME:       shot.MIME,
		Bytes:      len(shot.Data),
		CapturedAt: shot.CapturedAt,
	}
	res := textResult("Captured %s via %s (%d bytes)", out.ID, out.Strategy, out.Bytes)
	res.Content = append(res.Content, &mcpsdk.ImageContent{Data: shot.Data, MIMEType: shot.MIME})
	return res, out, nil
}
