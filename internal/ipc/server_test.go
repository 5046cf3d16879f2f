package ipc

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/capsulewm/internal/loop"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/wm"
)

func startServer(t *testing.T) *Client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	l := loop.New(64)
	go l.Run(ctx)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := wm.NewManager(wm.Options{Loop: l, Logger: logger})
	srv := NewServer(ServerConfig{
		SocketPath: filepath.Join(t.TempDir(), "wm.sock"),
		Reload:     func(context.Context) error { return nil },
		Logger:     logger,
	}, m)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientAt(srv.SocketPath())
}

func TestServer_WindowLifecycle(t *testing.T) {
	c := startServer(t)

	cfg := wm.DefaultWindowConfig("Notes")
	cfg.Position = &platform.Point{X: 100, Y: 100}
	id, err := c.CreateWindow(cfg)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	windows, err := c.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if len(windows) != 1 || windows[0].ID != id || windows[0].Title != "Notes" || !windows[0].Resizable {
		t.Fatalf("windows = %+v", windows)
	}

	if err := c.SnapWindow(id, "left"); err != nil {
		t.Fatalf("SnapWindow: %v", err)
	}
	windows, _ = c.ListWindows()
	if windows[0].Geometry != (platform.Rect{Width: 960, Height: 1080}) {
		t.Fatalf("geometry = %+v", windows[0].Geometry)
	}

	if err := c.ToggleCapsule(id); err != nil {
		t.Fatalf("ToggleCapsule: %v", err)
	}
	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.WindowCount != 1 || status.CapsuleCount != 1 || status.Active != id.String() || !status.DaemonRunning {
		t.Fatalf("status = %+v", status)
	}

	if err := c.CloseWindow(id); err != nil {
		t.Fatalf("CloseWindow: %v", err)
	}
	if windows, _ := c.ListWindows(); len(windows) != 0 {
		t.Fatalf("window not closed: %+v", windows)
	}
}

func TestServer_Errors(t *testing.T) {
	c := startServer(t)

	stale := registry.ID{Index: 7, Gen: 3}
	if err := c.FocusWindow(stale); err == nil || !strings.Contains(err.Error(), "unknown window") {
		t.Fatalf("FocusWindow err = %v", err)
	}

	id, _ := c.CreateWindow(wm.DefaultWindowConfig("a"))
	if err := c.SnapWindow(id, "middle"); err == nil || !strings.Contains(err.Error(), "unknown snap zone") {
		t.Fatalf("SnapWindow err = %v", err)
	}
	if _, err := c.CaptureWindow(id); err == nil || !strings.Contains(err.Error(), "all capture strategies failed") {
		t.Fatalf("CaptureWindow err = %v", err)
	}
	if err := c.call("BOGUS", nil, nil); err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("unknown command err = %v", err)
	}
}

func TestServer_SetAreaAndReload(t *testing.T) {
	c := startServer(t)
	if err := c.SetArea(wm.Insets{Bottom: 48}); err != nil {
		t.Fatalf("SetArea: %v", err)
	}
	status, _ := c.GetStatus()
	if status.Area != (platform.Rect{Width: 1920, Height: 1032}) {
		t.Fatalf("area = %+v", status.Area)
	}
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("Ping err = %v", err)
	}
}
