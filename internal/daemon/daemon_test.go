package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/capsulewm/internal/ipc"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/wm"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func waitForDaemon(t *testing.T, c *ipc.Client) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		if err := c.Ping(); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("daemon never answered")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestDaemonServesAndReloads(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeConfig(t, cfgPath, "bridge:\n  listen: \"\"\n")

	d, err := New(Options{
		ConfigPath: cfgPath,
		SocketPath: filepath.Join(dir, "wm.sock"),
		Logger:     discard(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.bridge != nil {
		t.Fatal("bridge built with an empty listen address")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	c := ipc.NewClientAt(filepath.Join(dir, "wm.sock"))
	waitForDaemon(t, c)

	cfg := wm.DefaultWindowConfig("Notes")
	cfg.Position = &platform.Point{X: 10, Y: 10}
	if _, err := c.CreateWindow(cfg); err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	writeConfig(t, cfgPath, "bridge:\n  listen: \"\"\nsnap:\n  edge_band: 40\n")
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.WindowCount != 1 {
		t.Fatalf("window count after reload = %d, want 1", status.WindowCount)
	}

	writeConfig(t, cfgPath, "snap:\n  edge_band: -1\n")
	if err := c.Reload(); err == nil {
		t.Fatal("expected reload of an invalid config to fail")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "window:\n  titlebar_height: 0\n")
	if _, err := New(Options{ConfigPath: path, SocketPath: filepath.Join(t.TempDir(), "s"), Logger: discard()}); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestSanitizeError(t *testing.T) {
	live := context.Background()
	ended, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sanitizeError(live, nil); err != nil {
		t.Fatalf("nil = %v", err)
	}
	if err := sanitizeError(ended, errors.New("boom")); !errors.Is(err, context.Canceled) {
		t.Fatalf("ended ctx = %v, want context.Canceled", err)
	}

	plain := errors.New("boom")
	if err := sanitizeError(live, plain); err != plain {
		t.Fatalf("plain = %v", err)
	}

	err := sanitizeError(live, errors.Join(context.DeadlineExceeded, suture.ErrDoNotRestart))
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("deadline leaked through: %v", err)
	}
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Fatalf("ErrDoNotRestart dropped: %v", err)
	}
}
