package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Resize.MinWidth != 200 || cfg.Resize.MinHeight != 150 {
		t.Fatalf("expected 200x150 resize minimums, got %dx%d", cfg.Resize.MinWidth, cfg.Resize.MinHeight)
	}
	if cfg.HoverDelay() != 300*time.Millisecond {
		t.Fatalf("expected 300ms hover delay, got %s", cfg.HoverDelay())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no source file, got %q", res.File)
	}
	if res.Config.Viewport.Width != 1920 {
		t.Fatalf("expected default viewport width, got %d", res.Config.Viewport.Width)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("# empty\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Capsule.ZBase != 1000000000 {
		t.Fatalf("expected default capsule z_base, got %d", res.Config.Capsule.ZBase)
	}
}

func TestLoadFromPath_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := strings.Join([]string{
		"snap:",
		"  hover_delay_ms: 150",
		"capsule:",
		"  auto_refresh: true",
		"  refresh_interval_ms: 1000",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.HoverDelay() != 150*time.Millisecond {
		t.Fatalf("expected 150ms hover delay, got %s", cfg.HoverDelay())
	}
	if !cfg.Capsule.AutoRefresh || cfg.RefreshInterval() != time.Second {
		t.Fatalf("expected auto refresh every 1s, got %v/%s", cfg.Capsule.AutoRefresh, cfg.RefreshInterval())
	}
	// Untouched keys in the same section keep their defaults.
	if cfg.Snap.EdgeBand != 20 {
		t.Fatalf("expected default edge band, got %d", cfg.Snap.EdgeBand)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("snap:\n  edge_bnad: 3\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "edge_bnad") {
		t.Fatalf("expected error to mention unknown key, got %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero viewport", func(c *Config) { c.Viewport.Width = 0 }, "viewport.width"},
		{"corner smaller than edge", func(c *Config) { c.Snap.CornerSize = 10 }, "snap.corner_size"},
		{"capsule min over max", func(c *Config) { c.Capsule.MinWidth = 400 }, "capsule.min_width"},
		{"capsule z below windows", func(c *Config) { c.Capsule.ZBase = 50 }, "capsule.z_base"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"negative capture offset", func(c *Config) { c.Capture.OffsetY = -1 }, "capture.offset_y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Capsule.CascadeOffset = 40

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Capsule.CascadeOffset != 40 {
		t.Fatalf("expected cascade offset 40, got %d", res.Config.Capsule.CascadeOffset)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.LogLevel = tt.in
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
