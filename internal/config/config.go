package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Viewport is the initial size of the host surface the desktop is drawn in.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Snap tunes the snap-zone geometry and preview timing.
type Snap struct {
	EdgeBand    int `yaml:"edge_band"`      // Width of the band along each side
	CornerSize  int `yaml:"corner_size"`    // Side of the square at each corner
	DockHeight  int `yaml:"dock_height"`    // Height of the "bottom" dock strip
	HoverDelay  int `yaml:"hover_delay_ms"` // Delay before a zone preview appears
	AnimationMs int `yaml:"animation_ms"`   // Length of the snap transition
}

// Drag tunes the drag controller.
type Drag struct {
	MinVisible    int `yaml:"min_visible"`       // Pixels that must stay on-screen
	FrameInterval int `yaml:"frame_interval_ms"` // Coalescing interval for moves
}

// Resize tunes the resize controller.
type Resize struct {
	MinWidth   int `yaml:"min_width"`
	MinHeight  int `yaml:"min_height"`
	HandleSize int `yaml:"handle_size"` // Thickness of the edge hit area
}

// Window holds defaults for newly created windows.
type Window struct {
	DefaultWidth   int `yaml:"default_width"`
	DefaultHeight  int `yaml:"default_height"`
	TitlebarHeight int `yaml:"titlebar_height"`
	ZBase          int `yaml:"z_base"`
}

// Capsule tunes the capsule preview mode.
type Capsule struct {
	TitlebarHeight  int  `yaml:"titlebar_height"`
	PreviewHeight   int  `yaml:"preview_height"`
	MinWidth        int  `yaml:"min_width"`
	MaxWidth        int  `yaml:"max_width"`
	ZBase           int  `yaml:"z_base"` // First z value of the reserved capsule range
	CascadeOffset   int  `yaml:"cascade_offset"`
	AutoRefresh     bool `yaml:"auto_refresh"`
	RefreshInterval int  `yaml:"refresh_interval_ms"`
}

// Capture selects which host capture capabilities the daemon probes.
type Capture struct {
	TimeoutMs int  `yaml:"timeout_ms"`
	Native    bool `yaml:"native"`  // Try X11 capture of the host window
	Display   bool `yaml:"display"` // Allow user-consented display capture

	// HostTitle picks the X11 window showing the shell by title substring.
	// Empty uses the active window.
	HostTitle string `yaml:"host_title"`

	// OffsetX and OffsetY locate the shell surface inside the host window.
	OffsetX int `yaml:"offset_x"`
	OffsetY int `yaml:"offset_y"`
}

// Bridge configures the browser-facing HTTP/websocket listener.
type Bridge struct {
	Listen string `yaml:"listen"` // Empty disables the bridge
}

// Config is the effective daemon configuration.
type Config struct {
	Viewport Viewport `yaml:"viewport"`
	Snap     Snap     `yaml:"snap"`
	Drag     Drag     `yaml:"drag"`
	Resize   Resize   `yaml:"resize"`
	Window   Window   `yaml:"window"`
	Capsule  Capsule  `yaml:"capsule"`
	Capture  Capture  `yaml:"capture"`
	Bridge   Bridge   `yaml:"bridge"`
	LogLevel string   `yaml:"log_level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Viewport: Viewport{Width: 1920, Height: 1080},
		Snap: Snap{
			EdgeBand:    20,
			CornerSize:  100,
			DockHeight:  300,
			HoverDelay:  300,
			AnimationMs: 200,
		},
		Drag: Drag{
			MinVisible:    50,
			FrameInterval: 16,
		},
		Resize: Resize{
			MinWidth:   200,
			MinHeight:  150,
			HandleSize: 6,
		},
		Window: Window{
			DefaultWidth:   800,
			DefaultHeight:  600,
			TitlebarHeight: 32,
			ZBase:          100,
		},
		Capsule: Capsule{
			TitlebarHeight:  32,
			PreviewHeight:   120,
			MinWidth:        180,
			MaxWidth:        320,
			ZBase:           1000000000,
			CascadeOffset:   24,
			AutoRefresh:     false,
			RefreshInterval: 30000,
		},
		Capture: Capture{
			TimeoutMs: 5000,
			Native:    false,
			Display:   false,
		},
		Bridge: Bridge{
			Listen: "127.0.0.1:7420",
		},
		LogLevel: "info",
	}
}

// HoverDelay returns the snap preview delay.
func (c *Config) HoverDelay() time.Duration {
	return time.Duration(c.Snap.HoverDelay) * time.Millisecond
}

// SnapAnimation returns how long the snap transition class stays applied.
func (c *Config) SnapAnimation() time.Duration {
	return time.Duration(c.Snap.AnimationMs) * time.Millisecond
}

// FrameInterval returns the move coalescing interval.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Drag.FrameInterval) * time.Millisecond
}

// RefreshInterval returns the capsule auto-refresh period.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Capsule.RefreshInterval) * time.Millisecond
}

// CaptureTimeout returns the per-capture deadline.
func (c *Config) CaptureTimeout() time.Duration {
	return time.Duration(c.Capture.TimeoutMs) * time.Millisecond
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Save writes the configuration to the default location.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ValidationError points at the offending config key.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func positive(path string, v int) error {
	if v <= 0 {
		return &ValidationError{Path: path, Err: fmt.Errorf("must be > 0")}
	}
	return nil
}

func nonNegative(path string, v int) error {
	if v < 0 {
		return &ValidationError{Path: path, Err: fmt.Errorf("must be >= 0")}
	}
	return nil
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	checks := []error{
		positive("viewport.width", c.Viewport.Width),
		positive("viewport.height", c.Viewport.Height),
		positive("snap.edge_band", c.Snap.EdgeBand),
		positive("snap.corner_size", c.Snap.CornerSize),
		positive("snap.dock_height", c.Snap.DockHeight),
		nonNegative("snap.hover_delay_ms", c.Snap.HoverDelay),
		nonNegative("snap.animation_ms", c.Snap.AnimationMs),
		nonNegative("drag.min_visible", c.Drag.MinVisible),
		positive("drag.frame_interval_ms", c.Drag.FrameInterval),
		positive("resize.min_width", c.Resize.MinWidth),
		positive("resize.min_height", c.Resize.MinHeight),
		positive("resize.handle_size", c.Resize.HandleSize),
		positive("window.default_width", c.Window.DefaultWidth),
		positive("window.default_height", c.Window.DefaultHeight),
		positive("window.titlebar_height", c.Window.TitlebarHeight),
		nonNegative("window.z_base", c.Window.ZBase),
		positive("capsule.titlebar_height", c.Capsule.TitlebarHeight),
		positive("capsule.preview_height", c.Capsule.PreviewHeight),
		positive("capsule.min_width", c.Capsule.MinWidth),
		positive("capsule.max_width", c.Capsule.MaxWidth),
		nonNegative("capsule.cascade_offset", c.Capsule.CascadeOffset),
		positive("capsule.refresh_interval_ms", c.Capsule.RefreshInterval),
		positive("capture.timeout_ms", c.Capture.TimeoutMs),
		nonNegative("capture.offset_x", c.Capture.OffsetX),
		nonNegative("capture.offset_y", c.Capture.OffsetY),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	if c.Snap.CornerSize <= c.Snap.EdgeBand {
		return &ValidationError{Path: "snap.corner_size", Err: fmt.Errorf("corner_size must be larger than edge_band")}
	}
	if c.Capsule.MinWidth > c.Capsule.MaxWidth {
		return &ValidationError{Path: "capsule.min_width", Err: fmt.Errorf("min_width must be <= max_width")}
	}
	if c.Capsule.ZBase <= c.Window.ZBase {
		return &ValidationError{Path: "capsule.z_base", Err: fmt.Errorf("capsule z_base must be above window z_base")}
	}
	if c.Window.DefaultWidth < c.Resize.MinWidth || c.Window.DefaultHeight < c.Resize.MinHeight {
		return &ValidationError{Path: "window", Err: fmt.Errorf("default size must respect resize minimums")}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}
