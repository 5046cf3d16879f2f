// Package daemon wires the engine loop, the window manager and its
// transports into one supervised process.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/capsulewm/internal/bridge"
	"github.com/1broseidon/capsulewm/internal/capture"
	"github.com/1broseidon/capsulewm/internal/config"
	"github.com/1broseidon/capsulewm/internal/ipc"
	"github.com/1broseidon/capsulewm/internal/loop"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/runtimepath"
	"github.com/1broseidon/capsulewm/internal/wm"
	"github.com/1broseidon/capsulewm/internal/x11"
)

// Options configures a daemon.
type Options struct {
	// ConfigPath overrides ~/.config/capsulewm/config.yaml.
	ConfigPath string
	// SocketPath overrides the default IPC socket.
	SocketPath string
	Logger     *slog.Logger
}

// Daemon owns the engine and the services around it.
type Daemon struct {
	configPath string
	logger     *slog.Logger

	mu  sync.Mutex
	cfg *config.Config

	loop    *loop.Loop
	manager *wm.Manager
	ipc     *ipc.Server
	bridge  *bridge.Server
	x       *x11.Connection
}

// New loads the configuration and builds the engine. Nothing runs until Run.
func New(opts Options) (*Daemon, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config
	if res.File != "" {
		logger.Info("configuration loaded", "path", res.File)
	} else {
		logger.Info("no config file, using defaults", "path", configPath)
	}

	socketPath := opts.SocketPath
	if socketPath == "" {
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, err
		}
	}

	d := &Daemon{
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
		loop:       loop.New(1024),
	}

	d.loop.SetLogger(logger.With("component", "loop"))

	d.manager = wm.NewManager(wm.Options{
		Config: cfg,
		Loop:   d.loop,
		Host:   d.buildHost(),
		Logger: logger,
	})
	d.ipc = ipc.NewServer(ipc.ServerConfig{
		SocketPath: socketPath,
		Reload:     d.Reload,
		Logger:     logger,
	}, d.manager)
	if cfg.Bridge.Listen != "" {
		d.bridge = bridge.NewServer(bridge.Config{
			Listen: cfg.Bridge.Listen,
			Logger: logger,
		}, d.manager)
	}
	return d, nil
}

// buildHost probes the host capture capabilities the config allows.
func (d *Daemon) buildHost() platform.Host {
	host := platform.Host{Rasterizer: capture.NewBlockRasterizer()}
	if !d.cfg.Capture.Native && !d.cfg.Capture.Display {
		return host
	}

	conn, err := x11.NewConnection()
	if err != nil {
		d.logger.Warn("X11 unavailable, native and display capture disabled", "error", err)
		return host
	}
	d.x = conn

	xh := x11.NewHost(conn, x11.HostOptions{
		Title:  d.cfg.Capture.HostTitle,
		Offset: platform.Point{X: d.cfg.Capture.OffsetX, Y: d.cfg.Capture.OffsetY},
	})
	if d.cfg.Capture.Native {
		host.Native = xh
	}
	if d.cfg.Capture.Display {
		host.Display = x11.NewDisplay(xh, true)
	}
	d.logger.Info("X11 capture enabled", "native", d.cfg.Capture.Native, "display", d.cfg.Capture.Display)
	return host
}

// Manager returns the engine facade. Calls must go through Manager.Do.
func (d *Daemon) Manager() *wm.Manager {
	return d.manager
}

// Reload re-reads the configuration file and applies it on the loop.
// Capture capabilities and the bridge address are fixed at startup.
func (d *Daemon) Reload(ctx context.Context) error {
	res, err := config.LoadFromPath(d.configPath)
	if err != nil {
		return err
	}
	cfg := res.Config

	d.mu.Lock()
	defer d.mu.Unlock()
	if cfg.Capture != d.cfg.Capture || cfg.Bridge != d.cfg.Bridge {
		d.logger.Warn("capture and bridge settings take effect after a restart")
	}
	if err := d.manager.Do(ctx, func(m *wm.Manager) { m.ApplyConfig(cfg) }); err != nil {
		return err
	}
	d.cfg = cfg
	d.logger.Info("configuration reloaded", "path", d.configPath)
	return nil
}

// Run starts every service under a supervisor and blocks until ctx is
// cancelled or the engine loop stops.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.close()

	super := suture.New("capsulewm", suture.Spec{
		EventHook: eventHook(d.logger.With("component", "supervisor")),
		Timeout:   5 * time.Second,
	})

	super.Add(newService("loop", d.loop.Run))
	super.Add(newService("ipc", d.ipc.Serve))
	if d.bridge != nil {
		super.Add(newService("bridge", d.bridge.Serve))
	}

	d.logger.Info("capsulewm daemon started", "socket", d.ipc.SocketPath(), "bridge", d.bridgeAddr())
	err := super.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (d *Daemon) bridgeAddr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg.Bridge.Listen
}

func (d *Daemon) close() {
	if d.x != nil {
		d.x.Close()
		d.x = nil
	}
	d.logger.Info("capsulewm daemon stopped")
}
