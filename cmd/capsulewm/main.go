package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phsym/console-slog"
	"golang.org/x/term"

	"github.com/1broseidon/capsulewm/internal/config"
	"github.com/1broseidon/capsulewm/internal/daemon"
	"github.com/1broseidon/capsulewm/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "create":
		os.Exit(runCreate(os.Args[2:]))
	case "close", "focus", "minimize", "restore", "maximize", "capsule":
		os.Exit(runWindowOp(os.Args[1], os.Args[2:]))
	case "snap":
		os.Exit(runSnap(os.Args[2:]))
	case "area":
		os.Exit(runArea(os.Args[2:]))
	case "capture":
		os.Exit(runCapture(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: capsulewm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the window manager daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Re-read the configuration file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  list                List windows")
	fmt.Fprintln(w, "  create              Open a window")
	fmt.Fprintln(w, "  close <id>          Close a window")
	fmt.Fprintln(w, "  focus <id>          Focus and raise a window")
	fmt.Fprintln(w, "  minimize <id>       Minimize a window")
	fmt.Fprintln(w, "  restore <id>        Restore a minimized, capsule or snapped window")
	fmt.Fprintln(w, "  maximize <id>       Toggle maximize")
	fmt.Fprintln(w, "  capsule <id>        Toggle capsule mode")
	fmt.Fprintln(w, "  snap <id> <zone>    Snap a window into a zone")
	fmt.Fprintln(w, "  area                Reserve space on the desktop edges")
	fmt.Fprintln(w, "  capture <id>        Screenshot a window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'capsulewm <command> --help' for command-specific options.")
}

// newLogger writes pretty output to terminals and plain text elsewhere.
func newLogger(w *os.File, level slog.Level) *slog.Logger {
	if term.IsTerminal(int(w.Fd())) {
		return slog.New(console.NewHandler(w, &console.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseFlags parses args and maps failures onto exit codes. ok is false when
// the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/capsulewm/config.yaml)")
	socketPath := fs.String("socket", "", "IPC socket path (default: $XDG_RUNTIME_DIR/capsulewm.sock)")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: capsulewm daemon [--config PATH] [--socket PATH] [--debug]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	} else if res, err := loadConfig(*configPath); err == nil {
		level = res.Config.SlogLevel()
	}
	logger := newLogger(os.Stderr, level)
	slog.SetDefault(logger)

	d, err := daemon.New(daemon.Options{
		ConfigPath: *configPath,
		SocketPath: *socketPath,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to start daemon", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		logger.Error("daemon exited", "error", err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: capsulewm status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	active := status.Active
	if active == "" {
		active = "-"
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("window_count:   %d\n", status.WindowCount)
	fmt.Printf("capsule_count:  %d\n", status.CapsuleCount)
	fmt.Printf("active_window:  %s\n", active)
	fmt.Printf("viewport:       %dx%d\n", status.Viewport.Width, status.Viewport.Height)
	fmt.Printf("work_area:      %d,%d %dx%d\n", status.Area.X, status.Area.Y, status.Area.Width, status.Area.Height)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: capsulewm reload")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("reloaded")
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.LoadFromPath(path)
}
