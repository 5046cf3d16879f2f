package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/1broseidon/capsulewm/internal/ipc"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/snap"
	"github.com/1broseidon/capsulewm/internal/wm"
)

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: capsulewm list [--json]")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	windows, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(windows); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tGEOMETRY\tZ\tSTATE")
	for _, w := range windows {
		g := w.Geometry
		fmt.Fprintf(tw, "%s\t%s\t%d,%d %dx%d\t%d\t%s\n", w.ID, w.Title, g.X, g.Y, g.Width, g.Height, w.Z, windowState(w))
	}
	tw.Flush()
	return 0
}

func windowState(w wm.WindowState) string {
	state := "normal"
	switch {
	case w.Capsule:
		state = "capsule"
	case w.Minimized:
		state = "minimized"
	case w.Maximized:
		state = "maximized"
	}
	if w.Focused {
		state += ",focused"
	}
	return state
}

func runCreate(args []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	title := fs.String("title", "", "Window title (required)")
	icon := fs.String("icon", "", "Window icon")
	width := fs.Int("width", 0, "Width in pixels (default from config)")
	height := fs.Int("height", 0, "Height in pixels (default from config)")
	x := fs.Int("x", 0, "Left edge (leave x and y unset to center the window)")
	y := fs.Int("y", 0, "Top edge")
	fixed := fs.Bool("fixed", false, "Disable resizing")
	tabs := fs.Bool("tabs", false, "Start with a tab bar")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: capsulewm create --title TITLE [options]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if *title == "" {
		fmt.Fprintln(os.Stderr, "create requires --title")
		fs.Usage()
		return 2
	}

	cfg := wm.DefaultWindowConfig(*title)
	cfg.Icon = *icon
	cfg.Width, cfg.Height = *width, *height
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "x" || f.Name == "y" {
			cfg.Position = &platform.Point{X: *x, Y: *y}
		}
	})
	cfg.Resizable = !*fixed
	cfg.HasTabBar = *tabs

	id, err := ipc.NewClient().CreateWindow(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(id)
	return 0
}

// windowArg parses the single window id argument of a subcommand.
func windowArg(name string, fs *flag.FlagSet) (registry.ID, int, bool) {
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s requires a window id\n", name)
		fs.Usage()
		return registry.ID{}, 2, false
	}
	id, err := registry.ParseID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return registry.ID{}, 2, false
	}
	return id, 0, true
}

func runWindowOp(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: capsulewm %s <id>\n", name)
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, code, ok := windowArg(name, fs)
	if !ok {
		return code
	}

	client := ipc.NewClient()
	ops := map[string]func(registry.ID) error{
		"close":    client.CloseWindow,
		"focus":    client.FocusWindow,
		"minimize": client.MinimizeWindow,
		"restore":  client.RestoreWindow,
		"maximize": client.MaximizeWindow,
		"capsule":  client.ToggleCapsule,
	}
	if err := ops[name](id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runSnap(args []string) int {
	fs := flag.NewFlagSet("snap", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: capsulewm snap <id> <zone>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprint(os.Stderr, "Zones:")
		for _, n := range snap.All {
			fmt.Fprintf(os.Stderr, " %s", n)
		}
		fmt.Fprintln(os.Stderr)
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	id, code, ok := windowArg("snap", fs)
	if !ok {
		return code
	}
	zone, err := snap.ParseName(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := ipc.NewClient().SnapWindow(id, string(zone)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runArea(args []string) int {
	fs := flag.NewFlagSet("area", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var in wm.Insets
	fs.IntVar(&in.Left, "left", 0, "Pixels reserved on the left")
	fs.IntVar(&in.Right, "right", 0, "Pixels reserved on the right")
	fs.IntVar(&in.Top, "top", 0, "Pixels reserved at the top")
	fs.IntVar(&in.Bottom, "bottom", 0, "Pixels reserved at the bottom (e.g. a taskbar)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: capsulewm area [--left N] [--right N] [--top N] [--bottom N]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if in.Left < 0 || in.Right < 0 || in.Top < 0 || in.Bottom < 0 {
		fmt.Fprintln(os.Stderr, "insets must not be negative")
		return 2
	}
	if err := ipc.NewClient().SetArea(in); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runCapture(args []string) int {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	out := fs.String("o", "", "Write the image to this file instead of printing a summary")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: capsulewm capture [-o FILE] <id>")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	id, code, ok := windowArg("capture", fs)
	if !ok {
		return code
	}

	shot, err := ipc.NewClient().CaptureWindow(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *out != "" {
		if err := os.WriteFile(*out, shot.Data, 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	fmt.Printf("%s: %s %s, %d bytes\n", shot.ID, shot.Strategy, shot.MIME, len(shot.Data))
	return 0
}
