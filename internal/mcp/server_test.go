package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/capsulewm/internal/ipc"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/wm"
)

var errUnknown = errors.New("unknown window")

type fakeBackend struct {
	windows []wm.WindowState
	calls   []string
	created wm.Config
	snapped string
}

func (f *fakeBackend) find(id registry.ID) (*wm.WindowState, error) {
	for i := range f.windows {
		if f.windows[i].ID == id {
			return &f.windows[i], nil
		}
	}
	return nil, errUnknown
}

func (f *fakeBackend) record(name string, id registry.ID) (*wm.WindowState, error) {
	f.calls = append(f.calls, name+" "+id.String())
	return f.find(id)
}

func (f *fakeBackend) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{WindowCount: len(f.windows), DaemonRunning: true}, nil
}

func (f *fakeBackend) ListWindows() ([]wm.WindowState, error) { return f.windows, nil }

func (f *fakeBackend) CreateWindow(cfg wm.Config) (registry.ID, error) {
	f.created = cfg
	id := registry.ID{Index: uint32(len(f.windows)), Gen: 1}
	f.windows = append(f.windows, wm.WindowState{ID: id, Title: cfg.Title})
	return id, nil
}

func (f *fakeBackend) CloseWindow(id registry.ID) error {
	_, err := f.record("close", id)
	return err
}

func (f *fakeBackend) FocusWindow(id registry.ID) error {
	w, err := f.record("focus", id)
	if err == nil {
		w.Focused = true
	}
	return err
}

func (f *fakeBackend) MinimizeWindow(id registry.ID) error {
	_, err := f.record("minimize", id)
	return err
}

func (f *fakeBackend) RestoreWindow(id registry.ID) error {
	_, err := f.record("restore", id)
	return err
}

func (f *fakeBackend) MaximizeWindow(id registry.ID) error {
	_, err := f.record("maximize", id)
	return err
}

func (f *fakeBackend) ToggleCapsule(id registry.ID) error {
	w, err := f.record("capsule", id)
	if err == nil {
		w.Capsule = !w.Capsule
	}
	return err
}

func (f *fakeBackend) SnapWindow(id registry.ID, zone string) error {
	_, err := f.record("snap", id)
	f.snapped = zone
	return err
}

func (f *fakeBackend) CaptureWindow(id registry.ID) (*ipc.CaptureData, error) {
	if _, err := f.find(id); err != nil {
		return nil, err
	}
	return &ipc.CaptureData{
		ID:         id,
		Strategy:   "rasterize",
		MIME:       "image/png",
		Data:       []byte{1, 2, 3},
		CapturedAt: time.Unix(1000, 0),
	}, nil
}

func newTestServer() (*Server, *fakeBackend) {
	f := &fakeBackend{
		windows: []wm.WindowState{
			{ID: registry.ID{Index: 0, Gen: 1}, Title: "Notes", Geometry: platform.Rect{X: 10, Y: 10, Width: 400, Height: 300}},
			{ID: registry.ID{Index: 1, Gen: 2}, Title: "Terminal", Capsule: true},
		},
	}
	return NewServer(f, nil), f
}

func TestListWindows(t *testing.T) {
	s, _ := newTestServer()
	ctx := context.Background()

	_, out, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out.Windows) != 2 || out.Windows[0].ID != "w0.1" || out.Windows[1].ID != "w1.2" {
		t.Fatalf("windows = %+v", out.Windows)
	}

	_, out, err = s.handleListWindows(ctx, nil, ListWindowsInput{CapsulesOnly: true})
	if err != nil {
		t.Fatalf("list capsules: %v", err)
	}
	if len(out.Windows) != 1 || out.Windows[0].Title != "Terminal" {
		t.Fatalf("capsules = %+v", out.Windows)
	}
}

func TestCreateWindow(t *testing.T) {
	s, f := newTestServer()
	ctx := context.Background()

	if _, _, err := s.handleCreateWindow(ctx, nil, CreateWindowInput{Title: "  "}); err == nil {
		t.Fatal("expected error for blank title")
	}

	no := false
	_, out, err := s.handleCreateWindow(ctx, nil, CreateWindowInput{Title: "Editor", Width: 640, Resizable: &no, Tabs: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.ID != "w2.1" {
		t.Fatalf("id = %q, want w2.1", out.ID)
	}
	if f.created.Width != 640 || f.created.Resizable || !f.created.HasTabBar || !f.created.Maximizable {
		t.Fatalf("config = %+v", f.created)
	}
}

func TestWindowAction(t *testing.T) {
	s, f := newTestServer()
	ctx := context.Background()

	_, out, err := s.handleWindowAction(ctx, nil, WindowActionInput{ID: "w0.1", Action: "Capsule"})
	if err != nil {
		t.Fatalf("capsule: %v", err)
	}
	if out.Window == nil || !out.Window.Capsule {
		t.Fatalf("window = %+v, want capsule", out.Window)
	}
	if len(f.calls) != 1 || f.calls[0] != "capsule w0.1" {
		t.Fatalf("calls = %v", f.calls)
	}

	if _, _, err := s.handleWindowAction(ctx, nil, WindowActionInput{ID: "w0.1", Action: "explode"}); err == nil {
		t.Fatal("expected error for unknown action")
	}
	if _, _, err := s.handleWindowAction(ctx, nil, WindowActionInput{ID: "nope", Action: "focus"}); err == nil {
		t.Fatal("expected error for malformed id")
	}
	if _, _, err := s.handleWindowAction(ctx, nil, WindowActionInput{ID: "w9.1", Action: "focus"}); !errors.Is(err, errUnknown) {
		t.Fatalf("err = %v, want unknown window", err)
	}
}

func TestSnapWindow(t *testing.T) {
	s, f := newTestServer()
	ctx := context.Background()

	if _, _, err := s.handleSnapWindow(ctx, nil, SnapWindowInput{ID: "w0.1", Zone: "middle"}); err == nil {
		t.Fatal("expected error for unknown zone")
	}
	if len(f.calls) != 0 {
		t.Fatalf("backend called for invalid zone: %v", f.calls)
	}

	if _, _, err := s.handleSnapWindow(ctx, nil, SnapWindowInput{ID: "w0.1", Zone: " Top-Left "}); err != nil {
		t.Fatalf("snap: %v", err)
	}
	if f.snapped != "top-left" {
		t.Fatalf("snapped = %q", f.snapped)
	}
}

func TestCaptureWindow(t *testing.T) {
	s, _ := newTestServer()

	res, out, err := s.handleCaptureWindow(context.Background(), nil, WindowInput{ID: "w1.2"})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if out.Strategy != "rasterize" || out.Bytes != 3 || out.MIME != "image/png" {
		t.Fatalf("out = %+v", out)
	}
	if len(res.Content) != 2 {
		t.Fatalf("content = %d entries, want 2", len(res.Content))
	}
	text, ok := res.Content[0].(*mcpsdk.TextContent)
	if !ok || !strings.Contains(text.Text, "via rasterize") {
		t.Fatalf("text = %+v", res.Content[0])
	}
	img, ok := res.Content[1].(*mcpsdk.ImageContent)
	if !ok || img.MIMEType != "image/png" || len(img.Data) != 3 {
		t.Fatalf("image = %+v", res.Content[1])
	}
}

func TestActionHandler(t *testing.T) {
	s, f := newTestServer()

	_, out, err := s.actionHandler("focus")(context.Background(), nil, WindowInput{ID: "w1.2"})
	if err != nil {
		t.Fatalf("focus: %v", err)
	}
	if out.Window == nil || !out.Window.Focused {
		t.Fatalf("window = %+v, want focused", out.Window)
	}
	if len(f.calls) != 1 || f.calls[0] != "focus w1.2" {
		t.Fatalf("calls = %v", f.calls)
	}
}
