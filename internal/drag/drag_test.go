package drag

import (
	"testing"
	"time"

	"github.com/1broseidon/capsulewm/internal/loop"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/snap"
)

type recorder struct {
	moves    []platform.Point
	previews []snap.Name
}

func (r *recorder) DragMoved(_ registry.ID, pos platform.Point) { r.moves = append(r.moves, pos) }
func (r *recorder) DragPreview(_ registry.ID, z snap.Name)      { r.previews = append(r.previews, z) }

var screen = platform.Rect{Width: 1920, Height: 1080}

func newTestController() (*Controller, *recorder, *loop.FakeClock) {
	zones := snap.NewEngine(snap.Params{EdgeBand: 20, CornerSize: 100, DockHeight: 300}, screen)
	clock := loop.NewFakeClock(time.Unix(0, 0))
	rec := &recorder{}
	c := NewController(zones, clock, Params{MinVisible: 50, TitlebarHeight: 32, HoverDelay: 300 * time.Millisecond}, rec, screen)
	return c, rec, clock
}

var win = registry.ID{Index: 1, Gen: 1}

func TestPhaseString(t *testing.T) {
	if PhaseIdle.String() != "idle" || PhaseDragging.String() != "dragging" || Phase(9).String() != "unknown" {
		t.Fatalf("unexpected phase strings")
	}
}

func TestMove_CoalescesUntilFlush(t *testing.T) {
	c, rec, _ := newTestController()
	c.Begin(win, platform.Point{X: 150, Y: 110}, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, false)

	c.Move(win, platform.Point{X: 160, Y: 120})
	c.Move(win, platform.Point{X: 170, Y: 130})
	if len(rec.moves) != 0 {
		t.Fatalf("moves applied before flush: %v", rec.moves)
	}
	if !c.Dirty() {
		t.Fatalf("expected dirty controller")
	}
	c.FlushAll()
	c.FlushAll()
	if len(rec.moves) != 1 || rec.moves[0] != (platform.Point{X: 120, Y: 120}) {
		t.Fatalf("moves = %v", rec.moves)
	}
}

func TestHoverDelayArmsPreview(t *testing.T) {
	c, rec, clock := newTestController()
	c.Begin(win, platform.Point{X: 150, Y: 110}, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, false)

	c.Move(win, platform.Point{X: 5, Y: 300})
	c.Flush(win)
	clock.Advance(299 * time.Millisecond)
	if len(rec.previews) != 0 {
		t.Fatalf("preview shown before the hover delay")
	}
	clock.Advance(time.Millisecond)
	if len(rec.previews) != 1 || rec.previews[0] != snap.Left {
		t.Fatalf("previews = %v", rec.previews)
	}

	res, ok := c.End(win, platform.Point{X: 5, Y: 300})
	if !ok || res.Zone != snap.Left {
		t.Fatalf("End = %+v, %v", res, ok)
	}
	if c.Active(win) {
		t.Fatalf("session should be gone")
	}
}

func TestLeavingZoneClearsPreview(t *testing.T) {
	c, rec, clock := newTestController()
	c.Begin(win, platform.Point{X: 150, Y: 110}, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, false)
	c.Move(win, platform.Point{X: 5, Y: 300})
	c.Flush(win)
	clock.Advance(300 * time.Millisecond)

	c.Move(win, platform.Point{X: 900, Y: 500})
	c.Flush(win)
	if got := rec.previews; len(got) != 2 || got[1] != "" {
		t.Fatalf("previews = %v", got)
	}
	res, _ := c.End(win, platform.Point{X: 900, Y: 500})
	if res.Zone != "" {
		t.Fatalf("zone = %q, want none", res.Zone)
	}
}

func TestQuickPassDoesNotPreview(t *testing.T) {
	c, rec, clock := newTestController()
	c.Begin(win, platform.Point{X: 150, Y: 110}, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, false)
	c.Move(win, platform.Point{X: 5, Y: 300})
	c.Flush(win)
	clock.Advance(100 * time.Millisecond)
	c.Move(win, platform.Point{X: 900, Y: 500})
	c.Flush(win)
	clock.Advance(time.Second)
	if len(rec.previews) != 0 {
		t.Fatalf("previews = %v", rec.previews)
	}
	if clock.Pending() != 0 {
		t.Fatalf("hover timer leaked")
	}
}

func TestCapsuleSkipsSnapping(t *testing.T) {
	c, rec, clock := newTestController()
	c.Begin(win, platform.Point{X: 150, Y: 110}, platform.Rect{X: 100, Y: 100, Width: 200, Height: 152}, true)
	c.Move(win, platform.Point{X: 5, Y: 300})
	c.Flush(win)
	clock.Advance(time.Second)
	res, _ := c.End(win, platform.Point{X: 5, Y: 300})
	if res.Zone != "" || len(rec.previews) != 0 {
		t.Fatalf("capsule snapped: %+v %v", res, rec.previews)
	}
}

func TestEndFlushesPendingMove(t *testing.T) {
	c, rec, _ := newTestController()
	c.Begin(win, platform.Point{X: 150, Y: 110}, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, false)
	c.Move(win, platform.Point{X: 250, Y: 210})
	res, _ := c.End(win, platform.Point{X: 250, Y: 210})
	if res.Position != (platform.Point{X: 200, Y: 200}) {
		t.Fatalf("position = %+v", res.Position)
	}
	if len(rec.moves) != 1 {
		t.Fatalf("pending move was not flushed: %v", rec.moves)
	}
}

func TestCancelHidesPreview(t *testing.T) {
	c, rec, clock := newTestController()
	c.Begin(win, platform.Point{X: 150, Y: 110}, platform.Rect{X: 100, Y: 100, Width: 800, Height: 600}, false)
	c.Move(win, platform.Point{X: 5, Y: 300})
	c.Flush(win)
	clock.Advance(300 * time.Millisecond)
	c.Cancel(win)
	if got := rec.previews; len(got) != 2 || got[1] != "" {
		t.Fatalf("previews = %v", got)
	}
	if _, ok := c.End(win, platform.Point{}); ok {
		t.Fatalf("End after Cancel should report no session")
	}
}

func TestClamp(t *testing.T) {
	c, _, _ := newTestController()
	tests := []struct {
		in, want platform.Point
	}{
		{platform.Point{X: -5000, Y: -10}, platform.Point{X: 50 - 800, Y: 0}},
		{platform.Point{X: 5000, Y: 5000}, platform.Point{X: 1920 - 50, Y: 1080 - 32}},
		{platform.Point{X: 10, Y: 10}, platform.Point{X: 10, Y: 10}},
	}
	for _, tt := range tests {
		if got := c.Clamp(tt.in, 800); got != tt.want {
			t.Fatalf("Clamp(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
