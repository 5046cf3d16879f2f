package snap

import (
	"testing"

	"github.com/1broseidon/capsulewm/internal/platform"
)

var defaultParams = Params{EdgeBand: 20, CornerSize: 100, DockHeight: 300}

func TestDimensionsFor_ContainedInArea(t *testing.T) {
	areas := []platform.Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 64, Y: 32, Width: 1001, Height: 777},
		{X: 0, Y: 0, Width: 150, Height: 90}, // smaller than the dock height
	}
	for _, area := range areas {
		e := NewEngine(defaultParams, area)
		for _, name := range All {
			r, ok := e.DimensionsFor(name)
			if !ok {
				t.Fatalf("DimensionsFor(%s) not found", name)
			}
			if !area.ContainsRect(r) {
				t.Fatalf("area %+v: %s rect %+v escapes the area", area, name, r)
			}
			if r.Width <= 0 || r.Height <= 0 {
				t.Fatalf("area %+v: %s rect %+v is empty", area, name, r)
			}
		}
	}
}

func TestDimensionsFor_Shapes(t *testing.T) {
	e := NewEngine(defaultParams, platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080})

	tests := []struct {
		name Name
		want platform.Rect
	}{
		{Left, platform.Rect{X: 0, Y: 0, Width: 960, Height: 1080}},
		{Right, platform.Rect{X: 960, Y: 0, Width: 960, Height: 1080}},
		{Top, platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{Bottom, platform.Rect{X: 0, Y: 780, Width: 1920, Height: 300}},
		{TopLeft, platform.Rect{X: 0, Y: 0, Width: 960, Height: 540}},
		{TopRight, platform.Rect{X: 960, Y: 0, Width: 960, Height: 540}},
		{BottomLeft, platform.Rect{X: 0, Y: 540, Width: 960, Height: 540}},
		{BottomRight, platform.Rect{X: 960, Y: 540, Width: 960, Height: 540}},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			got, _ := e.DimensionsFor(tt.name)
			if got != tt.want {
				t.Fatalf("DimensionsFor(%s) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}

func TestZoneAt_CornerPriority(t *testing.T) {
	area := platform.Rect{X: 10, Y: 20, Width: 1280, Height: 720}
	e := NewEngine(defaultParams, area)

	for x := area.X; x < area.Right(); x += 3 {
		for y := area.Y; y < area.Bottom(); y += 3 {
			name, ok := e.ZoneAt(x, y)
			if !ok || KindOf(name) == KindCorner {
				continue
			}
			for _, c := range Corners {
				z, _ := e.Lookup(c)
				if z.Rect.Contains(platform.Point{X: x, Y: y}) {
					t.Fatalf("(%d,%d) matched edge %s but lies in corner %s", x, y, name, c)
				}
			}
		}
	}
}

func TestZoneAt_Points(t *testing.T) {
	e := NewEngine(defaultParams, platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080})

	tests := []struct {
		x, y int
		want Name
		ok   bool
	}{
		{5, 300, Left, true},
		{1915, 500, Right, true},
		{900, 3, Top, true},
		{900, 1075, Bottom, true},
		{5, 5, TopLeft, true},
		{50, 90, TopLeft, true},
		{1900, 1000, BottomRight, true},
		{960, 540, "", false},
		{-1, 300, "", false},
		{1920, 300, "", false},
	}
	for _, tt := range tests {
		got, ok := e.ZoneAt(tt.x, tt.y)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ZoneAt(%d,%d) = %q,%v want %q,%v", tt.x, tt.y, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSetArea_RecomputesZones(t *testing.T) {
	e := NewEngine(defaultParams, platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080})
	e.SetArea(platform.Rect{X: 200, Y: 0, Width: 1720, Height: 1040})

	if _, ok := e.ZoneAt(5, 300); ok {
		t.Fatalf("expected reserved panel area to match no zone")
	}
	if got, _ := e.ZoneAt(205, 300); got != Left {
		t.Fatalf("expected left zone next to the panel, got %q", got)
	}
	r, _ := e.DimensionsFor(Top)
	if r != e.Area() {
		t.Fatalf("expected top to fill the area, got %+v", r)
	}
}

func TestParseName(t *testing.T) {
	if n, err := ParseName("bottom-right"); err != nil || n != BottomRight {
		t.Fatalf("ParseName(bottom-right) = %q, %v", n, err)
	}
	if _, err := ParseName("middle"); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}
