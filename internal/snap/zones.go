package snap

import (
	"fmt"

	"github.com/1broseidon/capsulewm/internal/platform"
)

// Name identifies one of the eight snap zones.
type Name string

const (
	TopLeft     Name = "top-left"
	TopRight    Name = "top-right"
	BottomLeft  Name = "bottom-left"
	BottomRight Name = "bottom-right"
	Left        Name = "left"
	Right       Name = "right"
	Top         Name = "top"    // Maximize
	Bottom      Name = "bottom" // Dock strip
)

// Corners are tested before edges.
var Corners = []Name{TopLeft, TopRight, BottomLeft, BottomRight}

// Edges are tested after corners.
var Edges = []Name{Left, Right, Top, Bottom}

// All lists every zone in hit-test order.
var All = append(append([]Name{}, Corners...), Edges...)

// ParseName validates a zone name.
func ParseName(s string) (Name, error) {
	for _, n := range All {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown snap zone: %q", s)
}

// Kind distinguishes edge bands from corner squares.
type Kind string

const (
	KindEdge   Kind = "edge"
	KindCorner Kind = "corner"
)

// Zone is a hot region of the desktop a dragged window can be released into.
type Zone struct {
	Name Name          `json:"name"`
	Kind Kind          `json:"kind"`
	Rect platform.Rect `json:"rect"`
}

// Params sizes the hot regions.
type Params struct {
	EdgeBand   int
	CornerSize int
	DockHeight int
}

// Engine holds the zones for the current available desktop area. It has no
// other state.
type Engine struct {
	params Params
	area   platform.Rect
	zones  []Zone
}

// NewEngine computes the zones for area.
func NewEngine(params Params, area platform.Rect) *Engine {
	e := &Engine{params: params}
	e.SetArea(area)
	return e
}

// SetArea recomputes every zone for a new available area.
func (e *Engine) SetArea(area platform.Rect) {
	if area.Width < 0 {
		area.Width = 0
	}
	if area.Height < 0 {
		area.Height = 0
	}
	e.area = area
	e.zones = computeZones(e.params, area)
}

// Area returns the available desktop rectangle.
func (e *Engine) Area() platform.Rect {
	return e.area
}

// Zones returns the hot regions in hit-test order.
func (e *Engine) Zones() []Zone {
	out := make([]Zone, len(e.zones))
	copy(out, e.zones)
	return out
}

func computeZones(p Params, a platform.Rect) []Zone {
	// Shrink the hot regions on tiny areas so corners never overlap.
	corner := min(p.CornerSize, a.Width/2, a.Height/2)
	band := min(p.EdgeBand, corner)

	return []Zone{
		{Name: TopLeft, Kind: KindCorner, Rect: platform.Rect{X: a.X, Y: a.Y, Width: corner, Height: corner}},
		{Name: TopRight, Kind: KindCorner, Rect: platform.Rect{X: a.Right() - corner, Y: a.Y, Width: corner, Height: corner}},
		{Name: BottomLeft, Kind: KindCorner, Rect: platform.Rect{X: a.X, Y: a.Bottom() - corner, Width: corner, Height: corner}},
		{Name: BottomRight, Kind: KindCorner, Rect: platform.Rect{X: a.Right() - corner, Y: a.Bottom() - corner, Width: corner, Height: corner}},
		{Name: Left, Kind: KindEdge, Rect: platform.Rect{X: a.X, Y: a.Y, Width: band, Height: a.Height}},
		{Name: Right, Kind: KindEdge, Rect: platform.Rect{X: a.Right() - band, Y: a.Y, Width: band, Height: a.Height}},
		{Name: Top, Kind: KindEdge, Rect: platform.Rect{X: a.X, Y: a.Y, Width: a.Width, Height: band}},
		{Name: Bottom, Kind: KindEdge, Rect: platform.Rect{X: a.X, Y: a.Bottom() - band, Width: a.Width, Height: band}},
	}
}

// ZoneAt returns the zone containing (x, y). Corners win over edges.
func (e *Engine) ZoneAt(x, y int) (Name, bool) {
	p := platform.Point{X: x, Y: y}
	if !e.area.Contains(p) {
		return "", false
	}
	for _, z := range e.zones {
		if z.Rect.Contains(p) {
			return z.Name, true
		}
	}
	return "", false
}

// Lookup returns the hot region for name.
func (e *Engine) Lookup(name Name) (Zone, bool) {
	for _, z := range e.zones {
		if z.Name == name {
			return z, true
		}
	}
	return Zone{}, false
}

// DimensionsFor returns the rectangle a window adopts when released into name.
func (e *Engine) DimensionsFor(name Name) (platform.Rect, bool) {
	a := e.area
	halfW := a.Width / 2
	halfH := a.Height / 2

	switch name {
	case Left:
		return platform.Rect{X: a.X, Y: a.Y, Width: halfW, Height: a.Height}, true
	case Right:
		return platform.Rect{X: a.X + halfW, Y: a.Y, Width: a.Width - halfW, Height: a.Height}, true
	case Top:
		return a, true
	case Bottom:
		h := min(e.params.DockHeight, a.Height)
		return platform.Rect{X: a.X, Y: a.Bottom() - h, Width: a.Width, Height: h}, true
	case TopLeft:
		return platform.Rect{X: a.X, Y: a.Y, Width: halfW, Height: halfH}, true
	case TopRight:
		return platform.Rect{X: a.X + halfW, Y: a.Y, Width: a.Width - halfW, Height: halfH}, true
	case BottomLeft:
		return platform.Rect{X: a.X, Y: a.Y + halfH, Width: halfW, Height: a.Height - halfH}, true
	case BottomRight:
		return platform.Rect{X: a.X + halfW, Y: a.Y + halfH, Width: a.Width - halfW, Height: a.Height - halfH}, true
	default:
		return platform.Rect{}, false
	}
}

// KindOf reports whether name is a corner or an edge.
func KindOf(name Name) Kind {
	for _, c := range Corners {
		if c == name {
			return KindCorner
		}
	}
	return KindEdge
}
