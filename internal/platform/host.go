package platform

import (
	"context"
	"image"

	"golang.org/x/net/html"
)

// Point is a pointer position in viewport coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect describes a rectangular region in viewport coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Image is an encoded picture ready to hand to the browser.
type Image struct {
	MIME string
	Data []byte
}

// Empty reports whether the image carries no payload.
func (i Image) Empty() bool { return len(i.Data) == 0 }

// NativeCapturer captures what the host actually displays inside a region of
// the desktop shell. Hosts without that privilege leave it nil.
type NativeCapturer interface {
	Available() bool
	CaptureRegion(ctx context.Context, region Rect) (image.Image, error)
}

// Rasterizer renders a visual subtree off-screen.
type Rasterizer interface {
	Rasterize(ctx context.Context, root *html.Node, width, height int) (image.Image, error)
}

// DisplayCapturer grabs the whole display after asking the user for consent.
type DisplayCapturer interface {
	Available() bool
	CaptureDisplay(ctx context.Context) (image.Image, error)
}

// Host bundles the optional capture capabilities. Any field may be nil.
type Host struct {
	Native     NativeCapturer
	Rasterizer Rasterizer
	Display    DisplayCapturer
}
