// Package capsule sizes and places windows in picture-in-picture mode.
package capsule

import (
	"github.com/1broseidon/capsulewm/internal/platform"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// ChromeWidth is the horizontal space the capsule titlebar needs besides the
// title: icon, control buttons and padding.
const ChromeWidth = 140

// Params sizes capsules.
type Params struct {
	TitlebarHeight int
	PreviewHeight  int
	MinWidth       int
	MaxWidth       int
	CascadeOffset  int
}

// Layout measures titles and places capsules.
type Layout struct {
	params Params
	face   font.Face
}

// NewLayout measures with face, or the built-in 7x13 face when nil.
func NewLayout(params Params, face font.Face) *Layout {
	if face == nil {
		face = basicfont.Face7x13
	}
	return &Layout{params: params, face: face}
}

// Height is the fixed capsule height.
func (l *Layout) Height() int {
	return l.params.TitlebarHeight + l.params.PreviewHeight
}

// TitleWidth returns the rendered width of title in pixels.
func (l *Layout) TitleWidth(title string) int {
	return font.MeasureString(l.face, title).Ceil()
}

// Width returns the capsule width for title.
func (l *Layout) Width(title string) int {
	w := l.TitleWidth(title) + ChromeWidth
	if w < l.params.MinWidth {
		w = l.params.MinWidth
	}
	if w > l.params.MaxWidth {
		w = l.params.MaxWidth
	}
	return w
}

// Size returns the capsule width and height for title.
func (l *Layout) Size(title string) (int, int) {
	return l.Width(title), l.Height()
}

// Place returns the position of a new capsule of the given width. The first
// slot sits CascadeOffset in from the top-right corner of area; each taken
// slot pushes the next one down and to the left by CascadeOffset. When the
// cascade would leave the area it starts over one offset further down.
func (l *Layout) Place(area platform.Rect, width int, taken []platform.Point) platform.Point {
	off := l.params.CascadeOffset
	if off <= 0 {
		off = 1
	}
	start := platform.Point{X: area.Right() - width - off, Y: area.Y + off}
	if start.X < area.X {
		start.X = area.X
	}
	used := make(map[platform.Point]bool, len(taken))
	for _, p := range taken {
		used[p] = true
	}

	p := start
	for i := 0; i <= len(taken); i++ {
		if !used[p] {
			return p
		}
		p.X -= off
		p.Y += off
		if p.X < area.X || p.Y+l.Height() > area.Bottom() {
			start.Y += off
			p = platform.Point{X: start.X, Y: start.Y}
		}
	}
	return p
}
