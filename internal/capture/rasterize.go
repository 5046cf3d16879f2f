package capture

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const rasterPadding = 8

// BlockRasterizer is a minimal off-screen renderer: it flows the text of a
// subtree into lines, breaking at block elements and wrapping at the width.
// It is good enough for a thumbnail, not for a faithful page render.
type BlockRasterizer struct {
	Face       font.Face
	Background color.Color
	Ink        color.Color
}

// NewBlockRasterizer returns a renderer using the built-in 7x13 face.
func NewBlockRasterizer() *BlockRasterizer {
	return &BlockRasterizer{
		Face:       basicfont.Face7x13,
		Background: color.White,
		Ink:        color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
	}
}

func (r *BlockRasterizer) Rasterize(ctx context.Context, root *html.Node, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)

	metrics := r.Face.Metrics()
	lineHeight := metrics.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = 13
	}
	advance, ok := r.Face.GlyphAdvance('M')
	cols := 1
	if ok && advance.Ceil() > 0 {
		cols = max((width-2*rasterPadding)/advance.Ceil(), 1)
	}

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(r.Ink), Face: r.Face}
	y := rasterPadding + metrics.Ascent.Ceil()
	for _, line := range wrap(flowText(root), cols) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if y > height {
			break
		}
		d.Dot = fixed.P(rasterPadding, y)
		d.DrawString(line)
		y += lineHeight
	}
	return dst, nil
}

var blockAtoms = map[atom.Atom]bool{
	atom.Div: true, atom.P: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.Pre: true, atom.Section: true, atom.Header: true, atom.Footer: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

// flowText collects text as paragraphs, one per block element.
func flowText(root *html.Node) []string {
	var paras []string
	var cur strings.Builder
	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			paras = append(paras, s)
		}
		cur.Reset()
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
			cur.WriteByte(' ')
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
			if blockAtoms[n.DataAtom] {
				flush()
				defer flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	flush()
	return paras
}

func wrap(paras []string, cols int) []string {
	var lines []string
	for _, p := range paras {
		var line []rune
		for _, field := range strings.Fields(p) {
			word := []rune(field)
			for len(word) > cols {
				if len(line) > 0 {
					lines = append(lines, string(line))
					line = nil
				}
				lines = append(lines, string(word[:cols]))
				word = word[cols:]
			}
			switch {
			case len(line) == 0:
				line = append(line, word...)
			case len(line)+1+len(word) <= cols:
				line = append(append(line, ' '), word...)
			default:
				lines = append(lines, string(line))
				line = append([]rune(nil), word...)
			}
		}
		if len(line) > 0 {
			lines = append(lines, string(line))
		}
	}
	return lines
}
