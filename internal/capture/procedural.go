package capture

import (
	"fmt"
	"hash/fnv"
	"html"
	"strings"

	"github.com/1broseidon/capsulewm/internal/platform"
)

const mimeSVG = "image/svg+xml"

const (
	defaultSVGWidth  = 320
	defaultSVGHeight = 200
	svgTitlebar      = 28
)

// Procedural draws a stand-in preview from the window's title, icon and
// content kind. The same request always yields the same bytes.
type Procedural struct{}

func (Procedural) Name() string { return "procedural" }

type palette struct {
	background string
	surface    string
	ink        string
}

var palettes = map[Kind]palette{
	KindEmbedded: {background: "#eef2f7", surface: "#ffffff", ink: "#51606f"},
	KindTerminal: {background: "#1e1f22", surface: "#2b2d31", ink: "#7ee787"},
	KindEditor:   {background: "#1f2430", surface: "#272d3a", ink: "#c3cdd9"},
	KindGeneric:  {background: "#f4f5f7", surface: "#ffffff", ink: "#6b7280"},
}

func (Procedural) Render(req Request) platform.Image {
	w, h := req.Bounds.Width, req.Bounds.Height
	if w <= 0 {
		w = defaultSVGWidth
	}
	if h <= 0 {
		h = defaultSVGHeight
	}
	kind := DetectKind(req.Content)
	pal := palettes[kind]
	accent := accentFor(req.Title)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" data-kind="%s">`, w, h, w, h, kind)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, w, h, pal.background)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, w, svgTitlebar, accent)
	x := 10
	if req.Icon != "" {
		fmt.Fprintf(&b, `<text x="10" y="19" font-family="sans-serif" font-size="14" fill="#ffffff">%s</text>`, html.EscapeString(req.Icon))
		x = 32
	}
	fmt.Fprintf(&b, `<text x="%d" y="19" font-family="sans-serif" font-size="13" fill="#ffffff">%s</text>`, x, html.EscapeString(req.Title))

	body := h - svgTitlebar
	switch kind {
	case KindTerminal:
		for i := 0; i < 4 && 16+i*18 < body; i++ {
			line := "$ "
			if i == 3 {
				line += "_"
			}
			fmt.Fprintf(&b, `<text x="12" y="%d" font-family="monospace" font-size="12" fill="%s">%s</text>`, svgTitlebar+20+i*18, pal.ink, line)
		}
	case KindEditor:
		fmt.Fprintf(&b, `<rect y="%d" width="28" height="%d" fill="%s"/>`, svgTitlebar, body, pal.surface)
		for i := 0; i < 6 && 12+i*16 < body; i++ {
			y := svgTitlebar + 10 + i*16
			fmt.Fprintf(&b, `<text x="8" y="%d" font-family="monospace" font-size="10" fill="%s">%d</text>`, y+8, pal.ink, i+1)
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="6" rx="3" fill="%s"/>`, 40+(i%3)*12, y+2, barWidth(w-60, i), accent)
		}
	case KindEmbedded:
		fmt.Fprintf(&b, `<rect x="12" y="%d" width="%d" height="%d" rx="6" fill="%s" stroke="%s"/>`, svgTitlebar+12, max(w-24, 0), max(body-24, 0), pal.surface, pal.ink)
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="12" fill="%s">Embedded content</text>`, w/2, svgTitlebar+body/2+4, pal.ink)
	default:
		for i := 0; i < 4 && 16+i*20 < body; i++ {
			fmt.Fprintf(&b, `<rect x="12" y="%d" width="%d" height="10" rx="5" fill="%s"/>`, svgTitlebar+14+i*20, barWidth(w-24, i), pal.ink)
		}
	}
	b.WriteString(`</svg>`)
	return platform.Image{MIME: mimeSVG, Data: []byte(b.String())}
}

// accentFor derives a stable titlebar color from the title.
func accentFor(title string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(title))
	sum := h.Sum32()
	hues := []string{"#3b82f6", "#8b5cf6", "#ec4899", "#f97316", "#10b981", "#0ea5e9", "#6366f1", "#14b8a6"}
	return hues[sum%uint32(len(hues))]
}

func barWidth(full, i int) int {
	pct := []int{90, 70, 80, 55, 65, 40}
	w := full * pct[i%len(pct)] / 100
	if w < 0 {
		return 0
	}
	return w
}
