package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/1broseidon/capsulewm/internal/dom"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const mimePNG = "image/png"

// Native asks the host for a full-fidelity grab of the window region.
type Native struct {
	Capturer platform.NativeCapturer
}

func (Native) Name() string { return "native" }

func (s Native) Capture(ctx context.Context, req Request) (platform.Image, error) {
	if s.Capturer == nil || !s.Capturer.Available() {
		return platform.Image{}, ErrUnavailable
	}
	img, err := s.Capturer.CaptureRegion(ctx, req.Bounds)
	if err != nil {
		return platform.Image{}, err
	}
	return encodePNG(img)
}

// Rasterize renders the content subtree off-screen. Cross-origin frames,
// plugin elements and fixed-position overlays are removed first because a
// rasterizer cannot draw them faithfully.
type Rasterize struct {
	Rasterizer platform.Rasterizer
}

func (Rasterize) Name() string { return "rasterize" }

func (s Rasterize) Capture(ctx context.Context, req Request) (platform.Image, error) {
	if s.Rasterizer == nil {
		return platform.Image{}, ErrUnavailable
	}
	if req.Content == nil {
		return platform.Image{}, errors.New("no content to rasterize")
	}
	root := Prune(req.Content)
	img, err := s.Rasterizer.Rasterize(ctx, root, req.Bounds.Width, req.Bounds.Height)
	if err != nil {
		return platform.Image{}, err
	}
	return encodePNG(img)
}

// Prune returns a copy of root without the elements a rasterizer skips.
func Prune(root *html.Node) *html.Node {
	clone := dom.Clone(root)
	sel := dom.Selection(clone)
	sel.Find("iframe, embed, object").Remove()
	sel.Find("[style]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return isFixed(s.Nodes[0])
	}).Remove()
	return clone
}

func isFixed(n *html.Node) bool {
	return strings.EqualFold(dom.Style(n)["position"], "fixed")
}

// Display grabs the whole display and crops it to the window.
type Display struct {
	Capturer platform.DisplayCapturer
}

func (Display) Name() string { return "display" }

func (s Display) Capture(ctx context.Context, req Request) (platform.Image, error) {
	if s.Capturer == nil || !s.Capturer.Available() {
		return platform.Image{}, ErrUnavailable
	}
	full, err := s.Capturer.CaptureDisplay(ctx)
	if err != nil {
		return platform.Image{}, err
	}
	cropped, err := Crop(full, req.Bounds)
	if err != nil {
		return platform.Image{}, err
	}
	return encodePNG(cropped)
}

// Crop copies the part of img inside r into a new image anchored at 0,0.
func Crop(img image.Image, r platform.Rect) (image.Image, error) {
	want := image.Rect(r.X, r.Y, r.Right(), r.Bottom())
	area := want.Intersect(img.Bounds())
	if area.Empty() {
		return nil, fmt.Errorf("window %v lies outside the captured display", r)
	}
	out := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	draw.Draw(out, out.Bounds(), img, area.Min, draw.Src)
	return out, nil
}

func encodePNG(img image.Image) (platform.Image, error) {
	if img == nil {
		return platform.Image{}, errors.New("strategy returned no image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return platform.Image{}, fmt.Errorf("failed to encode png: %w", err)
	}
	return platform.Image{MIME: mimePNG, Data: buf.Bytes()}, nil
}
