package x11

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/capsulewm/internal/platform"
)

// maxRequestPixels keeps each GetImage reply well under the core protocol's
// request length limit.
const maxRequestPixels = 256 * 1024

// HostOptions locates the shell surface on the X server.
type HostOptions struct {
	// Title picks the host window by title substring. Empty means the
	// active window.
	Title string
	// Offset is where the shell surface starts inside the host window.
	Offset platform.Point
}

// Host grabs pixels from the X11 window that shows the desktop shell.
type Host struct {
	conn *Connection
	opts HostOptions

	mu sync.Mutex
}

// NewHost wraps conn for capture of the host window.
func NewHost(conn *Connection, opts HostOptions) *Host {
	return &Host{conn: conn, opts: opts}
}

func (h *Host) window() (xproto.Window, error) {
	if h.opts.Title != "" {
		return h.conn.FindWindowByTitle(h.opts.Title)
	}
	return h.conn.ActiveWindow()
}

// Available reports whether the host window can be found right now.
func (h *Host) Available() bool {
	if h == nil || h.conn == nil {
		return false
	}
	_, err := h.window()
	return err == nil
}

// CaptureRegion grabs region, in shell coordinates, from the host window.
func (h *Host) CaptureRegion(ctx context.Context, region platform.Rect) (image.Image, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, fmt.Errorf("empty capture region %v", region)
	}
	win, err := h.window()
	if err != nil {
		return nil, err
	}
	r := image.Rect(region.X, region.Y, region.Right(), region.Bottom()).Add(image.Pt(h.opts.Offset.X, h.opts.Offset.Y))
	img, err := h.grab(ctx, xproto.Drawable(win), r)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// grab reads r of drawable in horizontal strips.
func (h *Host) grab(ctx context.Context, d xproto.Drawable, r image.Rectangle) (*image.RGBA, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	xc := h.conn.XUtil.Conn()
	lsb := xproto.Setup(xc).ImageByteOrder == xproto.ImageOrderLSBFirst
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))

	rows := maxRequestPixels / r.Dx()
	if rows < 1 {
		rows = 1
	}
	for y := r.Min.Y; y < r.Max.Y; y += rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := min(rows, r.Max.Y-y)
		reply, err := xproto.GetImage(xc, xproto.ImageFormatZPixmap, d,
			int16(r.Min.X), int16(y), uint16(r.Dx()), uint16(n), 0xffffffff).Reply()
		if err != nil {
			return nil, fmt.Errorf("GetImage failed: %w", err)
		}
		if bpp := h.conn.bitsPerPixel(reply.Depth); bpp != 32 {
			return nil, fmt.Errorf("unsupported pixel format: depth %d, %d bits per pixel", reply.Depth, bpp)
		}
		if err := decodeBGRX(out, y-r.Min.Y, r.Dx(), n, reply.Data, lsb); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// decodeBGRX copies 32-bit ZPixmap rows into dst starting at row.
func decodeBGRX(dst *image.RGBA, row, width, rows int, data []byte, lsb bool) error {
	if len(data) < width*rows*4 {
		return fmt.Errorf("short image reply: %d bytes for %dx%d", len(data), width, rows)
	}
	for y := 0; y < rows; y++ {
		src := data[y*width*4 : (y+1)*width*4]
		off := dst.PixOffset(0, row+y)
		pix := dst.Pix[off : off+width*4]
		for x := 0; x < width; x++ {
			s := src[x*4 : x*4+4]
			d := pix[x*4 : x*4+4]
			if lsb {
				d[0], d[1], d[2] = s[2], s[1], s[0]
			} else {
				d[0], d[1], d[2] = s[1], s[2], s[3]
			}
			d[3] = 0xff
		}
	}
	return nil
}

// Display captures the whole shell surface after the user has opted in.
type Display struct {
	host    *Host
	consent bool
}

// NewDisplay returns a display capturer over host. consent records the
// user's opt-in; without it the capturer reports itself unavailable.
func NewDisplay(host *Host, consent bool) *Display {
	return &Display{host: host, consent: consent}
}

// Available reports whether display capture is allowed and possible.
func (d *Display) Available() bool {
	return d != nil && d.consent && d.host.Available()
}

// CaptureDisplay grabs the screen area under the host window from the root
// window, so anything stacked above the shell is included. The result uses
// shell coordinates.
func (d *Display) CaptureDisplay(ctx context.Context) (image.Image, error) {
	win, err := d.host.window()
	if err != nil {
		return nil, err
	}
	x, y, w, h, err := d.host.conn.geometry(win)
	if err != nil {
		return nil, err
	}
	off := d.host.opts.Offset
	r := image.Rect(x+off.X, y+off.Y, x+w, y+h)
	if r.Empty() {
		return nil, fmt.Errorf("host window has no visible shell area")
	}
	img, err := d.host.grab(ctx, xproto.Drawable(d.host.conn.Root), r)
	if err != nil {
		return nil, err
	}
	return img, nil
}
