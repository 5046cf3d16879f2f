package x11

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/1broseidon/capsulewm/internal/platform"
)

func TestDecodeBGRX(t *testing.T) {
	tests := []struct {
		name string
		lsb  bool
		px   []byte
		want color.RGBA
	}{
		{"lsb first", true, []byte{0x10, 0x20, 0x30, 0x00}, color.RGBA{R: 0x30, G: 0x20, B: 0x10, A: 0xff}},
		{"msb first", false, []byte{0x00, 0x30, 0x20, 0x10}, color.RGBA{R: 0x30, G: 0x20, B: 0x10, A: 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
			data := append(append([]byte{}, tt.px...), tt.px...)
			if err := decodeBGRX(dst, 1, 2, 1, data, tt.lsb); err != nil {
				t.Fatalf("decodeBGRX: %v", err)
			}
			if got := dst.RGBAAt(1, 1); got != tt.want {
				t.Fatalf("pixel = %+v, want %+v", got, tt.want)
			}
			if got := dst.RGBAAt(0, 0); got != (color.RGBA{}) {
				t.Fatalf("row 0 touched: %+v", got)
			}
		})
	}
}

func TestDecodeBGRXShortReply(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 1))
	if err := decodeBGRX(dst, 0, 4, 1, make([]byte, 8), true); err == nil {
		t.Fatal("expected error for short reply")
	}
}

func TestUnconnectedHostIsUnavailable(t *testing.T) {
	var h *Host
	if h.Available() {
		t.Fatal("nil host reported available")
	}
	d := NewDisplay(NewHost(nil, HostOptions{}), true)
	if d.Available() {
		t.Fatal("display without a connection reported available")
	}
	if _, err := NewHost(nil, HostOptions{}).CaptureRegion(context.Background(), platform.Rect{}); err == nil {
		t.Fatal("expected error for empty region")
	}
}
