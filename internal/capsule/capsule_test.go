package capsule

import (
	"strings"
	"testing"

	"github.com/1broseidon/capsulewm/internal/platform"
)

func testLayout() *Layout {
	return NewLayout(Params{
		TitlebarHeight: 32,
		PreviewHeight:  120,
		MinWidth:       180,
		MaxWidth:       320,
		CascadeOffset:  24,
	}, nil)
}

func TestSize_ClampsWidth(t *testing.T) {
	l := testLayout()
	tests := []struct {
		title string
		want  int
	}{
		{"", 180},
		{"Notes", 180},
		{strings.Repeat("x", 10), 210},
		{strings.Repeat("x", 200), 320},
	}
	for _, tt := range tests {
		w, h := l.Size(tt.title)
		if w != tt.want {
			t.Fatalf("Width(%q) = %d, want %d", tt.title, w, tt.want)
		}
		if h != 152 {
			t.Fatalf("Height = %d, want 152", h)
		}
	}
}

func TestPlace_CascadesFromTopRight(t *testing.T) {
	l := testLayout()
	area := platform.Rect{Width: 1920, Height: 1080}

	first := l.Place(area, 200, nil)
	if first != (platform.Point{X: 1920 - 200 - 24, Y: 24}) {
		t.Fatalf("first = %+v", first)
	}
	second := l.Place(area, 200, []platform.Point{first})
	if second != (platform.Point{X: first.X - 24, Y: first.Y + 24}) {
		t.Fatalf("second = %+v", second)
	}
	third := l.Place(area, 200, []platform.Point{second, first})
	if third == first || third == second {
		t.Fatalf("third overlaps an existing capsule: %+v", third)
	}
	// A gap left by a restored capsule is reused.
	again := l.Place(area, 200, []platform.Point{second})
	if again != first {
		t.Fatalf("again = %+v, want %+v", again, first)
	}
}

func TestPlace_NeverCollidesInSmallArea(t *testing.T) {
	l := testLayout()
	area := platform.Rect{Width: 400, Height: 300}
	var taken []platform.Point
	for i := 0; i < 20; i++ {
		p := l.Place(area, 200, taken)
		for _, q := range taken {
			if p == q {
				t.Fatalf("iteration %d: %+v already taken", i, p)
			}
		}
		taken = append(taken, p)
	}
}
