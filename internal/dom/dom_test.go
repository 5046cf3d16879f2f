package dom

import (
	"strings"
	"testing"

	"github.com/1broseidon/capsulewm/internal/platform"
)

func TestClassHelpers(t *testing.T) {
	n := Element("div", "a")
	AddClass(n, "b")
	AddClass(n, "a")
	if got, _ := Attr(n, "class"); got != "a b" {
		t.Fatalf("class = %q, want %q", got, "a b")
	}
	ToggleClass(n, "a", false)
	if HasClass(n, "a") || !HasClass(n, "b") {
		t.Fatalf("unexpected classes %v", Classes(n))
	}
	RemoveClass(n, "b")
	if _, ok := Attr(n, "class"); ok {
		t.Fatalf("expected class attribute removed")
	}
}

func TestSetStyle_MergesAndRemoves(t *testing.T) {
	n := Element("div")
	SetStyle(n, map[string]string{"top": "1px", "left": "2px"})
	if got, _ := Attr(n, "style"); got != "left: 2px; top: 1px;" {
		t.Fatalf("style = %q", got)
	}
	SetStyle(n, map[string]string{"top": ""})
	if got := Style(n); len(got) != 1 || got["left"] != "2px" {
		t.Fatalf("style map = %v", got)
	}
	SetHidden(n, true)
	if !Hidden(n) {
		t.Fatalf("expected hidden")
	}
	SetHidden(n, false)
	if Hidden(n) {
		t.Fatalf("expected visible")
	}
}

func TestNewWindow_Structure(t *testing.T) {
	w := NewWindow("w1.1", WindowOptions{Title: "Notes", Icon: "N", Resizable: true})
	if len(w.Handles) != 8 {
		t.Fatalf("handles = %d, want 8", len(w.Handles))
	}
	if got := TextContent(w.Title); got != "Notes" {
		t.Fatalf("title = %q", got)
	}
	if w.TabBar != nil {
		t.Fatalf("expected no tab bar")
	}
	w.SetGeometry(platform.Rect{X: 10, Y: 20, Width: 300, Height: 200})
	w.SetZ(101)
	st := Style(w.Root)
	if st["left"] != "10px" || st["top"] != "20px" || st["width"] != "300px" || st["height"] != "200px" || st["z-index"] != "101" {
		t.Fatalf("style = %v", st)
	}
	if !Matches(w.Root, `button[data-action="close"]`) {
		t.Fatalf("expected close button")
	}
}

func TestNewWindow_Controls(t *testing.T) {
	w := NewWindow("w1.1", WindowOptions{Controls: []string{"capsule", "close"}})
	if len(w.Actions) != 2 || w.Actions[0] != "capsule" || w.Actions[1] != "close" {
		t.Fatalf("actions = %v", w.Actions)
	}
	if Matches(w.Root, `button[data-action="maximize"]`) || Matches(w.Root, `button[data-action="minimize"]`) {
		t.Fatalf("disabled buttons were built")
	}
	if all := NewWindow("w2.1", WindowOptions{}); len(all.Actions) != len(ControlActions) {
		t.Fatalf("default actions = %v", all.Actions)
	}
}

func TestWindowPreview(t *testing.T) {
	w := NewWindow("w1.1", WindowOptions{})
	w.ShowPreview("data:image/png;base64,AAAA")
	if w.Preview == nil || w.Preview.NextSibling != w.Content {
		t.Fatalf("preview should sit before the content node")
	}
	w.ShowPreview("data:image/png;base64,BBBB")
	if src, _ := Attr(w.Preview, "src"); !strings.HasSuffix(src, "BBBB") {
		t.Fatalf("src = %q", src)
	}
	if strings.Count(Render(w.Root), "<img") != 1 {
		t.Fatalf("expected a single preview image")
	}
	w.RemovePreview()
	if Matches(w.Root, "img") {
		t.Fatalf("preview not removed")
	}
}

func TestSanitizer_StripsScriptsKeepsIframe(t *testing.T) {
	s := NewSanitizer()
	nodes, err := s.ParseMarkup(`<div class="app" onclick="x()"><script>alert(1)</script><iframe src="https://example.com/app"></iframe></div>`)
	if err != nil {
		t.Fatalf("ParseMarkup: %v", err)
	}
	host := Element("div", ClassContent)
	Mount(host, nodes...)
	out := Render(host)
	if strings.Contains(out, "script") || strings.Contains(out, "onclick") {
		t.Fatalf("unsafe markup survived: %s", out)
	}
	if !Matches(host, `iframe[src="https://example.com/app"]`) {
		t.Fatalf("iframe src dropped: %s", out)
	}
	if !Matches(host, "div.app") {
		t.Fatalf("class dropped: %s", out)
	}
}

func TestCloneAndClosest(t *testing.T) {
	w := NewWindow("w1.1", WindowOptions{Title: "x"})
	c := Clone(w.Root)
	if c.Parent != nil || Render(c) != Render(w.Root) {
		t.Fatalf("clone mismatch")
	}
	btn := w.Controls.FirstChild
	if Closest(btn, w.Root, ClassTitlebar) != w.Titlebar {
		t.Fatalf("expected titlebar ancestor")
	}
	if Closest(btn, w.Titlebar, ClassWindow) != nil {
		t.Fatalf("walk should stop at the stop node")
	}
}
