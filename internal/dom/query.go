package dom

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Selection wraps n so callers can run CSS selectors against it.
func Selection(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

// Matches reports whether any node under n (n included) matches selector.
func Matches(n *html.Node, selector string) bool {
	if n == nil {
		return false
	}
	sel := Selection(n)
	if sel.Is(selector) {
		return true
	}
	return sel.Find(selector).Length() > 0
}

// Closest walks from n up to (and including) stop and returns the first
// ancestor with class c.
func Closest(n, stop *html.Node, c string) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && HasClass(cur, c) {
			return cur
		}
		if cur == stop {
			break
		}
	}
	return nil
}
