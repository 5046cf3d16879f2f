package dom

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sanitizer strips scripts and event handlers from app markup while keeping
// the structure apps use to build their UI.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer returns the policy applied to markup returned by apps.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id", "style", "title").Globally()
	p.AllowDataAttributes()
	p.AllowElements("div", "span", "section", "header", "footer", "main", "nav",
		"button", "canvas", "pre", "code", "textarea", "input", "label", "select", "option")
	p.AllowAttrs("src", "width", "height", "sandbox", "allow").OnElements("iframe")
	p.AllowAttrs("type", "value", "placeholder", "readonly").OnElements("input")
	return &Sanitizer{policy: p}
}

// Sanitize returns cleaned markup.
func (s *Sanitizer) Sanitize(markup string) string {
	return s.policy.Sanitize(markup)
}

// ParseMarkup sanitizes markup and parses it as the children of a <div>.
func (s *Sanitizer) ParseMarkup(markup string) ([]*html.Node, error) {
	clean := s.Sanitize(markup)
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(clean), ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse app markup: %w", err)
	}
	return nodes, nil
}

// Mount replaces target's children with nodes.
func Mount(target *html.Node, nodes ...*html.Node) {
	Empty(target)
	for _, n := range nodes {
		if n == nil {
			continue
		}
		Detach(n)
		target.AppendChild(n)
	}
}
