// Package dom builds and edits the visual tree the browser shell mirrors.
package dom

import (
	"bytes"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element creates an element node with the given class list.
func Element(tag string, classes ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if len(classes) > 0 {
		SetAttr(n, "class", strings.Join(classes, " "))
	}
	return n
}

// Text creates a text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Attr returns the value of key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key on n, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes key from n.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Classes returns n's class list.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries class c.
func HasClass(n *html.Node, c string) bool {
	for _, have := range Classes(n) {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass adds c to n if missing.
func AddClass(n *html.Node, c string) {
	if HasClass(n, c) {
		return
	}
	SetAttr(n, "class", strings.TrimSpace(strings.Join(append(Classes(n), c), " ")))
}

// RemoveClass drops c from n.
func RemoveClass(n *html.Node, c string) {
	cur := Classes(n)
	out := cur[:0]
	for _, have := range cur {
		if have != c {
			out = append(out, have)
		}
	}
	if len(out) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(out, " "))
}

// ToggleClass sets or clears c.
func ToggleClass(n *html.Node, c string, on bool) {
	if on {
		AddClass(n, c)
	} else {
		RemoveClass(n, c)
	}
}

// Style parses n's inline style into a property map.
func Style(n *html.Node) map[string]string {
	out := map[string]string{}
	v, _ := Attr(n, "style")
	for _, decl := range strings.Split(v, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		out[prop] = strings.TrimSpace(val)
	}
	return out
}

// SetStyle merges props into n's inline style. An empty value removes the
// property. Properties are written in sorted order so output is stable.
func SetStyle(n *html.Node, props map[string]string) {
	cur := Style(n)
	for k, v := range props {
		if v == "" {
			delete(cur, k)
		} else {
			cur[k] = v
		}
	}
	if len(cur) == 0 {
		RemoveAttr(n, "style")
		return
	}
	keys := make([]string, 0, len(cur))
	for k := range cur {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(cur[k])
		b.WriteByte(';')
	}
	SetAttr(n, "style", b.String())
}

// Hidden reports whether n is hidden with display: none.
func Hidden(n *html.Node) bool {
	return Style(n)["display"] == "none"
}

// SetHidden shows or hides n.
func SetHidden(n *html.Node, hidden bool) {
	if hidden {
		SetStyle(n, map[string]string{"display": "none"})
	} else {
		SetStyle(n, map[string]string{"display": ""})
	}
}

// Detach removes n from its parent.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Empty removes every child of n.
func Empty(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// SetText replaces n's children with a single text node.
func SetText(n *html.Node, s string) {
	Empty(n)
	n.AppendChild(Text(s))
}

// TextContent concatenates every text node under n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	if n != nil {
		walk(n)
	}
	return b.String()
}

// Clone deep-copies n without its parent or siblings.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(Clone(c))
	}
	return out
}

// Render serializes n to markup.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// FindClass returns the first descendant of n (n included) with class c.
func FindClass(n *html.Node, c string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && HasClass(n, c) {
		return n
	}
	for k := n.FirstChild; k != nil; k = k.NextSibling {
		if found := FindClass(k, c); found != nil {
			return found
		}
	}
	return nil
}
