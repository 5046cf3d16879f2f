package capture

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Kind is the rough category of a window's content.
type Kind string

const (
	KindEmbedded Kind = "embedded"
	KindTerminal Kind = "terminal"
	KindEditor   Kind = "editor"
	KindGeneric  Kind = "generic"
)

// DetectKind inspects the content structure. Embedded frames win over
// terminals, which win over editors.
func DetectKind(content *html.Node) Kind {
	if content == nil {
		return KindGeneric
	}
	doc := goquery.NewDocumentFromNode(content)
	switch {
	case doc.Find("iframe").Length() > 0:
		return KindEmbedded
	case doc.Find(".terminal, .xterm").Length() > 0:
		return KindTerminal
	case doc.Find(".CodeMirror, .monaco-editor, .code-editor").Length() > 0:
		return KindEditor
	}
	return KindGeneric
}
