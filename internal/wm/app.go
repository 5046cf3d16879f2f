package wm

import (
	"fmt"

	"golang.org/x/net/html"
)

// Content is what an app renders: either a node tree or a markup string.
type Content struct {
	Node   *html.Node
	Markup string
}

// NodeContent wraps n.
func NodeContent(n *html.Node) Content { return Content{Node: n} }

// MarkupContent wraps s. Markup is sanitized before it is mounted.
func MarkupContent(s string) Content { return Content{Markup: s} }

// App is the contract hosted applications implement. Render is required;
// Titler, Iconer and Cleaner are optional and detected once when the app is
// loaded.
type App interface {
	Render() (Content, error)
}

// Titler supplies the window title.
type Titler interface {
	Title() string
}

// Iconer supplies the window icon.
type Iconer interface {
	Icon() string
}

// Cleaner releases app resources when its window or tab closes.
type Cleaner interface {
	Cleanup() error
}

// AppFunc adapts a render function to App.
type AppFunc func() (Content, error)

func (f AppFunc) Render() (Content, error) { return f() }

// appBinding is an app with its optional capabilities resolved.
type appBinding struct {
	render  func() (Content, error)
	title   func() string
	icon    func() string
	cleanup func() error
	bound   bool
	cleaned bool
}

func bindApp(app App) appBinding {
	b := appBinding{
		render:  app.Render,
		title:   func() string { return "" },
		icon:    func() string { return "" },
		cleanup: func() error { return nil },
		bound:   true,
	}
	if t, ok := app.(Titler); ok {
		b.title = t.Title
	}
	if i, ok := app.(Iconer); ok {
		b.icon = i.Icon
	}
	if c, ok := app.(Cleaner); ok {
		b.cleanup = c.Cleanup
	}
	return b
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("app panic: %v", r)
		}
	}()
	return fn()
}

func (b *appBinding) safeRender() (c Content, err error) {
	err = guard(func() error {
		var rerr error
		c, rerr = b.render()
		return rerr
	})
	return c, err
}

func (b *appBinding) safeTitle() (s string, err error) {
	err = guard(func() error {
		s = b.title()
		return nil
	})
	return s, err
}

func (b *appBinding) safeIcon() (s string, err error) {
	err = guard(func() error {
		s = b.icon()
		return nil
	})
	return s, err
}

// runCleanup invokes the app cleanup at most once.
func (b *appBinding) runCleanup() error {
	if !b.bound || b.cleaned {
		return nil
	}
	b.cleaned = true
	return guard(b.cleanup)
}
