package wm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/capsulewm/internal/capture"
	"github.com/1broseidon/capsulewm/internal/dom"
	"github.com/1broseidon/capsulewm/internal/platform"
	"github.com/1broseidon/capsulewm/internal/registry"
)

// ToggleWindowCapsule switches the window between normal and capsule mode.
func (m *Manager) ToggleWindowCapsule(id registry.ID) {
	w, ok := m.lookup("toggle_capsule", id)
	if !ok {
		return
	}
	if w.IsCapsule {
		m.exitCapsule(w)
	} else {
		m.enterCapsule(w)
	}
	m.changed()
}

func (m *Manager) enterCapsule(w *Window) {
	m.cancelSessions(w.ID)
	w.stopSnapTimer()

	// The capture works from the content as it looks before the shrink.
	req := m.captureRequest(w)

	w.CapsuleState = &CapsuleState{
		Geometry:      w.Geometry,
		Z:             w.Z,
		IsMaximized:   w.IsMaximized,
		IsMinimized:   w.IsMinimized,
		SavedGeometry: w.SavedGeometry,
	}

	width, height := m.layout.Size(w.Config.Title)
	pos := m.layout.Place(m.availableArea(), width, m.capsulePositions(w.ID))
	w.Geometry = platform.Rect{X: pos.X, Y: pos.Y, Width: width, Height: height}
	w.IsCapsule = true
	w.IsMaximized = false
	w.IsMinimized = false

	dom.SetHidden(w.view.Content, true)
	if w.view.TabBar != nil {
		dom.SetHidden(w.view.TabBar, true)
	}
	w.view.SetHandlesEnabled(false)
	w.view.ShowPreview("")

	w.Z = m.focus.Raise(w.ID, true)
	m.renderFocus()

	m.startCapture(w, req)
	m.refreshCapsuleTimer()
	m.logger.Debug("capsule entered", "window", w.ID, "geometry", w.Geometry)
}

func (m *Manager) exitCapsule(w *Window) {
	st := w.CapsuleState
	if st == nil {
		return
	}
	m.cancelSessions(w.ID)
	w.cancelCapture()
	delete(m.screenshots, w.ID)

	w.Geometry = st.Geometry
	w.Z = st.Z
	w.IsMaximized = st.IsMaximized
	w.IsMinimized = st.IsMinimized
	w.SavedGeometry = st.SavedGeometry
	w.IsCapsule = false
	w.CapsuleState = nil

	w.view.RemovePreview()
	dom.SetHidden(w.view.Content, false)
	if w.view.TabBar != nil {
		dom.SetHidden(w.view.TabBar, false)
	}
	w.view.SetHandlesEnabled(true)
	if w.IsMinimized {
		m.focus.Forget(w.ID)
	}
	m.renderFocus()
	m.refreshCapsuleTimer()
	m.logger.Debug("capsule exited", "window", w.ID, "geometry", w.Geometry)
}

func (m *Manager) capsulePositions(except registry.ID) []platform.Point {
	var out []platform.Point
	m.windows.Each(func(id registry.ID, w *Window) {
		if id != except && w.IsCapsule {
			out = append(out, platform.Point{X: w.Geometry.X, Y: w.Geometry.Y})
		}
	})
	return out
}

// contentBounds is the on-screen rectangle of the content region of w when
// it sits at g.
func (m *Manager) contentBounds(w *Window, g platform.Rect) platform.Rect {
	top := m.cfg.Window.TitlebarHeight
	if w.view.TabBar != nil {
		top += TabBarHeight
	}
	return platform.Rect{X: g.X, Y: g.Y + top, Width: g.Width, Height: max(g.Height-top, 0)}
}

// captureRequest snapshots the window for a capture job. The content clone
// belongs to the job so the strategies never touch the live tree.
func (m *Manager) captureRequest(w *Window) capture.Request {
	g := w.Geometry
	if w.CapsuleState != nil {
		g = w.CapsuleState.Geometry
	}
	bounds := m.contentBounds(w, g)
	return capture.Request{
		Window:  w.ID,
		Title:   w.Config.Title,
		Icon:    w.Config.Icon,
		Bounds:  bounds,
		Content: dom.Clone(w.view.Content),
	}
}

// beginCapture cancels the capture in flight for w and registers a new job.
// The returned context is cancelled by cancelCapture.
func (m *Manager) beginCapture(w *Window) (context.Context, *captureJob) {
	w.cancelCapture()
	m.jobSeq++
	ctx, cancel := context.WithCancel(context.Background())
	job := &captureJob{token: m.jobSeq, cancel: cancel}
	w.capture = job
	return ctx, job
}

// startCapture runs the full pipeline off the loop. A capture already in
// flight for the window is cancelled.
func (m *Manager) startCapture(w *Window, req capture.Request) {
	ctx, job := m.beginCapture(w)
	id, token := w.ID, job.token
	go func() {
		res, err := m.pipeline.Capture(ctx, req)
		if postErr := m.loop.Post(func() { m.finishCapture(id, token, res, err) }); postErr != nil {
			job.cancel()
		}
	}()
}

func (m *Manager) finishCapture(id registry.ID, token uint64, res capture.Result, err error) {
	w, ok := m.windows.Get(id)
	if !ok || !w.IsCapsule || w.capture == nil || w.capture.token != token {
		return
	}
	w.capture.cancel()
	w.capture = nil
	if err != nil {
		m.logger.Debug("capsule capture abandoned", "window", id, "error", err)
		return
	}
	shot := capture.Screenshot{Window: id, Image: res.Image, Strategy: res.Strategy, CapturedAt: m.clock.Now()}
	m.screenshots[id] = shot
	w.view.ShowPreview(shot.DataURL())
	m.logger.Debug("capsule preview captured", "window", id, "strategy", res.Strategy)
	m.changed()
}

// Screenshot returns the stored capture for id.
func (m *Manager) Screenshot(id registry.ID) (capture.Screenshot, bool) {
	s, ok := m.screenshots[id]
	return s, ok
}

// CaptureWindow runs the host capture strategies for id off the loop, without
// the procedural fallback. It replaces any capture in flight for the window.
// done runs on the loop with the result. When every strategy fails the user
// is notified once and done gets the error. A capture cancelled by closing
// the window, leaving capsule mode or a newer capture ends with
// ErrCaptureCancelled.
func (m *Manager) CaptureWindow(id registry.ID, done func(capture.Screenshot, error)) error {
	w, ok := m.lookup("capture", id)
	if !ok {
		return fmt.Errorf("capture %s: %w", id, ErrUnknownWindow)
	}
	if done == nil {
		done = func(capture.Screenshot, error) {}
	}
	req := m.captureRequest(w)
	ctx, job := m.beginCapture(w)
	token := job.token
	go func() {
		res, err := m.pipeline.CaptureStrict(ctx, req)
		if postErr := m.loop.Post(func() { m.finishManualCapture(id, token, res, err, done) }); postErr != nil {
			job.cancel()
		}
	}()
	return nil
}

func (m *Manager) finishManualCapture(id registry.ID, token uint64, res capture.Result, err error, done func(capture.Screenshot, error)) {
	w, ok := m.windows.Get(id)
	if !ok || w.capture == nil || w.capture.token != token {
		m.logger.Debug("manual capture dropped", "window", id)
		done(capture.Screenshot{}, fmt.Errorf("capture %s: %w", id, ErrCaptureCancelled))
		return
	}
	w.capture.cancel()
	w.capture = nil

	if err != nil {
		if errors.Is(err, capture.ErrExhausted) {
			m.notifier.Notify(Notification{
				Level:   slog.LevelWarn,
				Window:  id,
				Message: "Screen capture is not available for this window",
			})
		}
		// The manual job may have replaced the capsule's own capture.
		if _, stored := m.screenshots[id]; w.IsCapsule && !stored {
			m.startCapture(w, m.captureRequest(w))
		}
		done(capture.Screenshot{}, err)
		return
	}
	shot := capture.Screenshot{Window: id, Image: res.Image, Strategy: res.Strategy, CapturedAt: m.clock.Now()}
	m.screenshots[id] = shot
	if w.IsCapsule {
		w.view.ShowPreview(shot.DataURL())
	}
	m.changed()
	done(shot, nil)
}

// SetAutoRefresh turns periodic re-capture of capsules on or off.
func (m *Manager) SetAutoRefresh(on bool) {
	m.autoRefresh = on
	m.refreshCapsuleTimer()
}

// refreshCapsuleTimer keeps the refresh timer armed exactly while auto
// refresh is on and at least one capsule exists.
func (m *Manager) refreshCapsuleTimer() {
	want := m.autoRefresh && len(m.capsulePositions(registry.ID{})) > 0
	switch {
	case want && m.refreshTimer == nil:
		m.refreshTimer = m.clock.AfterFunc(m.cfg.RefreshInterval(), m.refreshCapsules)
	case !want && m.refreshTimer != nil:
		m.refreshTimer.Stop()
		m.refreshTimer = nil
	}
}

func (m *Manager) refreshCapsules() {
	m.refreshTimer = nil
	m.windows.Each(func(_ registry.ID, w *Window) {
		if w.IsCapsule && w.capture == nil {
			m.startCapture(w, m.captureRequest(w))
		}
	})
	m.refreshCapsuleTimer()
}

// CaptureAndWait runs a manual capture from outside the engine loop and
// waits for its result.
func CaptureAndWait(ctx context.Context, manager *Manager, id registry.ID) (capture.Screenshot, error) {
	type result struct {
		shot capture.Screenshot
		err  error
	}
	done := make(chan result, 1)
	var startErr error
	err := manager.Do(ctx, func(m *Manager) {
		startErr = m.CaptureWindow(id, func(shot capture.Screenshot, err error) {
			done <- result{shot: shot, err: err}
		})
	})
	if err == nil {
		err = startErr
	}
	if err != nil {
		return capture.Screenshot{}, err
	}
	select {
	case r := <-done:
		return r.shot, r.err
	case <-ctx.Done():
		return capture.Screenshot{}, ctx.Err()
	}
}
