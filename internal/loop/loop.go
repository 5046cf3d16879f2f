// Package loop runs the engine's single UI task. Every mutation of engine
// state is a closure executed here, one at a time.
package loop

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// ErrClosed is returned when posting to a stopped loop.
var ErrClosed = errors.New("loop closed")

// Loop is a FIFO of closures drained by a single goroutine.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	closed atomic.Bool
	logger *slog.Logger
}

// New returns a loop whose queue holds up to capacity pending closures.
func New(capacity int) *Loop {
	if capacity <= 0 {
		capacity = 256
	}
	return &Loop{
		tasks:  make(chan func(), capacity),
		done:   make(chan struct{}),
		logger: slog.Default(),
	}
}

// SetLogger replaces the logger used for recovered task panics. Call it
// before Run.
func (l *Loop) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Post enqueues fn. It is safe to call from any goroutine and blocks only
// while the queue is full.
func (l *Loop) Post(fn func()) error {
	if l.closed.Load() {
		return ErrClosed
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Run drains the queue until ctx is cancelled. A panicking closure is
// logged and the loop moves on to the next one.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		if l.closed.CompareAndSwap(false, true) {
			close(l.done)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			l.runSafe(fn)
		}
	}
}

func (l *Loop) runSafe(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Next runs exactly one queued closure, waiting for one if necessary.
func (l *Loop) Next(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case fn := <-l.tasks:
		fn()
		return nil
	}
}

// RunPending runs whatever is queued right now without waiting and returns
// how many closures ran.
func (l *Loop) RunPending() int {
	n := 0
	for {
		select {
		case fn := <-l.tasks:
			fn()
			n++
		default:
			return n
		}
	}
}

// Do posts fn and waits for it to finish on the loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
}
