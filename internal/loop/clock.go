package loop

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop cancels the callback. It reports whether the callback was still
	// pending.
	Stop() bool
}

// Clock schedules callbacks on the UI task.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealClock fires timers through a Loop so callbacks never run concurrently
// with other engine work.
type RealClock struct {
	loop *Loop
}

// NewRealClock returns a wall clock bound to l.
func NewRealClock(l *Loop) *RealClock {
	return &RealClock{loop: l}
}

func (c *RealClock) Now() time.Time { return time.Now() }

type realTimer struct {
	t       *time.Timer
	mu      sync.Mutex
	stopped bool
}

// AfterFunc runs fn on the loop after d. A timer stopped after it fired but
// before the loop picked it up does not run.
func (c *RealClock) AfterFunc(d time.Duration, fn func()) Timer {
	rt := &realTimer{}
	rt.t = time.AfterFunc(d, func() {
		_ = c.loop.Post(func() {
			rt.mu.Lock()
			stopped := rt.stopped
			rt.stopped = true
			rt.mu.Unlock()
			if !stopped {
				fn()
			}
		})
	})
	return rt
}

func (t *realTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.t.Stop()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// FakeClock is a manually advanced clock. Callbacks run synchronously inside
// Advance on the caller's goroutine, which plays the UI task in tests.
type FakeClock struct {
	now    time.Time
	seq    int
	timers []*fakeTimer
}

// NewFakeClock returns a clock starting at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

type fakeTimer struct {
	clock *FakeClock
	when  time.Time
	seq   int
	fn    func()
	done  bool
}

func (c *FakeClock) Now() time.Time { return c.now }

func (c *FakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.seq++
	t := &fakeTimer{clock: c, when: c.now.Add(d), seq: c.seq, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Pending returns how many timers have not fired or been stopped.
func (c *FakeClock) Pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// Advance moves time forward by d, firing due timers in order. Timers
// scheduled by callbacks fire too if they fall inside the window.
func (c *FakeClock) Advance(d time.Duration) {
	target := c.now.Add(d)
	for {
		t := c.nextDue(target)
		if t == nil {
			break
		}
		c.now = t.when
		t.done = true
		t.fn()
	}
	c.now = target
	c.compact()
}

func (c *FakeClock) nextDue(target time.Time) *fakeTimer {
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.done && !t.when.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].when.Equal(due[j].when) {
			return due[i].seq < due[j].seq
		}
		return due[i].when.Before(due[j].when)
	})
	return due[0]
}

func (c *FakeClock) compact() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	c.timers = live
}
