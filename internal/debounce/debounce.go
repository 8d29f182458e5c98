// Package debounce coalesces bursts of triggers into a single deferred call.
package debounce

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The real clock uses time.AfterFunc; tests use
// FakeClock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall-clock implementation of Clock.
func RealClock() Clock { return realClock{} }

// Debouncer holds at most one pending call. Each Trigger replaces the
// pending call and restarts the quiet period, so only the latest function
// of a burst runs.
//
// The scheduled function must not call Cancel or Flush on the same
// Debouncer.
type Debouncer struct {
	delay time.Duration
	clock Clock

	mu    sync.Mutex
	gen   uint64
	timer Timer
	fn    func()

	// running is held while a scheduled function executes so Cancel and
	// Flush can wait for it.
	running sync.Mutex
}

// New creates a Debouncer with the given quiet period. A nil clock means the
// real clock.
func New(delay time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = realClock{}
	}
	return &Debouncer{delay: delay, clock: clock}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger schedules fn to run after the quiet period, replacing any pending
// function.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.fn = fn
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.running.Lock()
	defer d.running.Unlock()

	d.mu.Lock()
	if gen != d.gen || d.fn == nil {
		d.mu.Unlock()
		return
	}
	fn := d.fn
	d.fn = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// take detaches the pending function, if any.
func (d *Debouncer) take() func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	fn := d.fn
	d.fn = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return fn
}

// Cancel drops the pending function without running it and waits for a
// function already in flight. It reports whether something was pending.
func (d *Debouncer) Cancel() bool {
	fn := d.take()
	// Wait for an in-flight run.
	d.running.Lock()
	d.running.Unlock()
	return fn != nil
}

// Flush runs the pending function immediately, after any in-flight run
// finishes. It reports whether something was pending.
func (d *Debouncer) Flush() bool {
	fn := d.take()
	d.running.Lock()
	defer d.running.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a function is waiting for its quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}
