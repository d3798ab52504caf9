// Package debounce provides a trailing-edge deferred invocation: a burst of
// Trigger calls runs the callback once, delay after the last call.
package debounce

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Debouncer defers fn until delay has passed without a new Trigger.
type Debouncer struct {
	delay     time.Duration
	fn        func()
	afterFunc AfterFunc

	mu       sync.Mutex
	idle     *sync.Cond
	timer    Timer
	gen      uint64
	pending  bool
	inflight int
}

// New returns a debouncer. A nil afterFunc uses time.AfterFunc.
func New(delay time.Duration, fn func(), afterFunc AfterFunc) *Debouncer {
	if afterFunc == nil {
		afterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	d := &Debouncer{delay: delay, fn: fn, afterFunc: afterFunc}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Trigger restarts the delay.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = d.afterFunc(d.delay, func() { d.fire(gen) })
}

// Flush runs fn now if a call is pending, then waits for every call already
// running to return. fn must not call Flush.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	run := d.pending
	if run {
		d.stopLocked()
		d.inflight++
	}
	d.mu.Unlock()

	if run {
		d.call()
	}

	d.mu.Lock()
	for d.inflight > 0 {
		d.idle.Wait()
	}
	d.mu.Unlock()
}

// Cancel drops a pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = false
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.inflight++
	d.mu.Unlock()

	d.call()
}

func (d *Debouncer) call() {
	defer func() {
		d.mu.Lock()
		d.inflight--
		if d.inflight == 0 {
			d.idle.Broadcast()
		}
		d.mu.Unlock()
	}()
	d.fn()
}
