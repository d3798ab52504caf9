package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualClock struct {
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) Timer {
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

func TestBurstRunsOnce(t *testing.T) {
	clock := &manualClock{}
	calls := 0
	d := New(time.Second, func() { calls++ }, clock.AfterFunc)

	d.Trigger()
	d.Trigger()
	d.Trigger()

	for i, tm := range clock.timers[:2] {
		if !tm.stopped {
			t.Fatalf("timer %d should have been stopped", i)
		}
	}
	// stale callbacks are ignored even if they run
	clock.timers[0].f()
	clock.timers[2].f()

	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
	if d.Pending() {
		t.Fatal("expected nothing pending")
	}
}

func TestFlushAndCancel(t *testing.T) {
	clock := &manualClock{}
	calls := 0
	d := New(time.Second, func() { calls++ }, clock.AfterFunc)

	d.Flush()
	if calls != 0 {
		t.Fatal("flush without trigger must not call")
	}

	d.Trigger()
	d.Flush()
	clock.timers[0].f()
	if calls != 1 {
		t.Fatalf("expected flushed call only, got %d", calls)
	}

	d.Trigger()
	d.Cancel()
	clock.timers[1].f()
	if calls != 1 || d.Pending() {
		t.Fatalf("expected cancelled call dropped, got %d", calls)
	}
}

func TestFlushWaitsForRunningCall(t *testing.T) {
	clock := &manualClock{}
	entered := make(chan struct{})
	release := make(chan struct{})
	var saved atomic.Bool
	d := New(time.Second, func() {
		close(entered)
		<-release
		saved.Store(true)
	}, clock.AfterFunc)

	d.Trigger()
	go clock.timers[0].f()
	<-entered

	flushed := make(chan struct{})
	go func() {
		d.Flush()
		close(flushed)
	}()

	select {
	case <-flushed:
		t.Fatal("Flush returned while the timer call was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-flushed:
	case <-time.After(time.Second):
		t.Fatal("Flush did not return after the call finished")
	}
	if !saved.Load() {
		t.Fatal("expected the running call to complete before Flush returned")
	}
}

func TestRealTimer(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	d := New(5*time.Millisecond, func() {
		calls.Add(1)
		close(done)
	}, nil)
	d.Trigger()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never ran")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one call, got %d", calls.Load())
	}
}
