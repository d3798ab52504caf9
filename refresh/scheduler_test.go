package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) pending() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fireNext runs the single pending timer synchronously.
func (c *fakeClock) fireNext(t *testing.T) {
	t.Helper()
	p := c.pending()
	if len(p) != 1 {
		t.Fatalf("expected exactly one pending timer, got %d", len(p))
	}
	p[0].fired = true
	p[0].f()
}

func newScheduler(t *testing.T, fn Func) (*Scheduler, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	s, err := New(fn,
		WithAfterFunc(clock.AfterFunc),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, clock
}

func TestActivateSchedulesWithDefaultInterval(t *testing.T) {
	s, clock := newScheduler(t, func(context.Context) error { return nil })
	if s.State() != StateIdle {
		t.Fatalf("expected idle, got %s", s.State())
	}

	s.Activate(context.Background())
	p := clock.pending()
	if len(p) != 1 || p[0].d != 10*time.Minute {
		t.Fatalf("expected one 10m timer, got %+v", p)
	}
	if s.State() != StateScheduled {
		t.Fatalf("expected scheduled, got %s", s.State())
	}
}

func TestDoubleActivateLeavesOnePending(t *testing.T) {
	s, clock := newScheduler(t, func(context.Context) error { return nil })
	s.Activate(context.Background())
	first := clock.pending()[0]
	s.Activate(context.Background())

	if !first.stopped {
		t.Fatal("expected first timer cancelled")
	}
	if got := len(clock.pending()); got != 1 {
		t.Fatalf("expected one pending firing, got %d", got)
	}

	// a stale callback that slipped past Stop must not fire a refresh
	calls := 0
	s.refresh = func(context.Context) error { calls++; return nil }
	first.f()
	if calls != 0 {
		t.Fatal("stale timer triggered a refresh")
	}
}

func TestSuccessReArms(t *testing.T) {
	calls := 0
	s, clock := newScheduler(t, func(context.Context) error { calls++; return nil })
	s.Activate(context.Background())

	clock.fireNext(t)
	clock.fireNext(t)

	if calls != 2 {
		t.Fatalf("expected 2 refreshes, got %d", calls)
	}
	if p := clock.pending(); len(p) != 1 || p[0].d != DefaultInterval {
		t.Fatalf("expected re-armed timer, got %+v", p)
	}
	if s.State() != StateScheduled {
		t.Fatalf("expected scheduled, got %s", s.State())
	}
}

func TestFailureStops(t *testing.T) {
	var observed []error
	clock := &fakeClock{}
	s, _ := New(func(context.Context) error { return errors.New("refresh rejected") },
		WithAfterFunc(clock.AfterFunc),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithObserver(func(err error) { observed = append(observed, err) }),
	)
	s.Activate(context.Background())
	clock.fireNext(t)

	if s.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", s.State())
	}
	if len(clock.pending()) != 0 {
		t.Fatal("failed refresh must not re-arm")
	}
	if len(observed) != 1 || observed[0] == nil {
		t.Fatalf("expected failure observed, got %v", observed)
	}
}

func TestPanicIsTreatedAsFailure(t *testing.T) {
	s, clock := newScheduler(t, func(context.Context) error { panic("boom") })
	s.Activate(context.Background())
	clock.fireNext(t)
	if s.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", s.State())
	}
}

func TestDeactivateCancelsPending(t *testing.T) {
	s, clock := newScheduler(t, func(context.Context) error { return nil })
	s.Activate(context.Background())
	s.Deactivate()

	if len(clock.pending()) != 0 {
		t.Fatal("expected no pending timers after deactivate")
	}
	if s.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", s.State())
	}
}

func TestDeactivateDuringFiringDoesNotReArm(t *testing.T) {
	var s *Scheduler
	s, clock := newScheduler(t, func(context.Context) error {
		s.Deactivate()
		return nil
	})
	s.Activate(context.Background())
	clock.fireNext(t)

	if len(clock.pending()) != 0 || s.State() != StateStopped {
		t.Fatalf("expected stopped with no timers, got %s", s.State())
	}
}

func TestSupersededFiringSkipsObserver(t *testing.T) {
	clock := &fakeClock{}
	var outcomes []error
	var s *Scheduler
	s, err := New(func(context.Context) error {
		s.Activate(context.Background())
		return errors.New("stale")
	},
		WithAfterFunc(clock.AfterFunc),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithObserver(func(err error) { outcomes = append(outcomes, err) }),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s.Activate(context.Background())
	clock.fireNext(t)

	if len(outcomes) != 0 {
		t.Fatalf("expected no observed outcome for superseded firing, got %v", outcomes)
	}
	if s.State() != StateScheduled || len(clock.pending()) != 1 {
		t.Fatalf("expected the newer activation armed, got %s", s.State())
	}
}

func TestObserverSeesCurrentFiring(t *testing.T) {
	clock := &fakeClock{}
	var outcomes []error
	s, err := New(func(context.Context) error { return nil },
		WithAfterFunc(clock.AfterFunc),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithObserver(func(err error) { outcomes = append(outcomes, err) }),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s.Activate(context.Background())
	clock.fireNext(t)
	if len(outcomes) != 1 || outcomes[0] != nil {
		t.Fatalf("expected one successful outcome, got %v", outcomes)
	}
}

func TestReactivateAfterStop(t *testing.T) {
	s, clock := newScheduler(t, func(context.Context) error { return errors.New("x") })
	s.Activate(context.Background())
	clock.fireNext(t)
	s.Activate(context.Background())
	if len(clock.pending()) != 1 || s.State() != StateScheduled {
		t.Fatal("expected re-activation to arm again")
	}
}

func TestNewRejectsNilFunc(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilRefreshFunc) {
		t.Fatalf("expected ErrNilRefreshFunc, got %v", err)
	}
}

func TestRealTimerFires(t *testing.T) {
	done := make(chan struct{}, 1)
	s, err := New(func(context.Context) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return errors.New("stop")
	}, WithInterval(5*time.Millisecond), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Activate(context.Background())
	defer s.Deactivate()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}
