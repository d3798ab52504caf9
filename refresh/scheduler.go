package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the fixed delay between refreshes.
const DefaultInterval = 10 * time.Minute

// ErrNilRefreshFunc is returned by New when no refresh function is given.
var ErrNilRefreshFunc = errors.New("refresh: nil refresh function")

// State is the scheduler's lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateScheduled
	StateFiring
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateFiring:
		return "firing"
	case StateStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Func performs one refresh. A nil error means the backend reported success.
type Func func(ctx context.Context) error

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc is the default.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithAfterFunc replaces the timer source, typically with a fake in tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

// WithLogger sets the logger used for refresh failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers fn to be called with the outcome of every firing
// that was not superseded by Activate or Deactivate while in flight.
func WithObserver(fn func(error)) Option {
	return func(s *Scheduler) { s.observer = fn }
}

// Scheduler owns at most one pending refresh timer.
type Scheduler struct {
	refresh   Func
	interval  time.Duration
	afterFunc AfterFunc
	logger    *slog.Logger
	observer  func(error)

	mu    sync.Mutex
	state State
	gen   uint64
	timer Timer
	ctx   context.Context
}

// New returns an idle scheduler.
func New(refresh Func, opts ...Option) (*Scheduler, error) {
	if refresh == nil {
		return nil, ErrNilRefreshFunc
	}
	s := &Scheduler{
		refresh:   refresh,
		interval:  DefaultInterval,
		afterFunc: stdAfterFunc,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Interval returns the delay between firings.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Activate arms the timer, cancelling any timer armed earlier. ctx is passed
// to every refresh call until the next Activate or Deactivate.
func (s *Scheduler) Activate(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	s.ctx = ctx
	s.armLocked(s.gen)
}

// Deactivate cancels the pending firing. A refresh already in flight is
// allowed to finish but will not re-arm.
func (s *Scheduler) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	s.state = StateStopped
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) armLocked(gen uint64) {
	s.state = StateScheduled
	s.timer = s.afterFunc(s.interval, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != StateScheduled {
		s.mu.Unlock()
		return
	}
	s.state = StateFiring
	s.timer = nil
	ctx := s.ctx
	s.mu.Unlock()

	err := s.call(ctx)

	s.mu.Lock()
	if gen != s.gen {
		// superseded by Activate or Deactivate while in flight
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.logger.Warn("token refresh failed", "err", err)
		s.state = StateStopped
	} else {
		s.armLocked(gen)
	}
	s.mu.Unlock()

	if s.observer != nil {
		s.observer(err)
	}
}

func (s *Scheduler) call(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panic: %v", r)
		}
	}()
	return s.refresh(ctx)
}
