package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const sendTimeout = 10 * time.Second

// Config controls tracker buffering and flushing.
type Config struct {
	Enabled       bool
	BufferSize    int
	MaxQueueSize  int
	FlushInterval time.Duration
	BuildVersion  string
}

// DefaultConfig mirrors the browser tracker: 50 queued reports, 30s flush.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		BufferSize:    256,
		MaxQueueSize:  50,
		FlushInterval: 30 * time.Second,
		BuildVersion:  "development",
	}
}

// Option customises a Tracker.
type Option func(*Tracker)

// WithUserID supplies the id of the current user at capture time.
func WithUserID(fn func() string) Option {
	return func(t *Tracker) { t.userID = fn }
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// Tracker asynchronously forwards captured errors to a Sink. A nil *Tracker
// is valid and discards everything.
type Tracker struct {
	cfg       Config
	sink      Sink
	userID    func() string
	sessionID string
	logger    *slog.Logger
	now       func() time.Time

	// sendMu orders channel sends against Close: sends hold it shared,
	// Close marks the tracker closed under the exclusive lock.
	sendMu    sync.RWMutex
	ch        chan Report
	flushReq  chan chan error
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewTracker starts a tracker. It returns nil when cfg.Enabled is false.
func NewTracker(cfg Config, sink Sink, opts ...Option) *Tracker {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 30 * time.Second
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	t := &Tracker{
		cfg:       cfg,
		sink:      sink,
		sessionID: "session-" + uuid.NewString(),
		logger:    slog.Default(),
		now:       time.Now,
		ch:        make(chan Report, cfg.BufferSize),
		flushReq:  make(chan chan error),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.wg.Add(1)
	go t.run()

	return t
}

// SessionID returns the per-process id attached to every report.
func (t *Tracker) SessionID() string {
	if t == nil {
		return ""
	}
	return t.sessionID
}

// CaptureError enqueues err. It never blocks: when the buffer is full or
// the tracker is closed the report is dropped and counted.
func (t *Tracker) CaptureError(err error, c Context) {
	if t == nil || err == nil {
		return
	}
	if t.closed.Load() {
		t.dropped.Add(1)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("report: capture failed", "panic", fmt.Sprint(r))
		}
	}()

	r := Report{
		Message:      err.Error(),
		Context:      c,
		Timestamp:    t.now().UTC(),
		SessionID:    t.sessionID,
		BuildVersion: t.cfg.BuildVersion,
	}
	if t.userID != nil {
		r.UserID = t.userID()
	}

	t.sendMu.RLock()
	defer t.sendMu.RUnlock()
	if t.closed.Load() {
		t.dropped.Add(1)
		return
	}
	select {
	case t.ch <- r:
	default:
		t.dropped.Add(1)
	}
}

// Flush delivers everything queued so far and returns the sink's error.
func (t *Tracker) Flush(ctx context.Context) error {
	if t == nil || t.closed.Load() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reply := make(chan error, 1)
	select {
	case t.flushReq <- reply:
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return nil
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the background loop after a final flush.
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	t.closeOnce.Do(func() {
		t.sendMu.Lock()
		t.closed.Store(true)
		t.sendMu.Unlock()
		close(t.done)
		t.wg.Wait()
	})
}

// Dropped returns the number of reports discarded because the buffer was
// full or the tracker was closed.
func (t *Tracker) Dropped() uint64 {
	if t == nil {
		return 0
	}
	return t.dropped.Load()
}

func (t *Tracker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.cfg.FlushInterval)
	defer ticker.Stop()

	var queue []Report
	for {
		select {
		case r := <-t.ch:
			queue = t.enqueue(queue, r)
			if r.Context.Level == LevelApp {
				queue, _ = t.flush(queue)
			}
		case reply := <-t.flushReq:
			// drain what callers captured before asking for the flush
			queue = t.drain(queue)
			var err error
			queue, err = t.flush(queue)
			reply <- err
		case <-ticker.C:
			queue, _ = t.flush(queue)
		case <-t.done:
			queue = t.drain(queue)
			_, _ = t.flush(queue)
			return
		}
	}
}

func (t *Tracker) drain(queue []Report) []Report {
	for {
		select {
		case r := <-t.ch:
			queue = t.enqueue(queue, r)
		default:
			return queue
		}
	}
}

func (t *Tracker) enqueue(queue []Report, r Report) []Report {
	queue = append(queue, r)
	return t.trim(queue)
}

func (t *Tracker) trim(queue []Report) []Report {
	if over := len(queue) - t.cfg.MaxQueueSize; over > 0 {
		queue = append([]Report(nil), queue[over:]...)
	}
	return queue
}

func (t *Tracker) flush(queue []Report) ([]Report, error) {
	if len(queue) == 0 {
		return queue, nil
	}

	batch := queue
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := t.send(ctx, batch); err != nil {
		t.logger.Warn("report: delivery failed, requeueing", "count", len(batch), "err", err)
		return t.trim(batch), err
	}
	return nil, nil
}

func (t *Tracker) send(ctx context.Context, batch []Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("report sink panic: %v", r)
		}
	}()
	return t.sink.Send(ctx, batch)
}
