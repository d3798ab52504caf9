package drafts

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/MrEthical07/authclient/internal/debounce"
)

// DefaultAutosaveDelay is the quiet period before an autosave is written.
const DefaultAutosaveDelay = time.Second

const saveTimeout = 5 * time.Second

// AutosaveConfig configures an Autosaver.
type AutosaveConfig struct {
	Owner  string
	Form   string
	Delay  time.Duration
	TTL    time.Duration
	Logger *slog.Logger

	// AfterFunc replaces the timer source in tests.
	AfterFunc debounce.AfterFunc
}

// Autosaver writes the latest values of one form after edits settle.
type Autosaver struct {
	store  *Store
	cfg    AutosaveConfig
	logger *slog.Logger
	deb    *debounce.Debouncer

	mu     sync.Mutex
	latest map[string]any
	err    error
}

// NewAutosaver binds an autosaver to one owner and form.
func NewAutosaver(store *Store, cfg AutosaveConfig) *Autosaver {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultAutosaveDelay
	}
	a := &Autosaver{store: store, cfg: cfg, logger: cfg.Logger}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.deb = debounce.New(cfg.Delay, a.save, cfg.AfterFunc)
	return a
}

// Update records values and restarts the delay. It never blocks on Redis.
func (a *Autosaver) Update(values map[string]any) {
	a.mu.Lock()
	a.latest = maps.Clone(values)
	a.mu.Unlock()
	a.deb.Trigger()
}

// Flush writes pending values immediately.
func (a *Autosaver) Flush() {
	a.deb.Flush()
}

// Discard drops pending values and deletes the stored draft, typically after
// a successful submit.
func (a *Autosaver) Discard(ctx context.Context) error {
	a.deb.Cancel()
	a.mu.Lock()
	a.latest = nil
	a.mu.Unlock()
	return a.store.Delete(ctx, a.cfg.Owner, a.cfg.Form)
}

// Err returns the error of the most recent save, if any.
func (a *Autosaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Autosaver) save() {
	a.mu.Lock()
	values := a.latest
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	err := a.store.Save(ctx, a.cfg.Owner, a.cfg.Form, values, a.cfg.TTL)
	if err != nil {
		a.logger.Warn("draft autosave failed", "form", a.cfg.Form, "err", err)
	}

	a.mu.Lock()
	a.err = err
	a.mu.Unlock()
}
