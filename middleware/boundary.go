package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/MrEthical07/authclient/report"
)

// repeatedErrorThreshold is the page-level error count above which the
// fallback stops offering a retry.
const repeatedErrorThreshold = 2

// Fallback texts per boundary level.
const (
	AppFallback          = "Something went wrong. Reload the page to continue."
	FeatureFallback      = "Feature Unavailable. This section encountered an error and cannot be displayed."
	PageFallback         = "Something went wrong. An error occurred while loading this page. You can try again or return home."
	PageRepeatedFallback = "Something went wrong. This page is experiencing repeated errors. Please try again later or contact support."
)

// BoundaryOption customises a Boundary.
type BoundaryOption func(*boundary)

// WithBoundaryLogger sets the logger used for recovered panics.
func WithBoundaryLogger(l *slog.Logger) BoundaryOption {
	return func(b *boundary) {
		if l != nil {
			b.logger = l
		}
	}
}

type boundary struct {
	level    report.Level
	feature  string
	reporter report.Reporter
	logger   *slog.Logger
	errors   atomic.Int64
}

// Boundary recovers panics from the wrapped handler, reports them at level,
// and renders that level's fallback. http.ErrAbortHandler is re-raised.
func Boundary(level report.Level, feature string, reporter report.Reporter, opts ...BoundaryOption) func(http.Handler) http.Handler {
	b := &boundary{level: level, feature: feature, reporter: reporter, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				b.handle(w, r, rec)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func (b *boundary) handle(w http.ResponseWriter, r *http.Request, rec any) {
	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("%v", rec)
	}
	count := b.errors.Add(1)

	b.logger.Error("uncaught error", "level", string(b.level), "feature", b.feature, "path", r.URL.Path, "err", err)
	if b.reporter != nil {
		func() {
			defer func() { _ = recover() }()
			b.reporter.CaptureError(err, report.Context{
				Level:   b.level,
				Feature: b.feature,
				Metadata: map[string]any{
					"method":     r.Method,
					"path":       r.URL.Path,
					"errorCount": count,
				},
			})
		}()
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(fallbackText(b.level, count)))
}

func fallbackText(level report.Level, count int64) string {
	switch level {
	case report.LevelApp:
		return AppFallback
	case report.LevelFeature:
		return FeatureFallback
	default:
		if count > repeatedErrorThreshold {
			return PageRepeatedFallback
		}
		return PageFallback
	}
}
