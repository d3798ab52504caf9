package middleware

import (
	"context"
	"net/http"

	"github.com/MrEthical07/authclient/session"
)

// SessionSource supplies the session snapshot for a request.
type SessionSource interface {
	Session() session.Session
}

// SessionSourceFunc adapts a function to SessionSource.
type SessionSourceFunc func() session.Session

// Session implements SessionSource.
func (f SessionSourceFunc) Session() session.Session { return f() }

type sessionContextKey struct{}

// SessionFromContext returns the snapshot the guard evaluated.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(session.Session)
	return s, ok
}

// PendingHandler renders the neutral state shown while the session loads.
var PendingHandler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Loading..."))
})

// Guard gates the wrapped handler by req. A nil source is treated as an
// unauthenticated session.
func Guard(src SessionSource, req Requirement, p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s session.Session
			if src != nil {
				s = src.Session()
			}

			d := Decide(s, req, r.URL.RequestURI(), p)
			switch d.Outcome {
			case Pending:
				PendingHandler.ServeHTTP(w, r)
			case Redirect:
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
			default:
				ctx := context.WithValue(r.Context(), sessionContextKey{}, s)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}
