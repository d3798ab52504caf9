package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/authclient/session"
)

func authed(roles ...string) session.Session {
	u := &session.User{ID: "1", Username: "alice"}
	for _, r := range roles {
		u.Roles = append(u.Roles, session.Role{Name: r})
	}
	return session.Session{User: u, IsAuthenticated: true}
}

func TestDecide(t *testing.T) {
	p := DefaultPolicy()
	cases := []struct {
		name string
		s    session.Session
		req  Requirement
		want Decision
	}{
		{"loading wins", session.Session{Loading: true}, Requirement{RequireAuth: true, RequireAdmin: true}, Decision{Outcome: Pending}},
		{"anonymous on protected", session.Session{}, Requirement{RequireAuth: true}, Decision{Outcome: Redirect, Location: "/login?from=%2Fprofile"}},
		{"user on admin", authed("ROLE_USER"), Requirement{RequireAuth: true, RequireAdmin: true}, Decision{Outcome: Redirect, Location: "/unauthorized"}},
		{"admin on admin", authed("ROLE_ADMIN"), Requirement{RequireAuth: true, RequireAdmin: true}, Decision{Outcome: Allow}},
		{"authed on guest", authed(), Requirement{}, Decision{Outcome: Redirect, Location: "/dashboard"}},
		{"anonymous on guest", session.Session{}, Requirement{}, Decision{Outcome: Allow}},
		{"authed on protected", authed(), Requirement{RequireAuth: true}, Decision{Outcome: Allow}},
	}
	for _, tc := range cases {
		if got := Decide(tc.s, tc.req, "/profile", p); got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestDecideAdminRoleFromPolicy(t *testing.T) {
	p := Policy{AdminRole: "SUPERUSER"}
	d := Decide(authed("ROLE_ADMIN"), Requirement{RequireAuth: true, RequireAdmin: true}, "/admin", p)
	if d.Outcome != Redirect || d.Location != "/unauthorized" {
		t.Fatalf("expected custom role required, got %+v", d)
	}
}

func TestDecideNilUserIsNotAdmin(t *testing.T) {
	s := session.Session{IsAuthenticated: false}
	d := Decide(s, Requirement{RequireAdmin: true}, "/admin", DefaultPolicy())
	if d.Location != "/unauthorized" {
		t.Fatalf("expected unauthorized, got %+v", d)
	}
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGuardHTTP(t *testing.T) {
	current := session.Session{}
	src := SessionSourceFunc(func() session.Session { return current })

	var seen session.Session
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireAuth(src, DefaultPolicy())(ok)

	rec := serve(h, "/profile?tab=security")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?from=%2Fprofile%3Ftab%3Dsecurity" {
		t.Fatalf("unexpected location %q", loc)
	}

	current = session.Session{Loading: true}
	if rec := serve(h, "/profile"); rec.Code != http.StatusOK || rec.Body.String() != "Loading..." {
		t.Fatalf("expected pending page, got %d %q", rec.Code, rec.Body.String())
	}

	current = authed()
	if rec := serve(h, "/profile"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected allow, got %d", rec.Code)
	}
	if seen.User == nil || seen.User.Username != "alice" {
		t.Fatalf("expected session in context, got %+v", seen)
	}

	if rec := serve(GuestOnly(src, DefaultPolicy())(ok), "/login"); rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected landing redirect, got %q", rec.Header().Get("Location"))
	}
	if rec := serve(RequireAdmin(src, DefaultPolicy())(ok), "/admin"); rec.Header().Get("Location") != "/unauthorized" {
		t.Fatalf("expected unauthorized redirect, got %q", rec.Header().Get("Location"))
	}
}

func TestGuardNilSource(t *testing.T) {
	h := RequireAuth(nil, DefaultPolicy())(http.NotFoundHandler())
	if rec := serve(h, "/x"); rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
}

func TestReturnPath(t *testing.T) {
	cases := map[string]string{
		"/login?from=%2Fprofile":             "/profile",
		"/login?from=//evil.com":             "/dashboard",
		"/login?from=https%3A%2F%2Fevil.com": "/dashboard",
		"/login":                             "/dashboard",
	}
	for target, want := range cases {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		if got := ReturnPath(r, "/dashboard"); got != want {
			t.Fatalf("%s: expected %q, got %q", target, want, got)
		}
	}
}
