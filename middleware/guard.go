package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/MrEthical07/authclient/session"
)

// FromParam is the query parameter carrying the attempted location on a
// sign-in redirect.
const FromParam = "from"

// Requirement is a route's declared access level. RequireAuth=false marks a
// guest-only surface such as the login page.
type Requirement struct {
	RequireAuth  bool
	RequireAdmin bool
}

// Policy names the redirect destinations and the admin role.
type Policy struct {
	AdminRole        string
	SignInPath       string
	UnauthorizedPath string
	LandingPath      string
}

// DefaultPolicy returns the standard destinations.
func DefaultPolicy() Policy {
	return Policy{
		AdminRole:        "ROLE_ADMIN",
		SignInPath:       "/login",
		UnauthorizedPath: "/unauthorized",
		LandingPath:      "/dashboard",
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.AdminRole == "" {
		p.AdminRole = d.AdminRole
	}
	if p.SignInPath == "" {
		p.SignInPath = d.SignInPath
	}
	if p.UnauthorizedPath == "" {
		p.UnauthorizedPath = d.UnauthorizedPath
	}
	if p.LandingPath == "" {
		p.LandingPath = d.LandingPath
	}
	return p
}

// Outcome is the kind of a guard decision.
type Outcome uint8

const (
	Allow Outcome = iota
	Pending
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	default:
		return "allow"
	}
}

// Decision is the result of [Decide]. Location is set only for Redirect.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide evaluates req against s for a navigation to current (path and
// optional query). It is pure and safe for concurrent use.
func Decide(s session.Session, req Requirement, current string, p Policy) Decision {
	p = p.withDefaults()

	if s.Loading {
		return Decision{Outcome: Pending}
	}
	if req.RequireAuth && !s.IsAuthenticated {
		return Decision{Outcome: Redirect, Location: signInLocation(p.SignInPath, current)}
	}
	if req.RequireAdmin && !s.HasRole(p.AdminRole) {
		return Decision{Outcome: Redirect, Location: p.UnauthorizedPath}
	}
	if !req.RequireAuth && s.IsAuthenticated {
		return Decision{Outcome: Redirect, Location: p.LandingPath}
	}
	return Decision{Outcome: Allow}
}

func signInLocation(signIn, current string) string {
	if current == "" {
		return signIn
	}
	return signIn + "?" + url.Values{FromParam: {current}}.Encode()
}

// ReturnPath extracts the remembered location from a sign-in request. Only
// local absolute paths are honoured; anything else yields fallback.
func ReturnPath(r *http.Request, fallback string) string {
	from := r.URL.Query().Get(FromParam)
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return fallback
	}
	return from
}
