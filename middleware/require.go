package middleware

import "net/http"

// RequireAuth admits authenticated sessions only.
func RequireAuth(src SessionSource, p Policy) func(http.Handler) http.Handler {
	return Guard(src, Requirement{RequireAuth: true}, p)
}

// RequireAdmin admits authenticated sessions holding the admin role.
func RequireAdmin(src SessionSource, p Policy) func(http.Handler) http.Handler {
	return Guard(src, Requirement{RequireAuth: true, RequireAdmin: true}, p)
}

// GuestOnly admits unauthenticated sessions and sends signed-in users to
// the landing page.
func GuestOnly(src SessionSource, p Policy) func(http.Handler) http.Handler {
	return Guard(src, Requirement{}, p)
}
