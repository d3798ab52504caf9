// Package middleware exposes the access guard and error boundaries for an
// application shell served over net/http.
//
// # Guards
//
//   - [Decide] is the pure navigation check: pending, redirect, or allow.
//   - [Guard] adapts Decide to net/http for a declared [Requirement].
//   - [RequireAuth], [RequireAdmin], and [GuestOnly] are the common
//     requirements.
//
// Decisions are evaluated in a fixed order: loading, authentication, admin
// role, guest-only. The attempted location is preserved on the sign-in
// redirect as the "from" query parameter.
//
// # Boundaries
//
// [Boundary] recovers panics from the wrapped handler, reports them at the
// boundary's [report.Level], and renders the fixed fallback for that level.
//
// # Architecture boundaries
//
// This package reads session snapshots. It does NOT call the backend or
// change session state.
//
// # What this package must NOT do
//
//   - Mutate the session or trigger a session operation.
//   - Import authclient (the client is consumed through [SessionSource]).
//   - Redirect while the session is loading.
package middleware
