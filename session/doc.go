// Package session holds the client-side authentication state: the current
// [User], whether the caller is authenticated, whether an identity operation
// is in flight, and the last failure message.
//
// # State container
//
// [Store] is the single piece of shared mutable state. It changes only
// through the closed set of [Transition] values (Pending, Fulfilled,
// Rejected, LoggedOut, Deauthenticated, ClearError); there are no setters.
// Readers receive deep-copied [Session] snapshots.
//
// # Architecture boundaries
//
// This package owns the model and its transitions. It does NOT talk to the
// backend, decide when a session is invalid, or persist anything.
//
// # What this package must NOT do
//
//   - Import authclient, graphql, or intercept (no upward imports).
//   - Persist credentials or user data.
//   - Perform I/O inside Apply or listener dispatch.
package session
