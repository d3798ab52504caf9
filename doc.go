// Package authclient is the client side of a JWT-cookie authenticated
// GraphQL backend: session state, the request pipeline, auth-failure
// interception, proactive refresh, and route access decisions.
//
// A [Client] is assembled once through [Builder.Build] and is safe for
// concurrent use afterwards.
//
// # Architecture boundaries
//
// authclient is the public surface. It exposes [Client], [Builder], [Config],
// and value types (MetricsSnapshot, OperationError). The session model lives
// in session, the pipeline in graphql and intercept, and operation
// orchestration under internal/flows.
//
// Every request passes through three stages, outermost first: the error
// interceptor, the auth-context stage, and the HTTP transport. The transport
// owns a cookie jar; the backend's access_token and refresh_token cookies
// are the only credential and are never read or written by this package.
//
// # What this package must NOT do
//
//   - Persist credentials or the session.
//   - Retry a failed operation on its own (mount-time restore runs once).
//   - Import a sub-package that re-imports authclient (no import cycles).
package authclient
