// Package flows contains the orchestrators for every session operation.
//
// Each flow function (RunLogin, RunRegister, RunLogout, RunFetchCurrentUser,
// RunRefresh, RunRequestPasswordReset, RunResetPassword) accepts a [Deps]
// value and reports its outcome both as a return value and, where the
// operation owns session state, as a transition on the session store.
//
// # Architecture boundaries
//
// Flows coordinate the GraphQL executor, the session store, and the response
// cache. They do NOT own any of these resources; ownership stays with the
// root Client.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import authclient (to avoid import cycles).
//   - Let a transport or domain error escape without normalising it to an
//     [OperationError] carrying a human-readable message.
package flows
