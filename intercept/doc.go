// Package intercept implements the outermost stage of the request pipeline:
// it classifies every completed exchange and reacts to auth failures.
//
// # Classification
//
// A response is an auth failure when any GraphQL error carries
// extensions.code "UNAUTHENTICATED", or a message containing
// "not authenticated" or "token expired" (case-sensitive), or when the
// transport failed with HTTP status 401. Everything else is a non-auth
// failure.
//
// # Reaction
//
// Every error is reported. An auth failure additionally triggers exactly one
// forced deauthentication per failing response. The outcome returned to the
// caller is never altered.
//
// # What this package must NOT do
//
//   - Issue a network call (no logout request, no retry).
//   - Panic or return an error of its own.
//   - Import authclient (no upward imports).
package intercept
