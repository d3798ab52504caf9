// Package jwt inspects the session credential the backend stores in the
// access_token cookie.
//
// The token is decoded without signature verification. The client has no
// signing key and uses the claims only for display and scheduling (subject,
// roles, expiry). Trust decisions stay with the backend.
//
// # What this package must NOT do
//
//   - Treat decoded claims as authenticated identity.
//   - Create or sign tokens.
//   - Send the token anywhere; the transport's cookie jar owns it.
package jwt
