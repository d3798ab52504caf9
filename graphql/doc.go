// Package graphql implements the request pipeline every backend call goes
// through.
//
// # Pipeline
//
// A pipeline is a transport [HandlerFunc] wrapped by an ordered list of
// [Link] stages (see [Compose]). The canonical order, outermost first, is:
//
//  1. error interception (package intercept), which must observe the final
//     outcome whichever inner stage produced it;
//  2. the auth-context stage ([ContextLink]), which attaches request
//     metadata;
//  3. the transport ([HTTPTransport]), which performs the exchange.
//
// The transport relies on an ambient credential: the backend sets an
// `access_token` cookie and the http.Client's cookie jar replays it on every
// request. No bearer token is built here. A deployment without cookies must
// extend the auth-context stage to attach an explicit credential instead.
//
// # Cache
//
// [Client] owns a response [Cache] keyed by operation and variables. The
// cache holds the previous user's data and must be cleared on logout and on
// forced deauthentication.
//
// # What this package must NOT do
//
//   - Import session, intercept, or authclient.
//   - Decide whether a failure is an authentication failure.
//   - Retry requests.
package graphql
