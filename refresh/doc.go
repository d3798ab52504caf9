// Package refresh implements the proactive session refresh timer.
//
// # State machine
//
//	Idle -> Scheduled -> Firing -> (Scheduled | Stopped)
//
// Activate arms a single timer with a fixed interval. When it fires the
// refresh function runs; success re-arms with the same interval, failure
// logs and stops. Deactivate cancels any pending firing. At most one firing
// is outstanding at any time: a second Activate cancels the first timer.
//
// # Architecture boundaries
//
// The scheduler does not deauthenticate on failure. A failed refresh call is
// observed by the request pipeline's error interceptor like any other
// exchange, and that is where the session is reset.
//
// # What this package must NOT do
//
//   - Import authclient, session, or intercept.
//   - Retry a failed refresh before the next activation.
//   - Leave a timer running after Deactivate.
package refresh
