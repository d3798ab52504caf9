// Package report is the error-reporting collaborator: a fire-and-forget
// [Tracker] that enriches captured errors, queues them, and flushes batches
// to a [Sink] in the background.
//
// # Delivery
//
// CaptureError never blocks and never panics. Reports enter a bounded
// channel; when it is full they are dropped and counted. The background loop
// keeps at most MaxQueueSize reports (newest win), flushes every
// FlushInterval, flushes immediately for [LevelApp] reports, and puts a
// failed batch back in front of the queue.
//
// # What this package must NOT do
//
//   - Block or fail the caller of CaptureError.
//   - Import authclient, session, or graphql.
package report
