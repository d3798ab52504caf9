// Package otel binds client counters and the request latency histogram to
// OpenTelemetry instruments.
//
// [NewOTelExporter] registers an Int64ObservableCounter per counter. The
// latency histogram is published as three gauges: _bucket observed once per
// upper bound with an "le" attribute, _count, and _sum in seconds. A single
// callback reads [authclient.Client.MetricsSnapshot] on each collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate client state.
package otel
