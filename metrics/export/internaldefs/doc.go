// Package internaldefs holds the metric names shared by the Prometheus and
// OTel exporters and converts the client's latency buckets into cumulative
// second-based buckets, so both exporters expose identical series.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
