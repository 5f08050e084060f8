// Package otel provides OpenTelemetry metric exporter bindings for the session
// controller's counters.
//
// [NewOTelExporter] registers an Int64ObservableCounter instrument per controller
// metric. A single callback reads [adminauth.Controller.MetricsSnapshot] on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate controller state.
package otel
