// Package prometheus renders the session controller's counters in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts an [adminauth.Controller] and exposes an
// [http.Handler] that renders every controller counter. Counter names are prefixed
// nhadmin_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate controller state.
package prometheus
