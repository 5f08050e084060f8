// Package internaldefs exposes stable metric name definitions shared by exporter
// implementations.
//
// Counter definitions live here so that both the Prometheus and OTel exporters
// publish identical metric names. Changes to definitions in this package affect all
// exporters simultaneously.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
