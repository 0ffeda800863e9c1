// Package metrics defines the Prometheus collectors exported by the server on
// /metrics. All collectors live on a dedicated registry so tests can build
// independent instances.
package metrics
