// Package metrics defines the Prometheus collectors exported by the relay
// server: pairing and relay counters, session lifetimes, store gauges and
// HTTP request metrics.
package metrics
