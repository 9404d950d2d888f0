// Package monitoring provides Prometheus metrics for the backend.
//
// Metrics cover the HTTP surface, panel creation outcomes, circuit breaker
// state, and bootstrap saga runs. A lightweight JSON snapshot backs the
// /stats endpoint for clients that do not scrape Prometheus.
package monitoring
