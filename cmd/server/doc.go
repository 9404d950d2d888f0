// Package main is the entry point for the workbench backend server.
//
// The server bootstraps surfaces of interdependent UI panels for a frontend
// client, isolating per-panel failures behind circuit breakers and rolling
// back partial bootstraps with compensating steps.
//
// The server provides:
//   - REST API for surface bootstrap and panel listing
//   - Circuit breaker diagnostics and reset endpoints
//   - WebSocket streaming of bootstrap lifecycle events
//   - Prometheus metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -manifests ./manifests
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
