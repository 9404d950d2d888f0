// Package server provides HTTP server setup and initialization.
//
// This package wires all components together:
//   - HTTP routing with Gin framework
//   - Middleware stack (CORS, rate limiting, metrics, recovery)
//   - Panel manager and breaker-guarded factory
//   - Bootstrap saga builder and surface manifests
//   - WebSocket event hub and async event delivery
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg, logger, nil)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
