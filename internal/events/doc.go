// Package events delivers bootstrap lifecycle events to subscribers.
//
// The orchestrator publishes fire-and-forget; implementations here fan the
// events out to logs and connected WebSocket clients. The async publisher
// decouples the orchestrator from slow subscribers while preserving event
// order.
package events
