// Package types defines the shared data structures exchanged between the
// panel manager, the bootstrap layer, and the HTTP/WebSocket surface.
package types
