// Package saga runs multi-step surface bootstraps with compensation.
//
// A bootstrap is an ordered list of fallible steps, each paired with an undo
// action. Steps execute strictly sequentially; when one fails, the
// orchestrator compensates every already-completed step in reverse order, so
// a partially built surface is torn down coherently instead of being left
// half-applied. Lifecycle events are handed to an injected publisher and a
// step-boundary progress callback.
//
// An orchestrator instance is single-use: a new bootstrap attempt requires a
// new instance.
package saga
