// Package panel manages panel creation and the live panel registry.
//
// Panel construction goes through ResilientFactory, which guards the injected
// Factory with one circuit breaker per panel kind. A kind that keeps failing
// stops being retried and is served as a fallback placeholder until its
// breaker recovers, so a single broken panel never blocks the surface.
package panel
