/*
Package resilience provides circuit breaker implementation for graceful degradation.

# Overview

This package implements the circuit breaker pattern to stop retrying panel
factories that fail repeatedly, so one broken panel cannot stall the rest of
a surface bootstrap.

# States

  - Closed: Normal operation, requests pass through
  - Open: Component unavailable, requests are rejected immediately
  - Half-Open: Testing recovery, a probe is allowed through

# Pattern

	Closed --[failures >= FailureThreshold]-> Open
	Open --[RecoveryTimeout elapsed, checked in CanExecute]-> Half-Open
	Half-Open --[successes >= SuccessThreshold]-> Closed
	Half-Open --[single failure]-> Open

Recovery is evaluated lazily on the calling goroutine; no background timer
owns the Open to Half-Open transition.

# Usage

	breaker := resilience.New("chart-panel", resilience.Config{
		FailureThreshold: 3,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 2,
		OnStateChange: func(name string, from, to resilience.State) {
			log.Printf("breaker %s: %s -> %s", name, from, to)
		},
	})

	if !breaker.CanExecute() {
		return fallback()
	}
	result, err := factory.Create()
	if err != nil {
		breaker.RecordFailure(err)
		return fallback()
	}
	breaker.RecordSuccess()
*/
package resilience
