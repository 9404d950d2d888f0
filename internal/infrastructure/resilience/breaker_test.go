package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("factory exploded")

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		config        Config
		requests      []bool // true = success, false = failure
		expectedState State
	}{
		{
			name: "stays closed on successes",
			config: Config{
				FailureThreshold: 3,
				RecoveryTimeout:  time.Minute,
				SuccessThreshold: 1,
			},
			requests:      []bool{true, true, true},
			expectedState: StateClosed,
		},
		{
			name: "opens after consecutive failures",
			config: Config{
				FailureThreshold: 3,
				RecoveryTimeout:  time.Minute,
				SuccessThreshold: 1,
			},
			requests:      []bool{false, false, false},
			expectedState: StateOpen,
		},
		{
			name: "success resets the failure streak",
			config: Config{
				FailureThreshold: 3,
				RecoveryTimeout:  time.Minute,
				SuccessThreshold: 1,
			},
			requests:      []bool{false, false, true, false, false},
			expectedState: StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := New("test", tt.config)

			for _, success := range tt.requests {
				if success {
					breaker.RecordSuccess()
				} else {
					breaker.RecordFailure(errBoom)
				}
			}

			assert.Equal(t, tt.expectedState, breaker.State())
		})
	}
}

func TestBreakerOpenRejectsImmediately(t *testing.T) {
	breaker := New("test", Config{
		FailureThreshold: 2,
		RecoveryTimeout:  time.Minute,
		SuccessThreshold: 1,
	})

	breaker.RecordFailure(errBoom)
	assert.True(t, breaker.CanExecute())

	breaker.RecordFailure(errBoom)
	assert.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.CanExecute())
}

func TestBreakerRecoveryProbe(t *testing.T) {
	breaker := New("test", Config{
		FailureThreshold: 3,
		RecoveryTimeout:  50 * time.Millisecond,
		SuccessThreshold: 2,
	})

	for i := 0; i < 3; i++ {
		breaker.RecordFailure(errBoom)
	}
	require.Equal(t, StateOpen, breaker.State())
	require.False(t, breaker.CanExecute())

	time.Sleep(60 * time.Millisecond)

	// First call after the timeout admits the probe and moves to half-open
	assert.True(t, breaker.CanExecute())
	assert.Equal(t, StateHalfOpen, breaker.State())
}

func TestBreakerHalfOpenSingleFailureReopens(t *testing.T) {
	breaker := New("test", Config{
		FailureThreshold: 3,
		RecoveryTimeout:  10 * time.Millisecond,
		SuccessThreshold: 2,
	})

	for i := 0; i < 3; i++ {
		breaker.RecordFailure(errBoom)
	}
	time.Sleep(20 * time.Millisecond)
	require.True(t, breaker.CanExecute())
	require.Equal(t, StateHalfOpen, breaker.State())

	// One success is below SuccessThreshold, breaker stays half-open
	breaker.RecordSuccess()
	assert.Equal(t, StateHalfOpen, breaker.State())

	// A single probe failure reopens regardless of FailureThreshold
	breaker.RecordFailure(errBoom)
	assert.Equal(t, StateOpen, breaker.State())
	assert.False(t, breaker.CanExecute())
}

func TestBreakerHalfOpenClosesAfterSuccessThreshold(t *testing.T) {
	breaker := New("test", Config{
		FailureThreshold: 2,
		RecoveryTimeout:  10 * time.Millisecond,
		SuccessThreshold: 2,
	})

	breaker.RecordFailure(errBoom)
	breaker.RecordFailure(errBoom)
	time.Sleep(20 * time.Millisecond)
	require.True(t, breaker.CanExecute())

	breaker.RecordSuccess()
	breaker.RecordSuccess()
	assert.Equal(t, StateClosed, breaker.State())
	assert.True(t, breaker.CanExecute())
}

func TestBreakerReset(t *testing.T) {
	breaker := New("test", Config{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Minute,
		SuccessThreshold: 1,
	})

	breaker.RecordFailure(errBoom)
	require.Equal(t, StateOpen, breaker.State())

	breaker.Reset()
	assert.Equal(t, StateClosed, breaker.State())
	assert.True(t, breaker.CanExecute())

	snap := breaker.Snapshot()
	assert.Equal(t, 0, snap.ConsecutiveFailures)
	// Lifetime totals survive a reset
	assert.Equal(t, uint64(1), snap.TotalRequests)
	assert.Equal(t, uint64(1), snap.FailedRequests)
}

func TestBreakerSnapshotRates(t *testing.T) {
	breaker := New("test", Config{
		FailureThreshold: 10,
		RecoveryTimeout:  time.Minute,
		SuccessThreshold: 1,
	})

	// Zero requests yields zero rates, not NaN
	snap := breaker.Snapshot()
	assert.Zero(t, snap.SuccessRate)
	assert.Zero(t, snap.FailureRate)

	breaker.RecordSuccess()
	breaker.RecordSuccess()
	breaker.RecordSuccess()
	breaker.RecordFailure(errBoom)

	snap = breaker.Snapshot()
	assert.Equal(t, uint64(4), snap.TotalRequests)
	assert.InDelta(t, 0.75, snap.SuccessRate, 0.001)
	assert.InDelta(t, 0.25, snap.FailureRate, 0.001)
	assert.Equal(t, "factory exploded", snap.LastError)
}

func TestBreakerStateChangeCallback(t *testing.T) {
	var transitions []string
	breaker := New("test", Config{
		FailureThreshold: 1,
		RecoveryTimeout:  10 * time.Millisecond,
		SuccessThreshold: 1,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	breaker.RecordFailure(errBoom)
	time.Sleep(20 * time.Millisecond)
	breaker.CanExecute()
	breaker.RecordSuccess()

	assert.Equal(t, []string{
		"closed->open",
		"open->half-open",
		"half-open->closed",
	}, transitions)
	assert.Equal(t, uint64(3), breaker.Snapshot().StateChanges)
}

func TestBreakerFullRecoveryScenario(t *testing.T) {
	// failureThreshold=3, recoveryTimeout short: after 3 failures the breaker
	// rejects, after the timeout it admits a probe as half-open, and one
	// success followed by one failure reopens it.
	breaker := New("test", Config{
		FailureThreshold: 3,
		RecoveryTimeout:  100 * time.Millisecond,
		SuccessThreshold: 2,
	})

	for i := 0; i < 3; i++ {
		breaker.RecordFailure(errBoom)
	}
	assert.False(t, breaker.CanExecute())

	time.Sleep(110 * time.Millisecond)

	assert.True(t, breaker.CanExecute())
	assert.Equal(t, StateHalfOpen, breaker.State())

	breaker.RecordSuccess()
	breaker.RecordFailure(errBoom)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerConcurrentAccess(t *testing.T) {
	breaker := New("test", Config{
		FailureThreshold: 1000000,
		RecoveryTimeout:  time.Minute,
		SuccessThreshold: 1,
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				breaker.CanExecute()
				if j%2 == 0 {
					breaker.RecordSuccess()
				} else {
					breaker.RecordFailure(errBoom)
				}
			}
		}(i)
	}
	wg.Wait()

	snap := breaker.Snapshot()
	assert.Equal(t, uint64(8000), snap.TotalRequests)
	assert.Equal(t, uint64(4000), snap.SuccessfulRequests)
	assert.Equal(t, uint64(4000), snap.FailedRequests)
}
