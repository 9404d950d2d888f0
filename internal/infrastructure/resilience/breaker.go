package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by callers that surface circuit rejection as an error.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config holds the thresholds governing a breaker. It is fixed at construction.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens a closed breaker
	FailureThreshold int
	// RecoveryTimeout is how long an open breaker waits before allowing a probe
	RecoveryTimeout time.Duration
	// SuccessThreshold is the number of consecutive successes that close a half-open breaker
	SuccessThreshold int
	// OnStateChange is called whenever the state changes
	OnStateChange func(name string, from State, to State)
}

// Stats holds the lifetime counters for a breaker.
type Stats struct {
	TotalRequests        uint64
	SuccessfulRequests   uint64
	FailedRequests       uint64
	ConsecutiveFailures  int
	ConsecutiveSuccesses int
	LastFailureTime      time.Time
	LastError            string
	StateChanges         uint64
}

// Snapshot is a point-in-time view of a breaker with derived rates.
type Snapshot struct {
	Name                 string  `json:"name"`
	State                string  `json:"state"`
	TotalRequests        uint64  `json:"total_requests"`
	SuccessfulRequests   uint64  `json:"successful_requests"`
	FailedRequests       uint64  `json:"failed_requests"`
	ConsecutiveFailures  int     `json:"consecutive_failures"`
	ConsecutiveSuccesses int     `json:"consecutive_successes"`
	SuccessRate          float64 `json:"success_rate"`
	FailureRate          float64 `json:"failure_rate"`
	LastError            string  `json:"last_error,omitempty"`
	StateChanges         uint64  `json:"state_changes"`
}

// Breaker implements a per-component circuit breaker. It guards exactly one
// named component and is never shared between components.
//
// State transitions are evaluated lazily on the calling goroutine: an open
// breaker moves to half-open inside CanExecute once the recovery timeout has
// elapsed, with no background timer involved.
type Breaker struct {
	name   string
	config Config

	mu    sync.Mutex
	state State
	stats Stats
}

// New creates a circuit breaker for the named component.
func New(name string, config Config) *Breaker {
	// Set default values
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 60 * time.Second
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}

	return &Breaker{
		name:   name,
		config: config,
		state:  StateClosed,
	}
}

// Name returns the name of the guarded component
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state without evaluating recovery
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// CanExecute reports whether a request may proceed. When the breaker is open
// and the recovery timeout has elapsed since the last failure, it transitions
// to half-open and admits the probe.
func (b *Breaker) CanExecute() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if time.Since(b.stats.LastFailureTime) >= b.config.RecoveryTimeout {
			b.setState(StateHalfOpen)
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess records a successful request against the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.TotalRequests++
	b.stats.SuccessfulRequests++
	b.stats.ConsecutiveSuccesses++
	b.stats.ConsecutiveFailures = 0

	if b.state == StateHalfOpen && b.stats.ConsecutiveSuccesses >= b.config.SuccessThreshold {
		b.setState(StateClosed)
	}
}

// RecordFailure records a failed request against the breaker. A closed breaker
// opens once the failure threshold is met; a half-open breaker reopens on a
// single failure, the threshold does not apply to probes.
func (b *Breaker) RecordFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.TotalRequests++
	b.stats.FailedRequests++
	b.stats.ConsecutiveFailures++
	b.stats.ConsecutiveSuccesses = 0
	b.stats.LastFailureTime = time.Now()
	if err != nil {
		b.stats.LastError = err.Error()
	}

	switch b.state {
	case StateClosed:
		if b.stats.ConsecutiveFailures >= b.config.FailureThreshold {
			b.setState(StateOpen)
		}
	case StateHalfOpen:
		b.setState(StateOpen)
	}
}

// Reset forces the breaker closed and clears the consecutive counters.
// Lifetime totals are statistics and survive a reset.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateClosed {
		b.setState(StateClosed)
	}
	b.stats.ConsecutiveFailures = 0
	b.stats.ConsecutiveSuccesses = 0
}

// Snapshot returns a copy of the current stats with derived rates.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	var successRate, failureRate float64
	if b.stats.TotalRequests > 0 {
		successRate = float64(b.stats.SuccessfulRequests) / float64(b.stats.TotalRequests)
		failureRate = float64(b.stats.FailedRequests) / float64(b.stats.TotalRequests)
	}

	return Snapshot{
		Name:                 b.name,
		State:                b.state.String(),
		TotalRequests:        b.stats.TotalRequests,
		SuccessfulRequests:   b.stats.SuccessfulRequests,
		FailedRequests:       b.stats.FailedRequests,
		ConsecutiveFailures:  b.stats.ConsecutiveFailures,
		ConsecutiveSuccesses: b.stats.ConsecutiveSuccesses,
		SuccessRate:          successRate,
		FailureRate:          failureRate,
		LastError:            b.stats.LastError,
		StateChanges:         b.stats.StateChanges,
	}
}

// setState changes the state, must hold lock
func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}

	prev := b.state
	b.state = state
	b.stats.StateChanges++

	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.name, prev, state)
	}
}
