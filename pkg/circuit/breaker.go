// Package circuit provides a circuit breaker for calls to flaky external
// collaborators
package circuit

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling through while the circuit is open
var ErrOpen = errors.New("circuit breaker is open")

// State represents the state of a circuit breaker
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

// Config holds configuration for a circuit breaker
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold int

	// SuccessThreshold is the number of successes required to close the circuit when half-open
	SuccessThreshold int

	// Timeout is how long the circuit stays open before a trial call
	Timeout time.Duration

	// IsFailure decides whether an error counts against the circuit.
	// Every non-nil error counts when nil.
	IsFailure func(error) bool

	// OnStateChange is called when the state changes
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 1,
		Timeout:          30 * time.Second,
	}
}

// Stats holds counters about breaker operations
type Stats struct {
	TotalRequests        int64 `json:"total_requests"`
	TotalFailures        int64 `json:"total_failures"`
	TotalRejections      int64 `json:"total_rejections"`
	ConsecutiveFailures  int   `json:"consecutive_failures"`
	ConsecutiveSuccesses int   `json:"consecutive_successes"`
}

// Breaker implements the circuit breaker pattern. A half-open breaker lets
// a single trial call through at a time.
type Breaker struct {
	name        string
	config      Config
	state       State
	stats       Stats
	nextAttempt time.Time
	probing     bool
	now         func() time.Time
	mu          sync.Mutex
}

// New creates a breaker; zero config fields take their defaults
func New(name string, config Config) *Breaker {
	def := DefaultConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = def.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}

	return &Breaker{
		name:   name,
		config: config,
		state:  StateClosed,
		now:    time.Now,
	}
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// Execute runs fn unless the circuit is open. The call itself runs
// without holding the lock.
func (b *Breaker) Execute(fn func() error) error {
	if !b.acquire() {
		return ErrOpen
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
	if err != nil && b.counts(err) {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.TotalRequests++
	switch b.state {
	case StateOpen:
		if b.now().Before(b.nextAttempt) {
			b.stats.TotalRejections++
			return false
		}
		b.setState(StateHalfOpen)
		b.probing = true
		return true
	case StateHalfOpen:
		if b.probing {
			b.stats.TotalRejections++
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

func (b *Breaker) counts(err error) bool {
	return b.config.IsFailure == nil || b.config.IsFailure(err)
}

func (b *Breaker) onSuccess() {
	b.stats.ConsecutiveFailures = 0
	b.stats.ConsecutiveSuccesses++

	if b.state == StateHalfOpen && b.stats.ConsecutiveSuccesses >= b.config.SuccessThreshold {
		b.setState(StateClosed)
	}
}

func (b *Breaker) onFailure() {
	b.stats.TotalFailures++
	b.stats.ConsecutiveSuccesses = 0
	b.stats.ConsecutiveFailures++

	switch b.state {
	case StateClosed:
		if b.stats.ConsecutiveFailures >= b.config.FailureThreshold {
			b.setState(StateOpen)
		}
	case StateHalfOpen:
		// Any failure in half-open state opens the circuit
		b.setState(StateOpen)
	}
}

func (b *Breaker) setState(next State) {
	if b.state == next {
		return
	}

	prev := b.state
	b.state = next

	switch next {
	case StateOpen:
		b.nextAttempt = b.now().Add(b.config.Timeout)
	case StateHalfOpen:
		b.stats.ConsecutiveSuccesses = 0
	case StateClosed:
		b.stats.ConsecutiveFailures = 0
		b.stats.ConsecutiveSuccesses = 0
	}

	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.name, prev, next)
	}
}

// State returns the current state. An open breaker whose timeout elapsed
// still reports open until the next call.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns a copy of the breaker counters
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Reset closes the breaker and clears its counters
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setState(StateClosed)
	b.stats = Stats{}
	b.nextAttempt = time.Time{}
	b.probing = false
}
