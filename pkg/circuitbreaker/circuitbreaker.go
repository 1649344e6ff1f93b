// Package circuitbreaker stops calling a failing dependency for a cooldown
// period and lets a single trial call through before closing again.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var ErrOpen = errors.New("devre kesici açık")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type Settings struct {
	Name string
	// Threshold is the number of consecutive failures that opens the breaker.
	Threshold int
	// Cooldown is how long the breaker stays open before a trial call is allowed.
	Cooldown time.Duration
	// IsFailure decides which errors count against the breaker. Defaults to err != nil.
	IsFailure     func(err error) bool
	OnStateChange func(name string, from, to State)
}

type CircuitBreaker struct {
	name          string
	threshold     int
	cooldown      time.Duration
	isFailure     func(err error) bool
	onStateChange func(name string, from, to State)
	now           func() time.Time

	mutex    sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trialing bool
}

func New(st Settings) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:          st.Name,
		threshold:     st.Threshold,
		cooldown:      st.Cooldown,
		isFailure:     st.IsFailure,
		onStateChange: st.OnStateChange,
		now:           time.Now,
	}

	if cb.threshold <= 0 {
		cb.threshold = 5
	}

	if cb.cooldown <= 0 {
		cb.cooldown = 30 * time.Second
	}

	if cb.isFailure == nil {
		cb.isFailure = func(err error) bool { return err != nil }
	}

	return cb
}

// Do runs fn unless the breaker is open. While half-open only one call is let
// through; concurrent callers get ErrOpen until it finishes.
func (cb *CircuitBreaker) Do(fn func() error) error {
	if err := cb.before(); err != nil {
		return err
	}

	err := fn()
	cb.after(cb.isFailure(err))
	return err
}

func (cb *CircuitBreaker) before() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.currentState() {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if cb.trialing {
			return ErrOpen
		}
		cb.trialing = true
	}
	return nil
}

func (cb *CircuitBreaker) after(failed bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	state := cb.currentState()
	cb.trialing = false

	if !failed {
		cb.failures = 0
		if state == StateHalfOpen {
			cb.setState(StateClosed)
		}
		return
	}

	cb.failures++
	if state == StateHalfOpen || cb.failures >= cb.threshold {
		cb.openedAt = cb.now()
		cb.setState(StateOpen)
	}
}

// currentState moves an expired open breaker to half-open. Caller holds the mutex.
func (cb *CircuitBreaker) currentState() State {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cooldown {
		cb.setState(StateHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) setState(state State) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	if state != StateOpen {
		cb.failures = 0
	}

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	return cb.currentState()
}
