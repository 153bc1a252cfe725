// Package circuitbreaker guards calls to the remote payments API, tripping
// per route group after consecutive failures so a degraded processor does
// not slow every checkout request to its timeout.
package circuitbreaker

import (
	"sync"
	"time"
)

// State represents the state of one route group's circuit.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

const (
	defaultFailureThreshold         = 5
	defaultOpenStateTimeout         = 30 * time.Second
	defaultHalfOpenSuccessThreshold = 2
)

type groupState struct {
	state                State
	consecutiveFailures  int
	consecutiveSuccesses int
	openUntil            time.Time
}

// CircuitBreaker tracks remote API health per route group.
type CircuitBreaker struct {
	mu     sync.RWMutex
	groups map[string]*groupState

	failureThreshold         int
	openStateTimeout         time.Duration
	halfOpenSuccessThreshold int
	now                      func() time.Time
}

// New creates a CircuitBreaker with default settings.
func New() *CircuitBreaker {
	return NewWithSettings(defaultFailureThreshold, defaultOpenStateTimeout, defaultHalfOpenSuccessThreshold)
}

// NewWithSettings creates a CircuitBreaker with custom thresholds.
func NewWithSettings(failThreshold int, openTimeout time.Duration, halfOpenSuccess int) *CircuitBreaker {
	return &CircuitBreaker{
		groups:                   make(map[string]*groupState),
		failureThreshold:         failThreshold,
		openStateTimeout:         openTimeout,
		halfOpenSuccessThreshold: halfOpenSuccess,
		now:                      time.Now,
	}
}

func (cb *CircuitBreaker) groupLocked(group string) *groupState {
	gs, ok := cb.groups[group]
	if !ok {
		gs = &groupState{state: Closed}
		cb.groups[group] = gs
	}
	return gs
}

// Allow reports whether requests to the route group may proceed. An expired
// Open circuit transitions to HalfOpen here.
func (cb *CircuitBreaker) Allow(group string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	gs := cb.groupLocked(group)
	switch gs.state {
	case Closed, HalfOpen:
		return true
	case Open:
		if cb.now().After(gs.openUntil) {
			gs.state = HalfOpen
			gs.consecutiveSuccesses = 0
			return true
		}
		return false
	}
	return true
}

// RecordFailure registers a failed call for the route group.
func (cb *CircuitBreaker) RecordFailure(group string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	gs := cb.groupLocked(group)
	switch gs.state {
	case Closed:
		gs.consecutiveFailures++
		if gs.consecutiveFailures >= cb.failureThreshold {
			gs.state = Open
			gs.openUntil = cb.now().Add(cb.openStateTimeout)
		}
	case HalfOpen:
		// A failure while probing re-opens the circuit immediately.
		gs.state = Open
		gs.openUntil = cb.now().Add(cb.openStateTimeout)
		gs.consecutiveFailures = 0
		gs.consecutiveSuccesses = 0
	}
}

// RecordSuccess registers a successful call for the route group.
func (cb *CircuitBreaker) RecordSuccess(group string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	gs := cb.groupLocked(group)
	switch gs.state {
	case Closed:
		gs.consecutiveFailures = 0
	case HalfOpen:
		gs.consecutiveSuccesses++
		if gs.consecutiveSuccesses >= cb.halfOpenSuccessThreshold {
			gs.state = Closed
			gs.consecutiveFailures = 0
			gs.consecutiveSuccesses = 0
		}
	}
}

// GetState returns the current state of a route group's circuit without
// transitioning it. Intended for tests and monitoring.
func (cb *CircuitBreaker) GetState(group string) State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	gs, ok := cb.groups[group]
	if !ok {
		return Closed
	}
	return gs.state
}
