package statemachine

import (
	"context"
	"fmt"
	"time"
)

// Machine drives an entity through states until a Final, Failed or Async
// state is reached. One machine instance serves one invocation; all durable
// state lives in the entity.
type Machine struct {
	id          string
	transitions Transitions
	states      map[string]State

	entity  *Entity
	initial State
	input   Input
	now     func() time.Time
}

// New creates a machine with its transition table and the states it can
// resume from. The states slice must contain every state an entity may be
// persisted in.
func New(id string, transitions Transitions, states ...State) *Machine {
	if transitions == nil {
		panic("state machine transitions cannot be nil")
	}
	registry := make(map[string]State, len(states))
	for _, s := range states {
		registry[s.ID()] = s
	}
	return &Machine{
		id:          id,
		transitions: transitions,
		states:      registry,
		now:         time.Now,
	}
}

// ID returns the machine identifier recorded in revision logs.
func (m *Machine) ID() string { return m.id }

// SetEntity attaches the entity to drive.
func (m *Machine) SetEntity(e *Entity) *Machine {
	m.entity = e
	return m
}

// SetInitialState sets the state to start from, overriding the entity's
// persisted current state.
func (m *Machine) SetInitialState(s State) *Machine {
	m.initial = s
	return m
}

// SetInput supplies the input for this invocation.
func (m *Machine) SetInput(in Input) *Machine {
	m.input = in
	return m
}

// Progress runs the machine: each state acts on the entity, the candidate
// hop is validated against the transition table, a revision is recorded,
// and the loop continues until an emit-worthy state (Final, Failed, Async).
//
// An invalid hop fails with InvalidTransitionError before the entity is
// mutated further; revisions recorded up to that point remain.
func (m *Machine) Progress(ctx context.Context) (*Entity, error) {
	if m.entity == nil {
		return nil, &ConfigurationError{Reason: "entity not set"}
	}

	current := m.initial
	if current == nil {
		id := m.entity.CurrentState()
		if id == "" {
			return nil, &ConfigurationError{Reason: "initial state is not set, and there is no current state"}
		}
		resumed, ok := m.states[id]
		if !ok {
			return m.entity, fmt.Errorf("state machine %s: no state registered for id %q", m.id, id)
		}
		current = resumed
	}

	for {
		next, err := current.Act(ctx, m.entity, m.input)
		if err != nil {
			return m.entity, fmt.Errorf("state machine %s: state %s: %w", m.id, current.ID(), err)
		}

		if !m.transitions.Allowed(current.ID(), next.ID()) {
			return m.entity, &InvalidTransitionError{From: current.ID(), To: next.ID()}
		}

		m.entity.recordTransition(current.ID(), next.ID(), m.input, m.id, m.now())

		// States may name their successor with a bare value; the registered
		// instance carries the wired dependencies.
		if registered, ok := m.states[next.ID()]; ok {
			next = registered
		}
		current = next

		if isEmitState(current) {
			return m.entity, nil
		}
	}
}

func isEmitState(s State) bool {
	switch s.Kind() {
	case KindFinal, KindFailed, KindAsync:
		return true
	}
	return false
}
