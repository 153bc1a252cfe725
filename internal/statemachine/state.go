package statemachine

import "context"

// Input is the external value driving one machine invocation.
type Input interface {
	// ID names the input in revision logs.
	ID() string
}

// Kind categorizes states. Final, Failed and Async states stop the progress
// loop once reached; ordinary states keep it running.
type Kind int

const (
	// KindOrdinary states transition onward within the same invocation.
	KindOrdinary Kind = iota

	// KindFinal marks successful termination.
	KindFinal

	// KindFailed marks terminal failure.
	KindFailed

	// KindAsync marks an out-of-process wait: the machine returns and a
	// later invocation supplies the next input (e.g. a redirect callback).
	KindAsync
)

// State is one node of a machine. The same state type may be reachable from
// different predecessors in different machines; legality of each hop is
// declared per machine in its Transitions table, not by the states.
type State interface {
	ID() string
	Kind() Kind

	// Act mutates the entity based on the input and returns the candidate
	// next state, which the machine validates against its transition table.
	Act(ctx context.Context, e *Entity, in Input) (State, error)
}

// Transitions is the adjacency table of a machine: state id to the set of
// permitted next state ids.
type Transitions map[string][]string

// Allowed reports whether a hop from one state id to another is permitted.
func (t Transitions) Allowed(from, to string) bool {
	for _, id := range t[from] {
		if id == to {
			return true
		}
	}
	return false
}
