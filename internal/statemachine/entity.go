// Package statemachine is a generic engine driving an entity through named
// states via declared transition rules, with an append-only revision log
// auditing every hop.
package statemachine

import (
	"context"
	"time"
)

// Reserved entity keys, maintained by the framework and never writable by
// application code.
const (
	KeyRevision     = "revision"
	KeyCurrentState = "current_state"
	KeyOrderID      = "order_id"
)

var reservedKeys = map[string]struct{}{
	KeyRevision:     {},
	KeyCurrentState: {},
	KeyOrderID:      {},
}

// Revision is one entry of the entity's transition log.
type Revision struct {
	Timestamp     int64          `json:"timestamp"`
	Input         string         `json:"input"`
	PreviousState string         `json:"previous_state"`
	CurrentState  string         `json:"current_state"`
	StateMachine  string         `json:"state_machine"`
	DiffData      map[string]any `json:"diff_data"`
}

// Entity is the keyed data bag a state machine drives. States mutate it via
// Set; the framework records a revision before every state advance.
type Entity struct {
	orderID      string
	data         map[string]any
	diff         map[string]any
	currentState string
	revisions    []Revision
}

// NewEntity creates an entity bound to an order id.
func NewEntity(orderID string) *Entity {
	return &Entity{
		orderID: orderID,
		data:    make(map[string]any),
		diff:    make(map[string]any),
	}
}

// OrderID returns the order the entity belongs to.
func (e *Entity) OrderID() string { return e.orderID }

// Set stores a value under key. Reserved keys fail with a ReservedKeyError
// and leave the entity unchanged.
func (e *Entity) Set(key string, value any) error {
	if _, ok := reservedKeys[key]; ok {
		return &ReservedKeyError{Key: key}
	}
	e.data[key] = value
	e.diff[key] = value
	return nil
}

// Get returns the value under key, or nil when unset.
func (e *Entity) Get(key string) any {
	return e.data[key]
}

// CurrentState returns the id of the entity's current state, empty for a
// fresh entity.
func (e *Entity) CurrentState() string { return e.currentState }

// Revisions returns the transition log, oldest first.
func (e *Entity) Revisions() []Revision { return e.revisions }

// recordTransition appends exactly one revision and then advances the
// current state. The diff accumulated since the previous transition is
// attached to the revision and reset.
func (e *Entity) recordTransition(previous, current string, input Input, machineID string, at time.Time) {
	diff := e.diff
	e.diff = make(map[string]any)

	inputID := ""
	if input != nil {
		inputID = input.ID()
	}

	e.revisions = append(e.revisions, Revision{
		Timestamp:     at.Unix(),
		Input:         inputID,
		PreviousState: previous,
		CurrentState:  current,
		StateMachine:  machineID,
		DiffData:      diff,
	})
	e.currentState = current
}

// EntityData is the serialized form of an entity.
type EntityData struct {
	OrderID      string         `json:"order_id"`
	Data         map[string]any `json:"data"`
	CurrentState string         `json:"current_state"`
	Revisions    []Revision     `json:"revision"`
}

// Data returns the serialized entity state.
func (e *Entity) Data() EntityData {
	return EntityData{
		OrderID:      e.orderID,
		Data:         e.data,
		CurrentState: e.currentState,
		Revisions:    e.revisions,
	}
}

// EntityFromData rehydrates an entity from its serialized form.
func EntityFromData(d EntityData) *Entity {
	data := d.Data
	if data == nil {
		data = make(map[string]any)
	}
	return &Entity{
		orderID:      d.OrderID,
		data:         data,
		diff:         make(map[string]any),
		currentState: d.CurrentState,
		revisions:    d.Revisions,
	}
}

// EntityStorage persists entities between machine invocations. An async
// state ends one invocation; a later one reloads the entity and continues.
type EntityStorage interface {
	Store(ctx context.Context, e *Entity) error
	Load(ctx context.Context, orderID string) (*Entity, error)
}
