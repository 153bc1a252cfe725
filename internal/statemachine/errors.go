package statemachine

import "fmt"

// ConfigurationError indicates the machine was started without required
// setup: no entity, or neither an initial state nor a current state.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "state machine configuration error: " + e.Reason
}

// InvalidTransitionError reports a hop not permitted by the machine's
// transition table. It indicates a logic bug in a State implementation and
// is always fatal.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid next state: %s from previous state: %s", e.To, e.From)
}

// ReservedKeyError reports an attempt to write a protected entity key
// directly. It is a programming error, not expected at runtime.
type ReservedKeyError struct {
	Key string
}

func (e *ReservedKeyError) Error() string {
	return fmt.Sprintf("please use another key, input key is reserved: %s", e.Key)
}
