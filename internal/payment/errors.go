package payment

import "errors"

// ConfigurationError indicates required setup was missing before an
// operation, e.g. calling Process without a flow. It is always fatal and
// never retried automatically.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "payment configuration error: " + e.Reason
}

// ErrNoResponse is returned when the pipeline finished without any step
// producing a terminal response. It indicates a misconfigured step list.
var ErrNoResponse = errors.New("payment: no step produced a response")
