// Package request defines value objects describing outbound calls to the
// remote payments API: parameters, HTTP method, route, scope and credential
// mode. Requests describe the call without performing it; the API client
// consumes them.
package request

import (
	"fmt"
	"net/http"
)

// ValidationError reports malformed outbound parameters, before the call is
// ever sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request parameter %q: %s", e.Field, e.Reason)
}

// Request describes one outbound call to the remote payments API.
type Request interface {
	Method() string
	Route() string

	// SiteSpecific reports whether the call is scoped to the local site
	// rather than global.
	SiteSpecific() bool

	// UseUserToken selects the user-level credential instead of the
	// application-level one.
	UseUserToken() bool

	// Validate checks the internal consistency of the parameters.
	Validate() error

	// Parameters returns the raw parameter map, without validation.
	Parameters() map[string]string

	// Headers returns the custom headers set on the request.
	Headers() map[string]string
}

var allowedMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodOptions: {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
}

// Data validates a request and returns its parameter map. It fails with a
// ValidationError when the request is inconsistent or declares a method
// outside the allow-list.
func Data(r Request) (map[string]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, ok := allowedMethods[r.Method()]; !ok {
		return nil, &ValidationError{Field: "method", Reason: fmt.Sprintf("HTTP method %q is not allowed", r.Method())}
	}
	return r.Parameters(), nil
}

// Base carries header bookkeeping shared by all request value objects.
type Base struct {
	headers map[string]string
}

// Headers returns the custom headers set on the request.
func (b *Base) Headers() map[string]string {
	return b.headers
}

// AddHeader sets a custom header on the request.
func (b *Base) AddHeader(name, value string) {
	if b.headers == nil {
		b.headers = make(map[string]string)
	}
	b.headers[name] = value
}

func requireString(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "must be a non-empty string"}
	}
	return nil
}

func requirePositive(field string, value int64) error {
	if value <= 0 {
		return &ValidationError{Field: field, Reason: "must be a positive amount"}
	}
	return nil
}
