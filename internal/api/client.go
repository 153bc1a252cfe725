// Package api defines the remote payments API client consumed by the
// pipeline, the state machine and the REST controllers, along with the
// intent/charge objects the API returns.
package api

import (
	"context"
	"fmt"

	"github.com/yourorg/payments-gateway/internal/server/request"
)

// Intent statuses returned by the remote API.
const (
	IntentRequiresCapture       = "requires_capture"
	IntentProcessing            = "processing"
	IntentSucceeded             = "succeeded"
	IntentCanceled              = "canceled"
	IntentRequiresAction        = "requires_action"
	IntentRequiresPaymentMethod = "requires_payment_method"
)

// Charge is the charge object nested inside a confirmed intent.
type Charge struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Intent is a remote object representing an attempted charge, with a status
// lifecycle of requires_capture -> processing/succeeded, or failed/canceled.
type Intent struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	PaymentMethodID string  `json:"payment_method"`
	CustomerID      string  `json:"customer"`
	ClientSecret    string  `json:"client_secret"`
	NextActionURL   string  `json:"next_action_url,omitempty"`
	Charge          *Charge `json:"charge,omitempty"`
}

// Successful reports whether the intent reached a state that should be
// treated as a successful payment attempt.
func (i *Intent) Successful() bool {
	switch i.Status {
	case IntentSucceeded, IntentRequiresCapture, IntentProcessing:
		return true
	}
	return false
}

// ChargeID returns the nested charge id, or "" when no charge exists yet.
func (i *Intent) ChargeID() string {
	if i.Charge == nil {
		return ""
	}
	return i.Charge.ID
}

// Capturable reports whether an intent with the given status may still be
// captured.
func Capturable(status string) bool {
	switch status {
	case IntentProcessing, IntentRequiresCapture, IntentSucceeded:
		return true
	}
	return false
}

// SetupIntent is a remote object storing an instrument without a charge.
type SetupIntent struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	CustomerID      string `json:"customer"`
	PaymentMethodID string `json:"payment_method"`
	ClientSecret    string `json:"client_secret"`
}

// Customer is a remote customer record.
type Customer struct {
	ID string `json:"id"`
}

// Transaction is one row of the remote transactions listing.
type Transaction struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Created  int64  `json:"created"`
}

// Error is a remote API failure: the processor rejected or failed a call.
// It is translated into a user-facing message and HTTP status at the REST
// boundary, never swallowed inside the pipeline.
type Error struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *Error) Error() string {
	return fmt.Sprintf("payments API error %s (HTTP %d): %s", e.Code, e.HTTPStatus, e.Message)
}

// Client is the remote payments API surface used by this service.
type Client interface {
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
	CreateIntent(ctx context.Context, req *request.CreateIntent) (*Intent, error)
	UpdateIntent(ctx context.Context, req *request.UpdateIntent) (*Intent, error)
	CaptureIntent(ctx context.Context, req *request.CaptureIntent) (*Intent, error)
	CreateSetupIntent(ctx context.Context, req *request.CreateSetupIntent) (*SetupIntent, error)
	GetSetupIntent(ctx context.Context, setupIntentID string) (*SetupIntent, error)
	CreateCustomer(ctx context.Context, req *request.CreateCustomer) (*Customer, error)
	ListTransactions(ctx context.Context, req *request.ListTransactions) ([]Transaction, error)
}
