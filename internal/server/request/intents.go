package request

import (
	"fmt"
	"net/http"
)

// Capture methods accepted by CreateIntent.
const (
	CaptureAutomatic = "automatic"
	CaptureManual    = "manual"
)

// CreateIntent describes the creation of a payment intent.
type CreateIntent struct {
	Base

	Amount          int64
	Currency        string
	PaymentMethodID string
	CustomerID      string
	CaptureMethod   string
	Confirm         bool
	ReturnURL       string
	Metadata        map[string]string
}

func (r *CreateIntent) Method() string     { return http.MethodPost }
func (r *CreateIntent) Route() string      { return "/intentions" }
func (r *CreateIntent) SiteSpecific() bool { return true }
func (r *CreateIntent) UseUserToken() bool { return false }

func (r *CreateIntent) Validate() error {
	if err := requirePositive("amount", r.Amount); err != nil {
		return err
	}
	if err := requireString("currency", r.Currency); err != nil {
		return err
	}
	if r.CaptureMethod != "" && r.CaptureMethod != CaptureAutomatic && r.CaptureMethod != CaptureManual {
		return &ValidationError{Field: "capture_method", Reason: "must be automatic or manual"}
	}
	if r.Confirm {
		return requireString("payment_method", r.PaymentMethodID)
	}
	return nil
}

func (r *CreateIntent) Parameters() map[string]string {
	params := map[string]string{
		"amount":   fmt.Sprintf("%d", r.Amount),
		"currency": r.Currency,
	}
	if r.PaymentMethodID != "" {
		params["payment_method"] = r.PaymentMethodID
	}
	if r.CustomerID != "" {
		params["customer"] = r.CustomerID
	}
	if r.CaptureMethod != "" {
		params["capture_method"] = r.CaptureMethod
	}
	if r.Confirm {
		params["confirm"] = "true"
	}
	if r.ReturnURL != "" {
		params["return_url"] = r.ReturnURL
	}
	for k, v := range r.Metadata {
		params["metadata["+k+"]"] = v
	}
	return params
}

// UpdateIntent describes updating a prepared intent with final checkout
// data, before the client-side confirmation.
type UpdateIntent struct {
	Base

	IntentID   string
	Amount     int64
	Currency   string
	CustomerID string
	Metadata   map[string]string
}

func (r *UpdateIntent) Method() string     { return http.MethodPost }
func (r *UpdateIntent) Route() string      { return "/intentions/" + r.IntentID }
func (r *UpdateIntent) SiteSpecific() bool { return true }
func (r *UpdateIntent) UseUserToken() bool { return false }

func (r *UpdateIntent) Validate() error {
	if err := requireString("intent_id", r.IntentID); err != nil {
		return err
	}
	if err := requirePositive("amount", r.Amount); err != nil {
		return err
	}
	return requireString("currency", r.Currency)
}

func (r *UpdateIntent) Parameters() map[string]string {
	params := map[string]string{
		"amount":   fmt.Sprintf("%d", r.Amount),
		"currency": r.Currency,
	}
	if r.CustomerID != "" {
		params["customer"] = r.CustomerID
	}
	for k, v := range r.Metadata {
		params["metadata["+k+"]"] = v
	}
	return params
}

// CaptureIntent describes capturing an authorized intent.
type CaptureIntent struct {
	Base

	IntentID        string
	AmountToCapture int64
}

func (r *CaptureIntent) Method() string     { return http.MethodPost }
func (r *CaptureIntent) Route() string      { return "/intentions/" + r.IntentID + "/capture" }
func (r *CaptureIntent) SiteSpecific() bool { return true }
func (r *CaptureIntent) UseUserToken() bool { return false }

func (r *CaptureIntent) Validate() error {
	if err := requireString("intent_id", r.IntentID); err != nil {
		return err
	}
	return requirePositive("amount_to_capture", r.AmountToCapture)
}

func (r *CaptureIntent) Parameters() map[string]string {
	return map[string]string{
		"amount_to_capture": fmt.Sprintf("%d", r.AmountToCapture),
	}
}

// GetIntent describes fetching a single intent by id.
type GetIntent struct {
	Base

	IntentID string
}

func (r *GetIntent) Method() string     { return http.MethodGet }
func (r *GetIntent) Route() string      { return "/intentions/" + r.IntentID }
func (r *GetIntent) SiteSpecific() bool { return true }
func (r *GetIntent) UseUserToken() bool { return false }

func (r *GetIntent) Validate() error {
	return requireString("intent_id", r.IntentID)
}

func (r *GetIntent) Parameters() map[string]string {
	return map[string]string{}
}
