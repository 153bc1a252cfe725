package request

import "net/http"

// CreateSetupIntent describes creating a setup intent, used to store an
// instrument without charging it (e.g. free trials, zero-total orders).
type CreateSetupIntent struct {
	Base

	CustomerID      string
	PaymentMethodID string
	Confirm         bool
}

func (r *CreateSetupIntent) Method() string     { return http.MethodPost }
func (r *CreateSetupIntent) Route() string      { return "/setup_intents" }
func (r *CreateSetupIntent) SiteSpecific() bool { return true }

// Setup intents act on the account's customer records, so they authenticate
// with the user-level credential.
func (r *CreateSetupIntent) UseUserToken() bool { return true }

func (r *CreateSetupIntent) Validate() error {
	if err := requireString("customer", r.CustomerID); err != nil {
		return err
	}
	return requireString("payment_method", r.PaymentMethodID)
}

func (r *CreateSetupIntent) Parameters() map[string]string {
	params := map[string]string{
		"customer":       r.CustomerID,
		"payment_method": r.PaymentMethodID,
	}
	if r.Confirm {
		params["confirm"] = "true"
	}
	return params
}

// GetSetupIntent describes fetching a setup intent by id.
type GetSetupIntent struct {
	Base

	SetupIntentID string
}

func (r *GetSetupIntent) Method() string     { return http.MethodGet }
func (r *GetSetupIntent) Route() string      { return "/setup_intents/" + r.SetupIntentID }
func (r *GetSetupIntent) SiteSpecific() bool { return true }
func (r *GetSetupIntent) UseUserToken() bool { return true }

func (r *GetSetupIntent) Validate() error {
	return requireString("setup_intent_id", r.SetupIntentID)
}

func (r *GetSetupIntent) Parameters() map[string]string {
	return map[string]string{}
}
