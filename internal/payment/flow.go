package payment

// Flow identifies which external trigger invoked the pipeline. Steps use it
// to decide whether they are applicable to the current run.
type Flow string

const (
	// StandardFlow is the classic checkout flow, where the instrument is
	// collected and confirmed server-side in a single request.
	StandardFlow Flow = "STANDARD_FLOW"

	// PostCheckoutRedirectFlow checks the status of an intent after the
	// customer returns from an off-site authentication redirect.
	PostCheckoutRedirectFlow Flow = "POST_CHECKOUT_REDIRECT_FLOW"

	// UPEPrepareIntentFlow creates an intent ahead of checkout so the
	// unified payment element can render client-side fields.
	UPEPrepareIntentFlow Flow = "UPE_PREPARE_INTENT_FLOW"

	// UPEProcessPaymentFlow updates the prepared intent with final checkout
	// data before the client-side confirmation.
	UPEProcessPaymentFlow Flow = "UPE_PROCESS_PAYMENT_FLOW"

	// UPEProcessRedirectFlow acts on the intent outcome after the unified
	// element redirected back to the store.
	UPEProcessRedirectFlow Flow = "UPE_PROCESS_REDIRECT_FLOW"
)

var knownFlows = map[Flow]struct{}{
	StandardFlow:             {},
	PostCheckoutRedirectFlow: {},
	UPEPrepareIntentFlow:     {},
	UPEProcessPaymentFlow:    {},
	UPEProcessRedirectFlow:   {},
}

// SetFlow tags the payment with the flow that triggered processing. Flows
// outside the known set are rejected with a ConfigurationError.
func (p *Payment) SetFlow(f Flow) error {
	if _, ok := knownFlows[f]; !ok {
		return &ConfigurationError{Reason: "unknown payment flow: " + string(f)}
	}
	p.flow = f
	return nil
}

// Flow returns the current flow tag, empty until SetFlow is called.
func (p *Payment) Flow() Flow {
	return p.flow
}

// IsFlow reports whether the payment is part of a specific flow.
func (p *Payment) IsFlow(f Flow) bool {
	return p.flow == f
}
