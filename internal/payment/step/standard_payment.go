package step

import (
	"context"
	"fmt"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/server/request"
)

// StandardPaymentStep creates and confirms the intent for a plain checkout
// payment. It is the step that actually moves money in the standard flow.
type StandardPaymentStep struct {
	noopStep
	client    api.Client
	returnURL string
}

func NewStandardPaymentStep(client api.Client, returnURL string) *StandardPaymentStep {
	return &StandardPaymentStep{client: client, returnURL: returnURL}
}

func (s *StandardPaymentStep) Name() string { return "standard-payment" }

func (s *StandardPaymentStep) IsApplicable(p *payment.Payment) bool {
	return s.client != nil &&
		p.IsFlow(payment.StandardFlow) &&
		p.Order() != nil &&
		p.Order().Total() > 0 &&
		p.Method() != nil
}

func (s *StandardPaymentStep) Act(ctx context.Context, p *payment.Payment) error {
	o := p.Order()
	captureMethod := request.CaptureAutomatic
	if p.Is(payment.ManualCapture) {
		captureMethod = request.CaptureManual
	}

	intent, err := s.client.CreateIntent(ctx, &request.CreateIntent{
		Amount:          o.Total(),
		Currency:        o.Currency(),
		PaymentMethodID: p.Method().InstrumentID(),
		CustomerID:      p.StringVar(VarCustomerID),
		CaptureMethod:   captureMethod,
		Confirm:         true,
		ReturnURL:       s.returnURL,
		Metadata:        metadataVar(p),
	})
	if err != nil {
		return fmt.Errorf("charging order %s: %w", o.ID(), err)
	}

	recordIntent(p, intent.ID, intent.Status, intent.PaymentMethodID, intent.ChargeID())

	switch {
	case intent.Status == api.IntentRequiresAction:
		p.Complete(&payment.Response{
			Result:      "redirect",
			IntentID:    intent.ID,
			RedirectURL: intent.NextActionURL,
		})
	case intent.Successful():
		p.Complete(&payment.Response{Result: "success", IntentID: intent.ID})
	default:
		p.Complete(&payment.Response{
			Result:   "failure",
			IntentID: intent.ID,
			Message:  "the payment was not confirmed",
		})
	}
	return nil
}
