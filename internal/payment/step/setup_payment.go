package step

import (
	"context"
	"fmt"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/server/request"
)

// SetupPaymentStep stores an instrument without charging it, via a setup
// intent. Used for zero-total orders that still need a reusable method, e.g.
// free trials of a subscription.
type SetupPaymentStep struct {
	noopStep
	client api.Client
}

func NewSetupPaymentStep(client api.Client) *SetupPaymentStep {
	return &SetupPaymentStep{client: client}
}

func (s *SetupPaymentStep) Name() string { return "setup-payment" }

func (s *SetupPaymentStep) IsApplicable(p *payment.Payment) bool {
	return s.client != nil &&
		p.Order() != nil &&
		p.Order().Total() == 0 &&
		p.Is(payment.SavePaymentMethodToStore) &&
		p.Method() != nil
}

func (s *SetupPaymentStep) Act(ctx context.Context, p *payment.Payment) error {
	si, err := s.client.CreateSetupIntent(ctx, &request.CreateSetupIntent{
		CustomerID:      p.StringVar(VarCustomerID),
		PaymentMethodID: p.Method().InstrumentID(),
		Confirm:         true,
	})
	if err != nil {
		return fmt.Errorf("setting up payment method: %w", err)
	}

	p.SetVar(VarSetupIntentID, si.ID)
	p.SetVar(VarIntentStatus, si.Status)
	if si.PaymentMethodID != "" {
		p.SetVar(VarPaymentMethodID, si.PaymentMethodID)
	}
	p.Complete(&payment.Response{Result: "success", IntentID: si.ID})
	return nil
}
