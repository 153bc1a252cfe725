package step

import (
	"context"
	"fmt"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/payment/method"
)

// SavePaymentMethodStep turns the instrument of a successful payment into a
// stored token for the order's user, and switches the payment over to the
// saved method so downstream bookkeeping sees the token.
type SavePaymentMethodStep struct {
	noopStep
	tokens TokenService
}

func NewSavePaymentMethodStep(tokens TokenService) *SavePaymentMethodStep {
	return &SavePaymentMethodStep{tokens: tokens}
}

func (s *SavePaymentMethodStep) Name() string { return "save-payment-method" }

func (s *SavePaymentMethodStep) IsApplicable(p *payment.Payment) bool {
	if s.tokens == nil || p.Order() == nil {
		return false
	}
	return p.Is(payment.SavePaymentMethodToStore) || p.Is(payment.SavePaymentMethodToPlatform)
}

func (s *SavePaymentMethodStep) Complete(ctx context.Context, p *payment.Payment) error {
	// Saving only makes sense once the processor accepted the instrument.
	if !api.Capturable(p.StringVar(VarIntentStatus)) {
		return nil
	}
	if m := p.Method(); m != nil && m.Type() == method.TypeSaved {
		return nil
	}

	instrumentID := p.StringVar(VarPaymentMethodID)
	if instrumentID == "" {
		if m := p.Method(); m != nil {
			instrumentID = m.InstrumentID()
		}
	}
	if instrumentID == "" {
		return nil
	}

	token, err := s.tokens.AddTokenForUser(ctx, p.Order().UserID(), instrumentID)
	if err != nil {
		return fmt.Errorf("saving payment method for user %s: %w", p.Order().UserID(), err)
	}

	p.SetMethod(&method.Saved{TokenID: token.ID, PaymentMethodID: token.InstrumentID})
	return nil
}
