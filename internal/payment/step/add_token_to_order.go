package step

import (
	"context"

	"github.com/yourorg/payments-gateway/internal/order"
	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/payment/method"
)

// AddTokenToOrderStep links the saved payment token to the order, so
// follow-up charges (renewals, subscriptions) know which instrument to use.
// When the order's newest token is already the one used here, the step skips
// the attach instead of stacking duplicates.
type AddTokenToOrderStep struct {
	noopStep
}

func NewAddTokenToOrderStep() *AddTokenToOrderStep { return &AddTokenToOrderStep{} }

func (s *AddTokenToOrderStep) Name() string { return "add-token-to-order" }

func (s *AddTokenToOrderStep) IsApplicable(p *payment.Payment) bool {
	if p.Order() == nil {
		return false
	}
	m := p.Method()
	if m != nil && m.Type() == method.TypeSaved {
		return true
	}
	// A freshly saved method only becomes a token during completion, so
	// selection also admits runs that intend to save.
	return p.Is(payment.SavePaymentMethodToStore) || p.Is(payment.SavePaymentMethodToPlatform)
}

func (s *AddTokenToOrderStep) Complete(ctx context.Context, p *payment.Payment) error {
	saved, ok := p.Method().(*method.Saved)
	if !ok {
		return nil
	}

	o := p.Order()
	if tokens := o.Tokens(); len(tokens) > 0 && tokens[len(tokens)-1].ID == saved.TokenID {
		return nil
	}

	o.AttachToken(order.Token{ID: saved.TokenID, InstrumentID: saved.PaymentMethodID})
	return nil
}
