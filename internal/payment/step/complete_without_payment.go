package step

import (
	"context"

	"github.com/yourorg/payments-gateway/internal/payment"
)

// CompleteWithoutPaymentStep short-circuits runs where no charge is due:
// zero-total orders with nothing to store, and subscription payment method
// changes, which only swap the instrument.
type CompleteWithoutPaymentStep struct {
	noopStep
}

func NewCompleteWithoutPaymentStep() *CompleteWithoutPaymentStep {
	return &CompleteWithoutPaymentStep{}
}

func (s *CompleteWithoutPaymentStep) Name() string { return "complete-without-payment" }

func (s *CompleteWithoutPaymentStep) IsApplicable(p *payment.Payment) bool {
	if p.Is(payment.ChangingSubscriptionPaymentMethod) {
		return true
	}
	o := p.Order()
	return o != nil && o.Total() == 0 && !p.Is(payment.SavePaymentMethodToStore)
}

func (s *CompleteWithoutPaymentStep) Act(ctx context.Context, p *payment.Payment) error {
	p.Complete(&payment.Response{Result: "success", Message: "no payment necessary"})
	return nil
}
