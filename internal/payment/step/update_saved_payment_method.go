package step

import (
	"context"
	"strconv"
	"time"

	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/payment/method"
)

// UpdateSavedPaymentMethodStep records the use of an already saved method on
// the order, so stale tokens can be found and expired later.
type UpdateSavedPaymentMethodStep struct {
	noopStep

	// now is replaceable in tests.
	now func() time.Time
}

func NewUpdateSavedPaymentMethodStep() *UpdateSavedPaymentMethodStep {
	return &UpdateSavedPaymentMethodStep{now: time.Now}
}

func (s *UpdateSavedPaymentMethodStep) Name() string { return "update-saved-payment-method" }

func (s *UpdateSavedPaymentMethodStep) IsApplicable(p *payment.Payment) bool {
	if p.Order() == nil {
		return false
	}
	m := p.Method()
	return m != nil && m.Type() == method.TypeSaved
}

func (s *UpdateSavedPaymentMethodStep) Complete(ctx context.Context, p *payment.Payment) error {
	p.Order().SetMeta(MetaTokenLastUsed, strconv.FormatInt(s.now().Unix(), 10))
	return nil
}
