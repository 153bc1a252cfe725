package step

import (
	"context"
	"strings"

	"github.com/yourorg/payments-gateway/internal/payment"
)

// VerifyMinimumAmountStep rejects totals the processor would refuse anyway,
// before an intent is ever created.
type VerifyMinimumAmountStep struct {
	noopStep
	minimums map[string]int64
}

func NewVerifyMinimumAmountStep(minimums map[string]int64) *VerifyMinimumAmountStep {
	return &VerifyMinimumAmountStep{minimums: minimums}
}

func (s *VerifyMinimumAmountStep) Name() string { return "verify-minimum-amount" }

func (s *VerifyMinimumAmountStep) IsApplicable(p *payment.Payment) bool {
	return len(s.minimums) > 0 && p.Order() != nil && p.Order().Total() > 0
}

func (s *VerifyMinimumAmountStep) Act(ctx context.Context, p *payment.Payment) error {
	o := p.Order()
	currency := strings.ToLower(o.Currency())
	min, ok := s.minimums[currency]
	if ok && o.Total() < min {
		return &MinimumAmountError{Currency: currency, Minimum: min}
	}
	return nil
}
