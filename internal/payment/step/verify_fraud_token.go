package step

import (
	"context"

	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/payment/method"
	"github.com/yourorg/payments-gateway/internal/policy"
)

// VerifyFraudTokenStep evaluates the configured fraud rules against the
// attempt before any money moves. Merchant-initiated payments skip the
// check: there is no shopper present to challenge.
type VerifyFraudTokenStep struct {
	noopStep
	enforcer *policy.Enforcer
}

func NewVerifyFraudTokenStep(enforcer *policy.Enforcer) *VerifyFraudTokenStep {
	return &VerifyFraudTokenStep{enforcer: enforcer}
}

func (s *VerifyFraudTokenStep) Name() string { return "verify-fraud-token" }

func (s *VerifyFraudTokenStep) IsApplicable(p *payment.Payment) bool {
	if s.enforcer == nil || p.Order() == nil {
		return false
	}
	if p.Is(payment.MerchantInitiated) {
		return false
	}
	return p.IsFlow(payment.StandardFlow) || p.IsFlow(payment.UPEProcessPaymentFlow)
}

func (s *VerifyFraudTokenStep) Act(ctx context.Context, p *payment.Payment) error {
	o := p.Order()
	savedMethod := false
	if m := p.Method(); m != nil {
		savedMethod = m.Type() == method.TypeSaved
	}

	decision, err := s.enforcer.Evaluate(map[string]any{
		"amount":       float64(o.Total()),
		"currency":     o.Currency(),
		"recurring":    p.Is(payment.Recurring),
		"saved_method": savedMethod,
	})
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &FraudError{Rule: decision.RuleName}
	}
	return nil
}
