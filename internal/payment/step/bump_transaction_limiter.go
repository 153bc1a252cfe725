package step

import (
	"context"

	"github.com/yourorg/payments-gateway/internal/limiter"
	"github.com/yourorg/payments-gateway/internal/payment"
)

// RateLimitError aborts a checkout for a shopper whose recent attempts kept
// failing. The message is intentionally vague: the shopper may be probing
// card numbers.
type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return "Your payment was not processed."
}

// BumpTransactionLimiterStep refuses checkouts for shoppers over the failed
// attempt threshold, and registers fresh failures during completion.
// Merchant-initiated payments skip it: renewals are not probing attacks.
type BumpTransactionLimiterStep struct {
	noopStep
	limiter limiter.RateLimiter
}

func NewBumpTransactionLimiterStep(l limiter.RateLimiter) *BumpTransactionLimiterStep {
	return &BumpTransactionLimiterStep{limiter: l}
}

func (s *BumpTransactionLimiterStep) Name() string { return "bump-transaction-limiter" }

func (s *BumpTransactionLimiterStep) IsApplicable(p *payment.Payment) bool {
	return s.limiter != nil && p.Order() != nil && !p.Is(payment.MerchantInitiated)
}

func (s *BumpTransactionLimiterStep) Act(ctx context.Context, p *payment.Payment) error {
	limited, err := s.limiter.IsLimited(ctx, limiterKey(p))
	if err != nil {
		return err
	}
	if limited {
		return &RateLimitError{}
	}
	return nil
}

func (s *BumpTransactionLimiterStep) Complete(ctx context.Context, p *payment.Payment) error {
	resp := p.Response()
	if resp == nil || resp.Result != "failure" {
		return nil
	}
	return s.limiter.Bump(ctx, limiterKey(p))
}

// limiterKey identifies the shopper: the user when known, the order for
// guest checkouts.
func limiterKey(p *payment.Payment) string {
	if user := p.Order().UserID(); user != "" {
		return user
	}
	return "order:" + p.Order().ID()
}
