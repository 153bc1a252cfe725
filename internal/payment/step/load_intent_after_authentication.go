package step

import (
	"context"
	"fmt"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/payment"
)

// LoadIntentAfterAuthenticationStep resumes a payment after the customer
// returns from off-site authentication: it reloads the stored intent and
// settles the run based on where the intent ended up.
type LoadIntentAfterAuthenticationStep struct {
	noopStep
	client api.Client
}

func NewLoadIntentAfterAuthenticationStep(client api.Client) *LoadIntentAfterAuthenticationStep {
	return &LoadIntentAfterAuthenticationStep{client: client}
}

func (s *LoadIntentAfterAuthenticationStep) Name() string { return "load-intent-after-authentication" }

func (s *LoadIntentAfterAuthenticationStep) IsApplicable(p *payment.Payment) bool {
	if s.client == nil || p.StringVar(VarIntentID) == "" {
		return false
	}
	return p.IsFlow(payment.PostCheckoutRedirectFlow) || p.IsFlow(payment.UPEProcessRedirectFlow)
}

func (s *LoadIntentAfterAuthenticationStep) Act(ctx context.Context, p *payment.Payment) error {
	intentID := p.StringVar(VarIntentID)
	intent, err := s.client.GetIntent(ctx, intentID)
	if err != nil {
		return fmt.Errorf("loading intent %s after authentication: %w", intentID, err)
	}

	recordIntent(p, intent.ID, intent.Status, intent.PaymentMethodID, intent.ChargeID())

	if intent.Successful() {
		p.Complete(&payment.Response{Result: "success", IntentID: intent.ID})
		return nil
	}

	p.Complete(&payment.Response{
		Result:   "failure",
		IntentID: intent.ID,
		Message:  "authentication was not completed",
	})
	return nil
}
