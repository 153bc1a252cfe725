package step

import (
	"context"
	"errors"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/payment"
)

// CheckAttachedIntentSuccessStep guards against double charging on checkout
// re-submission: when the order already carries a successful intent, the run
// completes with it instead of creating a new charge.
type CheckAttachedIntentSuccessStep struct {
	noopStep
	client api.Client
}

func NewCheckAttachedIntentSuccessStep(client api.Client) *CheckAttachedIntentSuccessStep {
	return &CheckAttachedIntentSuccessStep{client: client}
}

func (s *CheckAttachedIntentSuccessStep) Name() string { return "check-attached-intent-success" }

func (s *CheckAttachedIntentSuccessStep) IsApplicable(p *payment.Payment) bool {
	if s.client == nil || p.Order() == nil || !p.IsFlow(payment.StandardFlow) {
		return false
	}
	id, ok := p.Order().Meta(MetaIntentID)
	return ok && id != ""
}

func (s *CheckAttachedIntentSuccessStep) Act(ctx context.Context, p *payment.Payment) error {
	intentID, _ := p.Order().Meta(MetaIntentID)
	intent, err := s.client.GetIntent(ctx, intentID)
	if err != nil {
		// A stale or unknown attached intent is not fatal, the pipeline
		// simply charges anew. Connectivity problems still abort.
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.HTTPStatus == 404 {
			return nil
		}
		return err
	}

	if !intent.Successful() {
		return nil
	}

	recordIntent(p, intent.ID, intent.Status, intent.PaymentMethodID, intent.ChargeID())
	p.Complete(&payment.Response{Result: "success", IntentID: intent.ID})
	return nil
}
