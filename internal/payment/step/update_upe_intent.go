package step

import (
	"context"
	"fmt"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/server/request"
)

// UpdateUPEIntentStep loads the final checkout data onto a prepared intent
// right before client-side confirmation: the actual order total, the
// resolved customer and the full metadata.
type UpdateUPEIntentStep struct {
	noopStep
	client api.Client
}

func NewUpdateUPEIntentStep(client api.Client) *UpdateUPEIntentStep {
	return &UpdateUPEIntentStep{client: client}
}

func (s *UpdateUPEIntentStep) Name() string { return "update-upe-intent" }

func (s *UpdateUPEIntentStep) IsApplicable(p *payment.Payment) bool {
	return s.client != nil &&
		p.Order() != nil &&
		p.IsFlow(payment.UPEProcessPaymentFlow) &&
		p.StringVar(VarIntentID) != ""
}

func (s *UpdateUPEIntentStep) Act(ctx context.Context, p *payment.Payment) error {
	o := p.Order()
	intent, err := s.client.UpdateIntent(ctx, &request.UpdateIntent{
		IntentID:   p.StringVar(VarIntentID),
		Amount:     o.Total(),
		Currency:   o.Currency(),
		CustomerID: p.StringVar(VarCustomerID),
		Metadata:   metadataVar(p),
	})
	if err != nil {
		return fmt.Errorf("updating intent %s: %w", p.StringVar(VarIntentID), err)
	}

	recordIntent(p, intent.ID, intent.Status, intent.PaymentMethodID, intent.ChargeID())
	p.Complete(&payment.Response{
		Result:       "success",
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
	})
	return nil
}
