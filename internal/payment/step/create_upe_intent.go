package step

import (
	"context"
	"fmt"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/server/request"
)

// CreateUPEIntentStep prepares an unconfirmed intent for the unified payment
// element, before checkout is submitted. The client secret goes back to the
// browser; confirmation happens client-side later.
type CreateUPEIntentStep struct {
	noopStep
	client api.Client
}

func NewCreateUPEIntentStep(client api.Client) *CreateUPEIntentStep {
	return &CreateUPEIntentStep{client: client}
}

func (s *CreateUPEIntentStep) Name() string { return "create-upe-intent" }

func (s *CreateUPEIntentStep) IsApplicable(p *payment.Payment) bool {
	return s.client != nil && p.IsFlow(payment.UPEPrepareIntentFlow)
}

func (s *CreateUPEIntentStep) Act(ctx context.Context, p *payment.Payment) error {
	amount, currency := amountFor(p)
	captureMethod := request.CaptureAutomatic
	if p.Is(payment.ManualCapture) {
		captureMethod = request.CaptureManual
	}

	intent, err := s.client.CreateIntent(ctx, &request.CreateIntent{
		Amount:        amount,
		Currency:      currency,
		CaptureMethod: captureMethod,
		Metadata:      metadataVar(p),
	})
	if err != nil {
		return fmt.Errorf("preparing intent: %w", err)
	}

	recordIntent(p, intent.ID, intent.Status, "", "")
	p.Complete(&payment.Response{
		Result:       "success",
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
	})
	return nil
}
