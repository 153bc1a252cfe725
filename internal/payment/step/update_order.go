package step

import (
	"context"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/payment"
)

// UpdateOrderStep reflects the outcome of the run onto the order: intent and
// charge references, and the order status matching the intent status.
type UpdateOrderStep struct {
	noopStep
}

func NewUpdateOrderStep() *UpdateOrderStep { return &UpdateOrderStep{} }

func (s *UpdateOrderStep) Name() string { return "update-order" }

func (s *UpdateOrderStep) IsApplicable(p *payment.Payment) bool {
	return p.Order() != nil
}

func (s *UpdateOrderStep) Complete(ctx context.Context, p *payment.Payment) error {
	o := p.Order()
	if id := p.StringVar(VarIntentID); id != "" {
		o.SetMeta(MetaIntentID, id)
	}
	if id := p.StringVar(VarChargeID); id != "" {
		o.SetMeta(MetaChargeID, id)
	}

	resp := p.Response()
	if resp == nil {
		return nil
	}

	intentStatus := p.StringVar(VarIntentStatus)
	switch {
	case resp.Result == "failure":
		o.SetStatus("failed")
	case resp.Result == "redirect":
		// The outcome is unknown until the customer returns.
	case intentStatus == api.IntentRequiresCapture:
		o.SetStatus("on-hold")
	case resp.Result == "success" && (intentStatus == "" || api.Capturable(intentStatus)):
		// An unconfirmed intent (e.g. a UPE update awaiting client-side
		// confirmation) leaves the order untouched.
		o.SetStatus("processing")
	}
	return nil
}
