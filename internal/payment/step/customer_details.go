package step

import (
	"context"
	"fmt"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/server/request"
)

// CustomerDetailsStep resolves the remote customer the payment belongs to,
// creating one on first contact and remembering it in the order meta.
type CustomerDetailsStep struct {
	noopStep
	client api.Client
}

func NewCustomerDetailsStep(client api.Client) *CustomerDetailsStep {
	return &CustomerDetailsStep{client: client}
}

func (s *CustomerDetailsStep) Name() string { return "customer-details" }

func (s *CustomerDetailsStep) IsApplicable(p *payment.Payment) bool {
	return s.client != nil && p.Order() != nil
}

func (s *CustomerDetailsStep) CollectData(ctx context.Context, p *payment.Payment) error {
	if id, ok := p.Order().Meta(MetaCustomerID); ok && id != "" {
		p.SetVar(VarCustomerID, id)
	}
	return nil
}

func (s *CustomerDetailsStep) Act(ctx context.Context, p *payment.Payment) error {
	if p.StringVar(VarCustomerID) != "" {
		return nil
	}

	o := p.Order()
	customer, err := s.client.CreateCustomer(ctx, &request.CreateCustomer{
		Name:  o.BillingName(),
		Email: o.BillingEmail(),
	})
	if err != nil {
		return fmt.Errorf("creating customer for order %s: %w", o.ID(), err)
	}

	p.SetVar(VarCustomerID, customer.ID)
	o.SetMeta(MetaCustomerID, customer.ID)
	return nil
}
