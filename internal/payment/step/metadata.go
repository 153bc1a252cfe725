package step

import (
	"context"
	"strconv"

	"github.com/yourorg/payments-gateway/internal/payment"
)

// MetadataStep collects the descriptive metadata attached to every intent:
// who paid, for which order, and what kind of payment it was. It runs first
// so every later step can rely on the metadata variable.
type MetadataStep struct {
	noopStep
}

func NewMetadataStep() *MetadataStep { return &MetadataStep{} }

func (s *MetadataStep) Name() string { return "metadata" }

func (s *MetadataStep) IsApplicable(p *payment.Payment) bool {
	return p.Order() != nil
}

func (s *MetadataStep) CollectData(ctx context.Context, p *payment.Payment) error {
	o := p.Order()
	paymentType := "single"
	if p.Is(payment.Recurring) {
		paymentType = "recurring"
	}
	p.SetVar(VarMetadata, map[string]string{
		"customer_name":  o.BillingName(),
		"customer_email": o.BillingEmail(),
		"order_id":       o.ID(),
		"order_number":   o.Number(),
		"order_total":    strconv.FormatInt(o.Total(), 10),
		"payment_type":   paymentType,
	})
	return nil
}
