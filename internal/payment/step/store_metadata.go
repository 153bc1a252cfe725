package step

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yourorg/payments-gateway/internal/payment"
)

// StoreMetadataStep persists the intent metadata on the order, so support
// tooling can see exactly what was sent to the processor.
type StoreMetadataStep struct {
	noopStep
}

func NewStoreMetadataStep() *StoreMetadataStep { return &StoreMetadataStep{} }

func (s *StoreMetadataStep) Name() string { return "store-metadata" }

func (s *StoreMetadataStep) IsApplicable(p *payment.Payment) bool {
	return p.Order() != nil
}

func (s *StoreMetadataStep) Complete(ctx context.Context, p *payment.Payment) error {
	meta := metadataVar(p)
	if len(meta) == 0 {
		return nil
	}
	encoded, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding payment metadata: %w", err)
	}
	p.Order().SetMeta(MetaPaymentMetadata, string(encoded))
	return nil
}
