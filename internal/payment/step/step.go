// Package step contains the concrete pipeline steps and the builder
// assembling them into the ordered list the payment engine runs.
//
// Steps communicate exclusively through payment variables; the keys and
// order meta keys below form that contract.
package step

import (
	"context"
	"fmt"

	"github.com/yourorg/payments-gateway/internal/order"
	"github.com/yourorg/payments-gateway/internal/payment"
)

// Payment variable keys written and read by steps.
const (
	VarMetadata        = "metadata"
	VarCustomerID      = "customer_id"
	VarIntentID        = "intent_id"
	VarIntentStatus    = "intent_status"
	VarChargeID        = "charge_id"
	VarPaymentMethodID = "payment_method_id"
	VarSetupIntentID   = "setup_intent_id"
	VarAmount          = "amount"
	VarCurrency        = "currency"
)

// Order meta keys maintained by completion steps.
const (
	MetaIntentID        = "_intent_id"
	MetaChargeID        = "_charge_id"
	MetaCustomerID      = "_customer_id"
	MetaPaymentMetadata = "_payment_metadata"
	MetaTokenLastUsed   = "_payment_token_last_used"
)

// FraudError blocks a payment that a fraud rule flagged.
type FraudError struct {
	Rule string
}

func (e *FraudError) Error() string {
	return "payment blocked by fraud rule: " + e.Rule
}

// MinimumAmountError rejects totals below the processor's minimum
// chargeable amount for a currency.
type MinimumAmountError struct {
	Currency string
	Minimum  int64
}

func (e *MinimumAmountError) Error() string {
	return fmt.Sprintf("order total is below the minimum of %d for %s", e.Minimum, e.Currency)
}

// TokenService creates reusable payment tokens for a user.
type TokenService interface {
	AddTokenForUser(ctx context.Context, userID, instrumentID string) (order.Token, error)
}

// noopStep provides default no-op phases, so concrete steps only implement
// the phases they take part in.
type noopStep struct{}

func (noopStep) CollectData(ctx context.Context, p *payment.Payment) error { return nil }
func (noopStep) Act(ctx context.Context, p *payment.Payment) error         { return nil }
func (noopStep) Complete(ctx context.Context, p *payment.Payment) error    { return nil }

// amountFor resolves the chargeable amount and currency: the order's when
// the payment is order-bound, otherwise the amount/currency variables set
// by the caller (e.g. UPE intent preparation before an order exists).
func amountFor(p *payment.Payment) (int64, string) {
	if o := p.Order(); o != nil {
		return o.Total(), o.Currency()
	}
	amount, _ := p.Var(VarAmount).(int64)
	if amount == 0 {
		if f, ok := p.Var(VarAmount).(float64); ok {
			amount = int64(f)
		}
	}
	return amount, p.StringVar(VarCurrency)
}

// metadataVar reads the metadata variable, tolerating the map[string]any
// form JSON rehydration produces.
func metadataVar(p *payment.Payment) map[string]string {
	switch m := p.Var(VarMetadata).(type) {
	case map[string]string:
		return m
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, v := range m {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}

// recordIntent stores the facts of an intent for later steps and the
// completion stage.
func recordIntent(p *payment.Payment, id, status, paymentMethodID, chargeID string) {
	p.SetVar(VarIntentID, id)
	p.SetVar(VarIntentStatus, status)
	if paymentMethodID != "" {
		p.SetVar(VarPaymentMethodID, paymentMethodID)
	}
	if chargeID != "" {
		p.SetVar(VarChargeID, chargeID)
	}
}
