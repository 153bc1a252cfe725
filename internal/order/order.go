// Package order defines the order capability consumed by the payment
// pipeline and the REST controllers: billing identity, totals, metadata and
// status transitions. The e-commerce system owning the orders lives behind
// these interfaces.
package order

import "context"

// Token is a stored, reusable payment instrument attached to an order.
type Token struct {
	ID           string `json:"id"`
	InstrumentID string `json:"instrument_id"`
}

// Order exposes the subset of an order the payment process needs.
type Order interface {
	ID() string
	Number() string

	BillingName() string
	BillingEmail() string
	UserID() string

	// Total and TotalRefunded are amounts in the smallest currency unit.
	Total() int64
	TotalRefunded() int64
	Currency() string

	Meta(key string) (string, bool)
	SetMeta(key, value string)

	Status() string
	SetStatus(status string)

	// Tokens returns attached payment tokens, oldest first.
	Tokens() []Token
	AttachToken(t Token)

	Save(ctx context.Context) error
}

// Service looks orders up by id.
type Service interface {
	Get(ctx context.Context, id string) (Order, error)
}
