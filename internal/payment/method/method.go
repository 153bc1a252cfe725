// Package method models how the payer is paying: a freshly collected
// instrument, a saved token, or a token delegated by a linked checkout
// platform. Each variant knows how to serialize itself for payment storage.
package method

import "fmt"

// Variant type discriminators used in serialized payment data.
const (
	TypeCard           = "card"
	TypeSaved          = "saved"
	TypePlatformLinked = "platform_linked"
)

// Method is a polymorphic descriptor of the payment instrument.
type Method interface {
	// Type returns the serialization discriminator of the variant.
	Type() string

	// InstrumentID returns the remote payment method identifier that can be
	// charged, or "" when the variant has none yet.
	InstrumentID() string

	// Data returns the serialized form of the method.
	Data() map[string]any
}

// Card is a newly collected instrument, identified by the remote payment
// method id created client-side. It has not been tokenized for reuse yet.
type Card struct {
	PaymentMethodID string
}

func (c *Card) Type() string         { return TypeCard }
func (c *Card) InstrumentID() string { return c.PaymentMethodID }
func (c *Card) Data() map[string]any {
	return map[string]any{
		"type": TypeCard,
		"id":   c.PaymentMethodID,
	}
}

// Saved is an existing stored token, already charge-capable.
type Saved struct {
	TokenID         string
	PaymentMethodID string
}

func (s *Saved) Type() string         { return TypeSaved }
func (s *Saved) InstrumentID() string { return s.PaymentMethodID }
func (s *Saved) Data() map[string]any {
	return map[string]any{
		"type":  TypeSaved,
		"token": s.TokenID,
		"id":    s.PaymentMethodID,
	}
}

// PlatformLinked is a token with delegated consent to a second checkout
// platform, charged on behalf of the platform customer.
type PlatformLinked struct {
	PaymentMethodID    string
	PlatformCustomerID string
}

func (p *PlatformLinked) Type() string         { return TypePlatformLinked }
func (p *PlatformLinked) InstrumentID() string { return p.PaymentMethodID }
func (p *PlatformLinked) Data() map[string]any {
	return map[string]any{
		"type":              TypePlatformLinked,
		"id":                p.PaymentMethodID,
		"platform_customer": p.PlatformCustomerID,
	}
}

// FromData rehydrates a method from its serialized form.
func FromData(data map[string]any) (Method, error) {
	if data == nil {
		return nil, fmt.Errorf("method: no data to load")
	}

	str := func(key string) string {
		s, _ := data[key].(string)
		return s
	}

	switch str("type") {
	case TypeCard:
		return &Card{PaymentMethodID: str("id")}, nil
	case TypeSaved:
		return &Saved{TokenID: str("token"), PaymentMethodID: str("id")}, nil
	case TypePlatformLinked:
		return &PlatformLinked{PaymentMethodID: str("id"), PlatformCustomerID: str("platform_customer")}, nil
	default:
		return nil, fmt.Errorf("method: unknown payment method type %q", str("type"))
	}
}
