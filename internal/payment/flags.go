package payment

// Flag marks a boolean property of a payment attempt. Flags are independent
// bits, not mutually exclusive states; any subset may be active at once.
type Flag int

const (
	// MerchantInitiated indicates the payment was triggered by the merchant
	// (subscription renewal, admin order), not by a customer action on the site.
	MerchantInitiated Flag = 1 << iota

	// ManualCapture indicates funds should be authorized now and captured
	// later. Without the flag, capture is automatic.
	ManualCapture

	// Recurring indicates the payment is part of a recurring series.
	Recurring

	// ChangingSubscriptionPaymentMethod indicates the run only swaps the
	// payment method of a subscription and no charge should be attempted.
	ChangingSubscriptionPaymentMethod

	// SavePaymentMethodToStore indicates the instrument should be stored as
	// a reusable token once the payment succeeds.
	SavePaymentMethodToStore

	// SavePaymentMethodToPlatform indicates the instrument should also be
	// saved to the linked checkout platform.
	SavePaymentMethodToPlatform
)

// SetFlag turns a flag on. Other flags are unaffected.
func (p *Payment) SetFlag(f Flag) {
	p.flags |= f
}

// UnsetFlag turns a flag off. Other flags are unaffected.
func (p *Payment) UnsetFlag(f Flag) {
	p.flags &^= f
}

// Is reports whether a flag is currently set.
func (p *Payment) Is(f Flag) bool {
	return p.flags&f != 0
}
