package lifecycle

// CheckoutInput starts a payment from collected checkout data.
type CheckoutInput struct {
	PaymentMethodID string
	CustomerID      string
	Amount          int64
	Currency        string
	ManualCapture   bool
}

func (CheckoutInput) ID() string { return "checkout" }

// AuthenticationInput resumes a payment after the customer returned from an
// off-site authentication redirect.
type AuthenticationInput struct {
	IntentID string
}

func (AuthenticationInput) ID() string { return "authentication" }

// CaptureInput resumes an authorized payment when the merchant captures it.
type CaptureInput struct {
	AmountToCapture int64
}

func (CaptureInput) ID() string { return "capture" }
