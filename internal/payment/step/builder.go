package step

import (
	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/limiter"
	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/policy"
)

// Deps carries the shared dependencies injected into steps.
type Deps struct {
	Client  api.Client
	Fraud   *policy.Enforcer
	Tokens  TokenService
	Limiter limiter.RateLimiter

	// ReturnURL is where the processor sends customers back after off-site
	// authentication.
	ReturnURL string

	// MinimumAmounts maps a lowercase currency code to the smallest
	// chargeable total in that currency's minor unit.
	MinimumAmounts map[string]int64
}

// Builder assembles the ordered step list the engine runs. The order is
// explicit and fixed; tests may replace it wholesale via Override.
type Builder struct {
	deps     Deps
	override []payment.Step
}

// NewBuilder creates a builder over the given dependencies. The client is
// mandatory; the rest may be nil, disabling the steps that need them.
func NewBuilder(deps Deps) *Builder {
	if deps.Client == nil {
		panic("step builder requires an API client")
	}
	return &Builder{deps: deps}
}

// Override replaces the built list entirely. Intended for tests.
func (b *Builder) Override(steps ...payment.Step) *Builder {
	b.override = steps
	return b
}

// Build returns the steps in execution order.
func (b *Builder) Build() []payment.Step {
	if b.override != nil {
		return b.override
	}
	return []payment.Step{
		NewMetadataStep(),
		NewCustomerDetailsStep(b.deps.Client),
		NewBumpTransactionLimiterStep(b.deps.Limiter),
		NewVerifyFraudTokenStep(b.deps.Fraud),
		NewLoadIntentAfterAuthenticationStep(b.deps.Client),
		NewCheckAttachedIntentSuccessStep(b.deps.Client),
		NewCreateUPEIntentStep(b.deps.Client),
		NewUpdateUPEIntentStep(b.deps.Client),
		NewCompleteWithoutPaymentStep(),
		NewVerifyMinimumAmountStep(b.deps.MinimumAmounts),
		NewStandardPaymentStep(b.deps.Client, b.deps.ReturnURL),
		NewSetupPaymentStep(b.deps.Client),
		NewUpdateSavedPaymentMethodStep(),
		NewSavePaymentMethodStep(b.deps.Tokens),
		NewStoreMetadataStep(),
		NewUpdateOrderStep(),
		NewAddTokenToOrderStep(),
	}
}
