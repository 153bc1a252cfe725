// Package payment implements the payment processing pipeline: a mutable,
// serializable context for one payment attempt, and the engine that runs an
// ordered list of steps against it in three strict stages.
//
// The engine guarantees at-most-once charging: once any step sets the
// terminal response during the action stage, no later step acts, but every
// applicable step still completes so that bookkeeping (tokens, metadata,
// order updates) always runs.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yourorg/payments-gateway/internal/metrics"
	"github.com/yourorg/payments-gateway/internal/order"
	"github.com/yourorg/payments-gateway/internal/payment/method"
)

// Step is one unit of pipeline logic. Steps are stateless and constructed
// fresh per processing run; all durable state lives in the Payment.
type Step interface {
	// Name identifies the step in audit logs and metrics.
	Name() string

	// IsApplicable reports whether the step takes part in the current run.
	IsApplicable(p *Payment) bool

	// CollectData lets the step gather variables other steps depend on. It
	// runs during the selection pass, so later steps' applicability can use
	// data collected here.
	CollectData(ctx context.Context, p *Payment) error

	// Act performs the step's main work. Setting a terminal response stops
	// the action stage for all later steps.
	Act(ctx context.Context, p *Payment) error

	// Complete performs bookkeeping after the action stage. It runs for
	// every applicable step, even those skipped during the action stage.
	Complete(ctx context.Context, p *Payment) error
}

// Storage persists serialized payment state keyed by the payment id, which
// doubles as the idempotency-relevant identifier across redirects.
type Storage interface {
	Store(ctx context.Context, id string, data Data) error
	Load(ctx context.Context, id string) (Data, error)
}

// Response is the terminal result of a pipeline run, consumable by the REST
// or checkout controller layer.
type Response struct {
	// Result is one of "success", "failure" or "redirect".
	Result string `json:"result"`

	// IntentID is the remote intent the run ended on, if any.
	IntentID string `json:"intent_id,omitempty"`

	// RedirectURL instructs the caller to send the customer off-site for
	// authentication; processing resumes in a later request.
	RedirectURL string `json:"redirect_url,omitempty"`

	// ClientSecret lets client-side elements confirm a prepared intent.
	ClientSecret string `json:"client_secret,omitempty"`

	// Message carries a short, caller-facing note on failure responses.
	Message string `json:"message,omitempty"`
}

// Data is the serialized form of a payment, as persisted by Storage.
type Data struct {
	Flags         int            `json:"flags"`
	PaymentMethod map[string]any `json:"payment_method"`
	Vars          map[string]any `json:"vars"`
	Logs          []VarChange    `json:"logs"`
}

// Payment is the context of one payment attempt and the engine processing it.
type Payment struct {
	id      string
	order   order.Order
	storage Storage
	steps   []Step
	log     *slog.Logger

	flags       Flag
	flow        Flow
	vars        map[string]any
	varLog      []VarChange
	method      method.Method
	response    *Response
	stage       Stage
	currentStep string
}

// New creates a payment for the given id. The order may be nil for payments
// not bound to an order (e.g. intent preparation before checkout).
func New(id string, ord order.Order, storage Storage, steps []Step, log *slog.Logger) *Payment {
	if storage == nil {
		panic("payment storage cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Payment{
		id:      id,
		order:   ord,
		storage: storage,
		steps:   steps,
		log:     log,
		vars:    make(map[string]any),
		stage:   StageInitialization,
	}
}

// ID returns the payment id used for storage.
func (p *Payment) ID() string { return p.id }

// Order returns the order the payment belongs to, or nil.
func (p *Payment) Order() order.Order { return p.order }

// SetMethod changes the payment method used for the payment.
func (p *Payment) SetMethod(m method.Method) { p.method = m }

// Method returns the active payment method, or nil.
func (p *Payment) Method() method.Method { return p.method }

// Complete sets the terminal response, ending the action stage. Completion
// steps still run after this call.
func (p *Payment) Complete(resp *Response) { p.response = resp }

// Response returns the terminal response, or nil before any step completed
// the payment.
func (p *Payment) Response() *Response { return p.response }

// LoadData rehydrates the payment from previously stored data, e.g. when a
// post-redirect request resumes the logical transaction.
func (p *Payment) LoadData(data Data) error {
	p.flags = Flag(data.Flags)
	if data.Vars != nil {
		p.vars = data.Vars
	}
	if len(data.Logs) > 0 {
		p.varLog = data.Logs
	}
	if data.PaymentMethod != nil {
		m, err := method.FromData(data.PaymentMethod)
		if err != nil {
			return fmt.Errorf("payment: loading stored data: %w", err)
		}
		p.method = m
	}
	return nil
}

// Data returns the serialized payment state, ready to store.
func (p *Payment) Data() Data {
	var pm map[string]any
	if p.method != nil {
		pm = p.method.Data()
	}
	return Data{
		Flags:         int(p.flags),
		PaymentMethod: pm,
		Vars:          p.vars,
		Logs:          p.varLog,
	}
}

// Save persists the payment state in storage.
func (p *Payment) Save(ctx context.Context) error {
	return p.storage.Store(ctx, p.id, p.Data())
}

// Process runs the pipeline and returns the terminal response.
//
// Steps run in three passes over the same filtered list: selection with
// immediate data collection, actions until a response is set, and completion
// for every selected step. Step errors propagate to the caller after the
// current stage aborts; retries are the caller's concern, via a fresh
// Process call on a rehydrated payment.
func (p *Payment) Process(ctx context.Context) (*Response, error) {
	if p.flow == "" {
		return nil, &ConfigurationError{Reason: "processing payments requires a flow to be set"}
	}

	tracer := otel.Tracer("payment")
	ctx, span := tracer.Start(ctx, "Payment.Process")
	span.SetAttributes(
		attribute.String("payment.id", p.id),
		attribute.String("payment.flow", string(p.flow)),
	)
	defer span.End()

	// Clear any previous response.
	p.response = nil

	p.stage = StagePreparation
	var working []Step
	for _, s := range p.steps {
		p.currentStep = s.Name()
		if !s.IsApplicable(p) {
			continue
		}

		// Collection happens inside the selection loop: follow-up steps may
		// depend on data collected by previous ones.
		if err := s.CollectData(ctx, p); err != nil {
			metrics.PipelineRuns.WithLabelValues(string(p.flow), "error").Inc()
			return nil, fmt.Errorf("payment: step %s collecting data: %w", s.Name(), err)
		}

		working = append(working, s)
	}

	p.stage = StageAction
	for _, s := range working {
		p.currentStep = s.Name()
		start := time.Now()
		err := s.Act(ctx, p)
		metrics.StepDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.PipelineRuns.WithLabelValues(string(p.flow), "error").Inc()
			return nil, fmt.Errorf("payment: step %s acting: %w", s.Name(), err)
		}

		// Once there is a response, there should be no further action.
		if p.response != nil {
			p.log.InfoContext(ctx, "payment action stage completed",
				slog.String("payment_id", p.id),
				slog.String("step", s.Name()),
				slog.String("result", p.response.Result))
			break
		}
	}

	p.stage = StageCompletion
	for _, s := range working {
		p.currentStep = s.Name()
		if err := s.Complete(ctx, p); err != nil {
			metrics.PipelineRuns.WithLabelValues(string(p.flow), "error").Inc()
			return nil, fmt.Errorf("payment: step %s completing: %w", s.Name(), err)
		}
	}

	// Whatever was updated during the process, save the order.
	if p.order != nil {
		if err := p.order.Save(ctx); err != nil {
			return nil, fmt.Errorf("payment: saving order %s: %w", p.order.ID(), err)
		}
	}
	if err := p.Save(ctx); err != nil {
		return nil, fmt.Errorf("payment: persisting state: %w", err)
	}

	if p.response == nil {
		metrics.PipelineRuns.WithLabelValues(string(p.flow), "empty").Inc()
		return nil, ErrNoResponse
	}

	metrics.PipelineRuns.WithLabelValues(string(p.flow), p.response.Result).Inc()
	return p.response, nil
}
