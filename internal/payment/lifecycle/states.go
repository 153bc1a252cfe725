// Package lifecycle models the order payment lifecycle as a state machine:
// checkout data is verified, an intent is created and confirmed, and the
// payment either captures, fails, or suspends awaiting an external event
// (authentication redirect, merchant-initiated capture).
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/server/request"
	"github.com/yourorg/payments-gateway/internal/statemachine"
)

// State ids of the order payment machine.
const (
	StateInitial       = "initial"
	StatePrepared      = "prepared"
	StateAwaitingAuth  = "awaiting_authentication"
	StateAuthorized    = "authorized"
	StateCaptured      = "captured"
	StateFailed        = "failed"
	MachineID          = "order_payment"
	keyAmount          = "amount"
	keyCurrency        = "currency"
	keyPaymentMethod   = "payment_method"
	keyManualCapture   = "manual_capture"
	keyCustomer        = "customer"
	keyIntent          = "intent_id"
	keyFailureReason   = "failure_reason"
)

// Transitions is the adjacency table of the order payment machine.
var Transitions = statemachine.Transitions{
	StateInitial:      {StatePrepared, StateFailed},
	StatePrepared:     {StateAuthorized, StateAwaitingAuth, StateCaptured, StateFailed},
	StateAwaitingAuth: {StateAuthorized, StateCaptured, StateFailed},
	StateAuthorized:   {StateCaptured, StateFailed},
	StateCaptured:     {},
	StateFailed:       {},
}

// NewMachine assembles an order payment machine over the given client.
func NewMachine(client api.Client) *statemachine.Machine {
	return statemachine.New(MachineID, Transitions,
		&initialState{},
		&preparedState{client: client},
		&awaitingAuthState{client: client},
		&authorizedState{client: client},
		&capturedState{},
		&failedState{},
	)
}

// InitialState returns the state new entities start from.
func InitialState() statemachine.State { return &initialState{} }

func fail(e *statemachine.Entity, reason string) (statemachine.State, error) {
	if err := e.Set(keyFailureReason, reason); err != nil {
		return nil, err
	}
	return &failedState{}, nil
}

// intAt reads an integer entity value, tolerating the float64 form JSON
// rehydration produces.
func intAt(e *statemachine.Entity, key string) int64 {
	switch v := e.Get(key).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func stringAt(e *statemachine.Entity, key string) string {
	s, _ := e.Get(key).(string)
	return s
}

type initialState struct{}

func (initialState) ID() string              { return StateInitial }
func (initialState) Kind() statemachine.Kind { return statemachine.KindOrdinary }

func (initialState) Act(ctx context.Context, e *statemachine.Entity, in statemachine.Input) (statemachine.State, error) {
	checkout, ok := in.(CheckoutInput)
	if !ok {
		return nil, fmt.Errorf("initial state requires a checkout input, got %T", in)
	}
	if checkout.Amount <= 0 {
		return fail(e, "nothing to charge")
	}
	if checkout.PaymentMethodID == "" {
		return fail(e, "no payment method provided")
	}

	for key, value := range map[string]any{
		keyAmount:        checkout.Amount,
		keyCurrency:      checkout.Currency,
		keyPaymentMethod: checkout.PaymentMethodID,
		keyManualCapture: checkout.ManualCapture,
		keyCustomer:      checkout.CustomerID,
	} {
		if err := e.Set(key, value); err != nil {
			return nil, err
		}
	}
	return &preparedState{}, nil
}

type preparedState struct {
	client api.Client
}

func (preparedState) ID() string              { return StatePrepared }
func (preparedState) Kind() statemachine.Kind { return statemachine.KindOrdinary }

func (s preparedState) Act(ctx context.Context, e *statemachine.Entity, in statemachine.Input) (statemachine.State, error) {
	captureMethod := request.CaptureAutomatic
	if manual, _ := e.Get(keyManualCapture).(bool); manual {
		captureMethod = request.CaptureManual
	}

	intent, err := s.client.CreateIntent(ctx, &request.CreateIntent{
		Amount:          intAt(e, keyAmount),
		Currency:        stringAt(e, keyCurrency),
		PaymentMethodID: stringAt(e, keyPaymentMethod),
		CustomerID:      stringAt(e, keyCustomer),
		CaptureMethod:   captureMethod,
		Confirm:         true,
		Metadata:        map[string]string{"order_id": e.OrderID()},
	})
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return fail(e, apiErr.Message)
		}
		return nil, err
	}

	if err := e.Set(keyIntent, intent.ID); err != nil {
		return nil, err
	}
	return nextForIntent(e, intent, s.client)
}

// nextForIntent maps an intent status to the machine state representing it.
func nextForIntent(e *statemachine.Entity, intent *api.Intent, client api.Client) (statemachine.State, error) {
	switch intent.Status {
	case api.IntentSucceeded:
		return &capturedState{}, nil
	case api.IntentRequiresCapture:
		return &authorizedState{client: client}, nil
	case api.IntentRequiresAction:
		return &awaitingAuthState{client: client}, nil
	default:
		return fail(e, "intent ended in status "+intent.Status)
	}
}

type awaitingAuthState struct {
	client api.Client
}

func (awaitingAuthState) ID() string              { return StateAwaitingAuth }
func (awaitingAuthState) Kind() statemachine.Kind { return statemachine.KindAsync }

func (s awaitingAuthState) Act(ctx context.Context, e *statemachine.Entity, in statemachine.Input) (statemachine.State, error) {
	auth, ok := in.(AuthenticationInput)
	if !ok {
		return nil, fmt.Errorf("awaiting authentication requires an authentication input, got %T", in)
	}

	intentID := auth.IntentID
	if intentID == "" {
		intentID = stringAt(e, keyIntent)
	}
	intent, err := s.client.GetIntent(ctx, intentID)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return fail(e, apiErr.Message)
		}
		return nil, err
	}
	if intent.Status == api.IntentRequiresAction {
		return fail(e, "authentication was not completed")
	}
	return nextForIntent(e, intent, s.client)
}

type authorizedState struct {
	client api.Client
}

func (authorizedState) ID() string { return StateAuthorized }

// Authorized payments wait for an explicit capture input, so the state
// suspends the machine.
func (authorizedState) Kind() statemachine.Kind { return statemachine.KindAsync }

func (s authorizedState) Act(ctx context.Context, e *statemachine.Entity, in statemachine.Input) (statemachine.State, error) {
	capture, ok := in.(CaptureInput)
	if !ok {
		return nil, fmt.Errorf("authorized state requires a capture input, got %T", in)
	}

	amount := capture.AmountToCapture
	if amount == 0 {
		amount = intAt(e, keyAmount)
	}
	intent, err := s.client.CaptureIntent(ctx, &request.CaptureIntent{
		IntentID:        stringAt(e, keyIntent),
		AmountToCapture: amount,
	})
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return fail(e, apiErr.Message)
		}
		return nil, err
	}
	if intent.Status != api.IntentSucceeded {
		return fail(e, "capture ended in status "+intent.Status)
	}
	return &capturedState{}, nil
}

type capturedState struct{}

func (capturedState) ID() string              { return StateCaptured }
func (capturedState) Kind() statemachine.Kind { return statemachine.KindFinal }

func (capturedState) Act(ctx context.Context, e *statemachine.Entity, in statemachine.Input) (statemachine.State, error) {
	return nil, fmt.Errorf("captured is a terminal state and cannot act")
}

type failedState struct{}

func (failedState) ID() string              { return StateFailed }
func (failedState) Kind() statemachine.Kind { return statemachine.KindFailed }

func (failedState) Act(ctx context.Context, e *statemachine.Entity, in statemachine.Input) (statemachine.State, error) {
	return nil, fmt.Errorf("failed is a terminal state and cannot act")
}
