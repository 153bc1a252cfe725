package lifecycle_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/api/mock"
	"github.com/yourorg/payments-gateway/internal/payment/lifecycle"
	"github.com/yourorg/payments-gateway/internal/server/request"
	"github.com/yourorg/payments-gateway/internal/statemachine"
)

func checkout(amount int64) lifecycle.CheckoutInput {
	return lifecycle.CheckoutInput{
		PaymentMethodID: "pm_1",
		CustomerID:      "cus_1",
		Amount:          amount,
		Currency:        "usd",
	}
}

func TestCheckoutCapturesAutomatically(t *testing.T) {
	client := mock.NewClient()
	entity := statemachine.NewEntity("42")

	result, err := lifecycle.NewMachine(client).
		SetEntity(entity).
		SetInitialState(lifecycle.InitialState()).
		SetInput(checkout(1000)).
		Progress(context.Background())

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateCaptured, result.CurrentState())
	assert.NotEmpty(t, result.Get("intent_id"))

	revisions := result.Revisions()
	require.Len(t, revisions, 2)
	assert.Equal(t, lifecycle.StateInitial, revisions[0].PreviousState)
	assert.Equal(t, lifecycle.StatePrepared, revisions[0].CurrentState)
	assert.Equal(t, lifecycle.StateCaptured, revisions[1].CurrentState)
	assert.Equal(t, lifecycle.MachineID, revisions[0].StateMachine)
}

func TestCheckoutSuspendsOnManualCapture(t *testing.T) {
	client := mock.NewClient()
	storage := lifecycle.NewMemoryEntityStorage()

	input := checkout(1000)
	input.ManualCapture = true

	entity, err := lifecycle.NewMachine(client).
		SetEntity(statemachine.NewEntity("42")).
		SetInitialState(lifecycle.InitialState()).
		SetInput(input).
		Progress(context.Background())
	require.NoError(t, err)

	assert.Equal(t, lifecycle.StateAuthorized, entity.CurrentState())
	require.NoError(t, storage.Store(context.Background(), entity))

	// The merchant captures later, in a separate invocation.
	resumed, err := storage.Load(context.Background(), "42")
	require.NoError(t, err)

	result, err := lifecycle.NewMachine(client).
		SetEntity(resumed).
		SetInput(lifecycle.CaptureInput{}).
		Progress(context.Background())

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateCaptured, result.CurrentState())
	assert.Equal(t, 1, client.CaptureCalls)
}

func TestCheckoutAwaitsAuthentication(t *testing.T) {
	client := mock.NewClient()
	client.CreateIntentFunc = func(ctx context.Context, req *request.CreateIntent) (*api.Intent, error) {
		intent := &api.Intent{ID: "pi_1", Status: api.IntentRequiresAction, Amount: req.Amount, Currency: req.Currency}
		client.SeedIntent(intent)
		return intent, nil
	}

	entity, err := lifecycle.NewMachine(client).
		SetEntity(statemachine.NewEntity("42")).
		SetInitialState(lifecycle.InitialState()).
		SetInput(checkout(1000)).
		Progress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateAwaitingAuth, entity.CurrentState())

	// The customer authenticated; the intent is now captured remotely.
	client.SeedIntent(&api.Intent{ID: "pi_1", Status: api.IntentSucceeded})

	result, err := lifecycle.NewMachine(client).
		SetEntity(entity).
		SetInput(lifecycle.AuthenticationInput{IntentID: "pi_1"}).
		Progress(context.Background())

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateCaptured, result.CurrentState())
}

func TestCheckoutFailsOnInvalidInput(t *testing.T) {
	t.Run("zero amount", func(t *testing.T) {
		result, err := lifecycle.NewMachine(mock.NewClient()).
			SetEntity(statemachine.NewEntity("42")).
			SetInitialState(lifecycle.InitialState()).
			SetInput(checkout(0)).
			Progress(context.Background())

		require.NoError(t, err)
		assert.Equal(t, lifecycle.StateFailed, result.CurrentState())
		assert.Equal(t, "nothing to charge", result.Get("failure_reason"))
	})

	t.Run("missing payment method", func(t *testing.T) {
		input := checkout(1000)
		input.PaymentMethodID = ""

		result, err := lifecycle.NewMachine(mock.NewClient()).
			SetEntity(statemachine.NewEntity("42")).
			SetInitialState(lifecycle.InitialState()).
			SetInput(input).
			Progress(context.Background())

		require.NoError(t, err)
		assert.Equal(t, lifecycle.StateFailed, result.CurrentState())
	})
}

func TestCheckoutFailsOnDeclinedIntent(t *testing.T) {
	client := mock.NewClient()
	client.CreateIntentFunc = func(ctx context.Context, req *request.CreateIntent) (*api.Intent, error) {
		return nil, &api.Error{Code: "card_declined", Message: "Your card was declined.", HTTPStatus: http.StatusPaymentRequired}
	}

	result, err := lifecycle.NewMachine(client).
		SetEntity(statemachine.NewEntity("42")).
		SetInitialState(lifecycle.InitialState()).
		SetInput(checkout(1000)).
		Progress(context.Background())

	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateFailed, result.CurrentState())
	assert.Equal(t, "Your card was declined.", result.Get("failure_reason"))
}
