// Package mock provides a configurable in-memory implementation of the
// payments API client for tests and the demo server.
package mock

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/server/request"
)

// Client implements api.Client. Each method can be overridden via its
// function field; without an override, a simple in-memory intent store
// provides plausible default behavior.
type Client struct {
	mu      sync.Mutex
	intents map[string]*api.Intent

	GetIntentFunc         func(ctx context.Context, intentID string) (*api.Intent, error)
	CreateIntentFunc      func(ctx context.Context, req *request.CreateIntent) (*api.Intent, error)
	UpdateIntentFunc      func(ctx context.Context, req *request.UpdateIntent) (*api.Intent, error)
	CaptureIntentFunc     func(ctx context.Context, req *request.CaptureIntent) (*api.Intent, error)
	CreateSetupIntentFunc func(ctx context.Context, req *request.CreateSetupIntent) (*api.SetupIntent, error)
	GetSetupIntentFunc    func(ctx context.Context, setupIntentID string) (*api.SetupIntent, error)
	CreateCustomerFunc    func(ctx context.Context, req *request.CreateCustomer) (*api.Customer, error)
	ListTransactionsFunc  func(ctx context.Context, req *request.ListTransactions) ([]api.Transaction, error)

	// CaptureCalls counts CaptureIntent invocations, for assertions.
	CaptureCalls int
}

// NewClient creates an empty mock client.
func NewClient() *Client {
	return &Client{intents: make(map[string]*api.Intent)}
}

// SeedIntent registers an intent the default handlers will serve.
func (c *Client) SeedIntent(intent *api.Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intents[intent.ID] = intent
}

func (c *Client) notFound(intentID string) *api.Error {
	return &api.Error{Code: "resource_missing", Message: "no such intent: " + intentID, HTTPStatus: http.StatusNotFound}
}

func (c *Client) GetIntent(ctx context.Context, intentID string) (*api.Intent, error) {
	if c.GetIntentFunc != nil {
		return c.GetIntentFunc(ctx, intentID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	intent, ok := c.intents[intentID]
	if !ok {
		return nil, c.notFound(intentID)
	}
	return intent, nil
}

func (c *Client) CreateIntent(ctx context.Context, req *request.CreateIntent) (*api.Intent, error) {
	if c.CreateIntentFunc != nil {
		return c.CreateIntentFunc(ctx, req)
	}
	if _, err := request.Data(req); err != nil {
		return nil, err
	}

	status := api.IntentSucceeded
	if req.CaptureMethod == request.CaptureManual {
		status = api.IntentRequiresCapture
	}
	if !req.Confirm {
		status = api.IntentRequiresPaymentMethod
	}

	intent := &api.Intent{
		ID:              "pi_" + uuid.NewString(),
		Status:          status,
		Amount:          req.Amount,
		Currency:        req.Currency,
		PaymentMethodID: req.PaymentMethodID,
		CustomerID:      req.CustomerID,
		ClientSecret:    "secret_" + uuid.NewString(),
	}
	if status == api.IntentSucceeded {
		intent.Charge = &api.Charge{ID: "ch_" + uuid.NewString(), Status: api.IntentSucceeded}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.intents[intent.ID] = intent
	return intent, nil
}

func (c *Client) UpdateIntent(ctx context.Context, req *request.UpdateIntent) (*api.Intent, error) {
	if c.UpdateIntentFunc != nil {
		return c.UpdateIntentFunc(ctx, req)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	intent, ok := c.intents[req.IntentID]
	if !ok {
		return nil, c.notFound(req.IntentID)
	}
	intent.Amount = req.Amount
	intent.Currency = req.Currency
	if req.CustomerID != "" {
		intent.CustomerID = req.CustomerID
	}
	return intent, nil
}

func (c *Client) CaptureIntent(ctx context.Context, req *request.CaptureIntent) (*api.Intent, error) {
	c.mu.Lock()
	c.CaptureCalls++
	c.mu.Unlock()

	if c.CaptureIntentFunc != nil {
		return c.CaptureIntentFunc(ctx, req)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	intent, ok := c.intents[req.IntentID]
	if !ok {
		return nil, c.notFound(req.IntentID)
	}
	intent.Status = api.IntentSucceeded
	if intent.Charge == nil {
		intent.Charge = &api.Charge{ID: "ch_" + uuid.NewString(), Status: api.IntentSucceeded}
	}
	return intent, nil
}

func (c *Client) CreateSetupIntent(ctx context.Context, req *request.CreateSetupIntent) (*api.SetupIntent, error) {
	if c.CreateSetupIntentFunc != nil {
		return c.CreateSetupIntentFunc(ctx, req)
	}
	return &api.SetupIntent{
		ID:              "seti_" + uuid.NewString(),
		Status:          api.IntentSucceeded,
		CustomerID:      req.CustomerID,
		PaymentMethodID: req.PaymentMethodID,
		ClientSecret:    "secret_" + uuid.NewString(),
	}, nil
}

func (c *Client) GetSetupIntent(ctx context.Context, setupIntentID string) (*api.SetupIntent, error) {
	if c.GetSetupIntentFunc != nil {
		return c.GetSetupIntentFunc(ctx, setupIntentID)
	}
	return &api.SetupIntent{ID: setupIntentID, Status: api.IntentSucceeded}, nil
}

func (c *Client) CreateCustomer(ctx context.Context, req *request.CreateCustomer) (*api.Customer, error) {
	if c.CreateCustomerFunc != nil {
		return c.CreateCustomerFunc(ctx, req)
	}
	return &api.Customer{ID: "cus_" + uuid.NewString()}, nil
}

func (c *Client) ListTransactions(ctx context.Context, req *request.ListTransactions) ([]api.Transaction, error) {
	if c.ListTransactionsFunc != nil {
		return c.ListTransactionsFunc(ctx, req)
	}
	return nil, nil
}
