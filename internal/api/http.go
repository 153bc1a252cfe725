package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/payments-gateway/internal/api/circuitbreaker"
	"github.com/yourorg/payments-gateway/internal/server/request"
)

const (
	defaultRetryAttempts = 2
	defaultRetryDelay    = 500 * time.Millisecond
)

// HTTPClient talks to the remote payments API over HTTP, implementing
// Client. It handles form serialization, bounded retries with idempotency
// keys, error envelope mapping and circuit breaking per route group.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	siteID     string
	apiKey     string
	userToken  string
	breaker    *circuitbreaker.CircuitBreaker

	retryAttempts int
	retryDelay    time.Duration
}

// Config carries the settings for an HTTPClient.
type Config struct {
	BaseURL   string
	SiteID    string
	APIKey    string
	UserToken string
}

// NewHTTPClient creates an HTTPClient. A nil http.Client gets a sane
// default timeout; a nil breaker gets default settings.
func NewHTTPClient(client *http.Client, cfg Config, breaker *circuitbreaker.CircuitBreaker) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if breaker == nil {
		breaker = circuitbreaker.New()
	}
	return &HTTPClient{
		httpClient:    client,
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		siteID:        cfg.SiteID,
		apiKey:        cfg.APIKey,
		userToken:     cfg.UserToken,
		breaker:       breaker,
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
	}
}

// SetRetryPolicy overrides the retry count and delay, e.g. for tests or
// latency-sensitive callers.
func (c *HTTPClient) SetRetryPolicy(attempts int, delay time.Duration) {
	c.retryAttempts = attempts
	c.retryDelay = delay
}

// errorEnvelope is the error body shape returned by the remote API.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// routeGroup keys the circuit breaker by the first path segment, so a broken
// intents endpoint does not trip transaction listings.
func routeGroup(route string) string {
	trimmed := strings.TrimPrefix(route, "/")
	if i := strings.IndexByte(trimmed, '/'); i > 0 {
		return trimmed[:i]
	}
	return trimmed
}

// send validates the request value object, performs the call with bounded
// retries on 429/5xx, and returns the decoded response body.
func (c *HTTPClient) send(ctx context.Context, req request.Request) ([]byte, error) {
	params, err := request.Data(req)
	if err != nil {
		return nil, err
	}

	group := routeGroup(req.Route())
	if !c.breaker.Allow(group) {
		return nil, &Error{Code: "api_connection_error", Message: "circuit open for " + group, HTTPStatus: http.StatusServiceUnavailable}
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	endpoint := c.baseURL + req.Route()
	if req.Method() == http.MethodGet {
		if encoded := values.Encode(); encoded != "" {
			endpoint += "?" + encoded
		}
	}

	// One idempotency key per logical call; retried attempts reuse it so
	// the remote API de-duplicates.
	idempotencyKey := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var body io.Reader
		if req.Method() != http.MethodGet {
			body = bytes.NewBufferString(values.Encode())
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Method(), endpoint, body)
		if err != nil {
			return nil, fmt.Errorf("api: building request for %s: %w", req.Route(), err)
		}

		if req.UseUserToken() && c.userToken != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.userToken)
		} else {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		if req.SiteSpecific() && c.siteID != "" {
			httpReq.Header.Set("Site-ID", c.siteID)
		}
		for name, value := range req.Headers() {
			httpReq.Header.Set(name, value)
		}
		if req.Method() != http.MethodGet {
			httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			httpReq.Header.Set("Idempotency-Key", idempotencyKey)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("api: calling %s: %w", req.Route(), err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("api: reading response from %s: %w", req.Route(), readErr)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			lastErr = c.apiError(resp.StatusCode, respBody)
			continue
		}

		// A plain 4xx is the processor answering normally (declined card,
		// bad parameters); only transport errors, 429 and 5xx say anything
		// about the route's health, so the breaker is left alone here.
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, c.apiError(resp.StatusCode, respBody)
		}

		c.breaker.RecordSuccess(group)
		return respBody, nil
	}

	c.breaker.RecordFailure(group)
	if lastErr == nil {
		lastErr = &Error{Code: "api_connection_error", Message: "no response received", HTTPStatus: http.StatusBadGateway}
	}
	return nil, lastErr
}

// apiError maps a non-success response to an Error, decoding the error
// envelope when one is present.
func (c *HTTPClient) apiError(status int, body []byte) *Error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		code := envelope.Error.Code
		if code == "" {
			code = fmt.Sprintf("http_%d", status)
		}
		return &Error{Code: code, Message: envelope.Error.Message, HTTPStatus: status}
	}
	return &Error{
		Code:       fmt.Sprintf("http_%d", status),
		Message:    fmt.Sprintf("unexpected response from payments API (HTTP %d)", status),
		HTTPStatus: status,
	}
}

func (c *HTTPClient) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	return c.intentCall(ctx, &request.GetIntent{IntentID: intentID})
}

func (c *HTTPClient) CreateIntent(ctx context.Context, req *request.CreateIntent) (*Intent, error) {
	return c.intentCall(ctx, req)
}

func (c *HTTPClient) UpdateIntent(ctx context.Context, req *request.UpdateIntent) (*Intent, error) {
	return c.intentCall(ctx, req)
}

func (c *HTTPClient) CaptureIntent(ctx context.Context, req *request.CaptureIntent) (*Intent, error) {
	return c.intentCall(ctx, req)
}

func (c *HTTPClient) intentCall(ctx context.Context, req request.Request) (*Intent, error) {
	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("api: decoding intent: %w", err)
	}
	return &intent, nil
}

func (c *HTTPClient) CreateSetupIntent(ctx context.Context, req *request.CreateSetupIntent) (*SetupIntent, error) {
	return c.setupIntentCall(ctx, req)
}

func (c *HTTPClient) GetSetupIntent(ctx context.Context, setupIntentID string) (*SetupIntent, error) {
	return c.setupIntentCall(ctx, &request.GetSetupIntent{SetupIntentID: setupIntentID})
}

func (c *HTTPClient) setupIntentCall(ctx context.Context, req request.Request) (*SetupIntent, error) {
	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	var si SetupIntent
	if err := json.Unmarshal(body, &si); err != nil {
		return nil, fmt.Errorf("api: decoding setup intent: %w", err)
	}
	return &si, nil
}

func (c *HTTPClient) CreateCustomer(ctx context.Context, req *request.CreateCustomer) (*Customer, error) {
	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	var customer Customer
	if err := json.Unmarshal(body, &customer); err != nil {
		return nil, fmt.Errorf("api: decoding customer: %w", err)
	}
	return &customer, nil
}

func (c *HTTPClient) ListTransactions(ctx context.Context, req *request.ListTransactions) ([]Transaction, error) {
	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	var listing struct {
		Data []Transaction `json:"data"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("api: decoding transactions: %w", err)
	}
	return listing.Data, nil
}
