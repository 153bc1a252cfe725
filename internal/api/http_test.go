package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/api/circuitbreaker"
	"github.com/yourorg/payments-gateway/internal/server/request"
)

func newTestClient(t *testing.T, handler http.Handler) (*api.HTTPClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewHTTPClient(server.Client(), api.Config{
		BaseURL: server.URL,
		SiteID:  "site_1",
		APIKey:  "sk_test",
	}, nil)
	client.SetRetryPolicy(2, time.Millisecond)
	return client, server
}

func TestCreateIntentSendsFormAndDecodes(t *testing.T) {
	var seenAuth, seenSite, seenIdempotency, seenMethod string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		seenSite = r.Header.Get("Site-ID")
		seenIdempotency = r.Header.Get("Idempotency-Key")
		seenMethod = r.Method

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1000", r.PostFormValue("amount"))
		assert.Equal(t, "usd", r.PostFormValue("currency"))
		assert.Equal(t, "true", r.PostFormValue("confirm"))
		assert.Equal(t, "pm_1", r.PostFormValue("payment_method"))

		json.NewEncoder(w).Encode(api.Intent{
			ID:     "pi_1",
			Status: api.IntentRequiresCapture,
			Amount: 1000,
		})
	}))

	intent, err := client.CreateIntent(context.Background(), &request.CreateIntent{
		Amount:          1000,
		Currency:        "usd",
		PaymentMethodID: "pm_1",
		CaptureMethod:   request.CaptureManual,
		Confirm:         true,
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)
	assert.True(t, intent.Successful())

	assert.Equal(t, http.MethodPost, seenMethod)
	assert.Equal(t, "Bearer sk_test", seenAuth)
	assert.Equal(t, "site_1", seenSite)
	assert.NotEmpty(t, seenIdempotency)
}

func TestInvalidRequestNeverSent(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	_, err := client.CreateIntent(context.Background(), &request.CreateIntent{Amount: -5, Currency: "usd"})

	var valErr *request.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRetriesOnServerErrorWithStableIdempotencyKey(t *testing.T) {
	var keys []string
	var calls int32

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(api.Intent{ID: "pi_1", Status: api.IntentSucceeded})
	}))

	intent, err := client.CaptureIntent(context.Background(), &request.CaptureIntent{
		IntentID:        "pi_1",
		AmountToCapture: 1000,
	})

	require.NoError(t, err)
	assert.Equal(t, api.IntentSucceeded, intent.Status)
	require.Len(t, keys, 3)
	assert.Equal(t, keys[0], keys[1], "retries must reuse the idempotency key")
	assert.Equal(t, keys[0], keys[2])
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "card_declined", "message": "Your card was declined."},
		})
	}))

	_, err := client.CreateIntent(context.Background(), &request.CreateIntent{Amount: 1000, Currency: "usd"})

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "card_declined", apiErr.Code)
	assert.Equal(t, "Your card was declined.", apiErr.Message)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.HTTPStatus)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestErrorEnvelopeFallback(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("not json at all"))
	}))

	_, err := client.GetIntent(context.Background(), "pi_1")

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "http_400", apiErr.Code)
}

func TestGetUsesQueryStringAndNoIdempotencyKey(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "charge", r.URL.Query().Get("type_is"))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []api.Transaction{{ID: "txn_1", Type: "charge", Amount: 1000}},
		})
	}))

	txns, err := client.ListTransactions(context.Background(), &request.ListTransactions{TypeIs: "charge"})

	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "txn_1", txns[0].ID)
}

func TestUserTokenSelectedForSetupIntents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user_tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(api.SetupIntent{ID: "seti_1", Status: api.IntentSucceeded})
	}))
	defer server.Close()

	client := api.NewHTTPClient(server.Client(), api.Config{
		BaseURL:   server.URL,
		APIKey:    "sk_test",
		UserToken: "user_tok",
	}, nil)
	client.SetRetryPolicy(0, time.Millisecond)

	si, err := client.GetSetupIntent(context.Background(), "seti_1")
	require.NoError(t, err)
	assert.Equal(t, "seti_1", si.ID)
}

func TestClientErrorsDoNotTripCircuitBreaker(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "card_declined", "message": "Your card was declined."},
		})
	}))
	defer server.Close()

	breaker := circuitbreaker.NewWithSettings(1, time.Minute, 1)
	client := api.NewHTTPClient(server.Client(), api.Config{BaseURL: server.URL, APIKey: "sk"}, breaker)
	client.SetRetryPolicy(0, time.Millisecond)

	// A run of declined cards is the processor working as intended; the
	// route must stay available for the next shopper.
	for i := 0; i < 3; i++ {
		_, err := client.GetIntent(context.Background(), "pi_declined")
		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "card_declined", apiErr.Code)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCircuitBreakerShortCircuits(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	breaker := circuitbreaker.NewWithSettings(1, time.Minute, 1)
	client := api.NewHTTPClient(server.Client(), api.Config{BaseURL: server.URL, APIKey: "sk"}, breaker)
	client.SetRetryPolicy(0, time.Millisecond)

	_, err := client.GetIntent(context.Background(), "pi_1")
	require.Error(t, err)

	// The breaker is now open for the intentions group; the next call must
	// not reach the server.
	before := atomic.LoadInt32(&calls)
	_, err = client.GetIntent(context.Background(), "pi_1")

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "api_connection_error", apiErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.HTTPStatus)
	assert.Equal(t, before, atomic.LoadInt32(&calls))
}
