package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/api/mock"
	"github.com/yourorg/payments-gateway/internal/controller"
	"github.com/yourorg/payments-gateway/internal/limiter"
	"github.com/yourorg/payments-gateway/internal/lock"
	"github.com/yourorg/payments-gateway/internal/order"
	"github.com/yourorg/payments-gateway/internal/payment/step"
	"github.com/yourorg/payments-gateway/internal/payment/storage"
	"github.com/yourorg/payments-gateway/internal/reporting"
	"github.com/yourorg/payments-gateway/internal/server/request"
)

type fixture struct {
	router   *gin.Engine
	client   *mock.Client
	orders   *order.MemoryService
	locker   *lock.MemoryLocker
	recorder *reporting.Recorder
	attempts *limiter.MemoryRateLimiter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := mock.NewClient()
	orders := order.NewMemoryService()
	locker := lock.NewMemoryLocker()
	recorder := reporting.NewRecorder()
	attempts := limiter.NewMemoryRateLimiter(5, time.Minute)

	steps := step.NewBuilder(step.Deps{
		Client:  client,
		Tokens:  order.NewMemoryTokenService(),
		Limiter: attempts,
	})

	ctl, err := controller.New(orders, client, storage.NewMemoryStorage(), steps, locker, recorder, nil)
	require.NoError(t, err)

	router := gin.New()
	ctl.Register(router)
	return &fixture{router: router, client: client, orders: orders, locker: locker, recorder: recorder, attempts: attempts}
}

func (f *fixture) addOrder(t *testing.T, id string, amount int64) *order.MemoryOrder {
	t.Helper()
	o := order.NewMemoryOrder(id, amount, "usd")
	o.User = "user_1"
	f.orders.Add(o)
	return o
}

func (f *fixture) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code, body.Message
}

func TestCaptureTerminalPayment(t *testing.T) {
	t.Run("missing order", func(t *testing.T) {
		f := newFixture(t)

		w := f.post(t, "/payments/orders/999/capture_terminal_payment", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		code, _ := decodeError(t, w)
		assert.Equal(t, "wcpay_missing_order", code)
	})

	t.Run("refunded order rejected before any remote call", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t, "42", 1000)
		o.Refunded = 500
		o.SetMeta(step.MetaIntentID, "pi_1")

		remoteCalled := false
		f.client.GetIntentFunc = func(ctx context.Context, intentID string) (*api.Intent, error) {
			remoteCalled = true
			return nil, &api.Error{Code: "unexpected", HTTPStatus: 500}
		}

		w := f.post(t, "/payments/orders/42/capture_terminal_payment", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		code, _ := decodeError(t, w)
		assert.Equal(t, "wcpay_refunded_order_uncapturable", code)
		assert.False(t, remoteCalled)
	})

	t.Run("uncapturable intent status", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t, "42", 1000)
		o.SetMeta(step.MetaIntentID, "pi_1")
		f.client.SeedIntent(&api.Intent{ID: "pi_1", Status: api.IntentCanceled})

		w := f.post(t, "/payments/orders/42/capture_terminal_payment", "")

		assert.Equal(t, http.StatusConflict, w.Code)
		code, message := decodeError(t, w)
		assert.Equal(t, "wcpay_payment_uncapturable", code)
		assert.Contains(t, message, api.IntentCanceled)
		assert.Zero(t, f.client.CaptureCalls)
	})

	t.Run("order without intent", func(t *testing.T) {
		f := newFixture(t)
		f.addOrder(t, "42", 1000)

		w := f.post(t, "/payments/orders/42/capture_terminal_payment", "")

		assert.Equal(t, http.StatusConflict, w.Code)
		code, _ := decodeError(t, w)
		assert.Equal(t, "wcpay_payment_uncapturable", code)
	})

	t.Run("capture succeeds and records the receipt once", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t, "42", 1000)
		o.SetMeta(step.MetaIntentID, "pi_1")
		f.client.SeedIntent(&api.Intent{ID: "pi_1", Status: api.IntentRequiresCapture})

		w := f.post(t, "/payments/orders/42/capture_terminal_payment", "")

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Status string `json:"status"`
			ID     string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, api.IntentSucceeded, body.Status)
		assert.Equal(t, "pi_1", body.ID)

		assert.Equal(t, 1, f.client.CaptureCalls)
		assert.Equal(t, "completed", o.Status())

		receipt, ok := o.Meta(controller.MetaReceiptURL)
		require.True(t, ok)

		// A repeated capture of the now-succeeded intent keeps the
		// original receipt and does not call capture again.
		w = f.post(t, "/payments/orders/42/capture_terminal_payment", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, f.client.CaptureCalls)

		receiptAfter, _ := o.Meta(controller.MetaReceiptURL)
		assert.Equal(t, receipt, receiptAfter)
	})

	t.Run("failed capture maps to the capture error code", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t, "42", 1000)
		o.SetMeta(step.MetaIntentID, "pi_1")
		f.client.SeedIntent(&api.Intent{ID: "pi_1", Status: api.IntentRequiresCapture})
		f.client.CaptureIntentFunc = func(ctx context.Context, req *request.CaptureIntent) (*api.Intent, error) {
			return nil, &api.Error{Code: "processing_error", Message: "capture failed upstream", HTTPStatus: http.StatusBadGateway}
		}

		w := f.post(t, "/payments/orders/42/capture_terminal_payment", "")

		assert.Equal(t, http.StatusBadGateway, w.Code)
		code, message := decodeError(t, w)
		assert.Equal(t, "wcpay_capture_error", code)
		assert.Equal(t, "capture failed upstream", message)
		assert.NotEqual(t, "completed", o.Status())
	})
}

func TestCaptureAuthorizationAllowsRefundedOrders(t *testing.T) {
	f := newFixture(t)
	o := f.addOrder(t, "42", 1000)
	o.Refunded = 500
	o.SetMeta(step.MetaIntentID, "pi_1")
	f.client.SeedIntent(&api.Intent{ID: "pi_1", Status: api.IntentRequiresCapture})

	w := f.post(t, "/payments/orders/42/capture_authorization", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.client.CaptureCalls)
	assert.Equal(t, "completed", o.Status())
}
