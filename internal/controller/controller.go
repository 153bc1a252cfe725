// Package controller implements the REST boundary: capture endpoints with
// the error vocabulary checkout clients depend on, the payment processing
// endpoint running the pipeline, and reporting.
package controller

import (
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/lock"
	"github.com/yourorg/payments-gateway/internal/monitor"
	"github.com/yourorg/payments-gateway/internal/order"
	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/payment/step"
	"github.com/yourorg/payments-gateway/internal/reporting"
)

//go:embed process_schema.json
var processSchema []byte

// Error codes returned to REST clients.
const (
	codeMissingOrder         = "wcpay_missing_order"
	codeRefundedUncapturable = "wcpay_refunded_order_uncapturable"
	codePaymentUncapturable  = "wcpay_payment_uncapturable"
	codeCaptureError         = "wcpay_capture_error"
	codeServerError          = "wcpay_server_error"
	codeOrderLocked          = "wcpay_order_locked"
	codeInvalidRequest       = "wcpay_invalid_request"
	codeFraudRuleBlocked     = "wcpay_blocked_by_fraud_rule"
	codeAmountTooSmall       = "wcpay_amount_too_small"
	codeRateLimited          = "wcpay_card_declined_rate_limiter"
)

// Controller holds the dependencies shared by all handlers.
type Controller struct {
	orders   order.Service
	client   api.Client
	storage  payment.Storage
	steps    *step.Builder
	locker   lock.Locker
	recorder *reporting.Recorder
	monitor  *monitor.ContractMonitor
	log      *slog.Logger
}

// New creates the controller. Orders, client, storage, steps and locker are
// mandatory; the recorder may be nil, disabling attempt reporting.
func New(orders order.Service, client api.Client, storage payment.Storage, steps *step.Builder, locker lock.Locker, recorder *reporting.Recorder, log *slog.Logger) (*Controller, error) {
	if orders == nil {
		panic("controller requires an order service")
	}
	if client == nil {
		panic("controller requires an API client")
	}
	if storage == nil {
		panic("controller requires payment storage")
	}
	if steps == nil {
		panic("controller requires a step builder")
	}
	if locker == nil {
		panic("controller requires a locker")
	}
	if log == nil {
		log = slog.Default()
	}

	cm, err := monitor.NewContractMonitor(processSchema)
	if err != nil {
		return nil, err
	}

	return &Controller{
		orders:   orders,
		client:   client,
		storage:  storage,
		steps:    steps,
		locker:   locker,
		recorder: recorder,
		monitor:  cm,
		log:      log,
	}, nil
}

// Register mounts the payment routes on the engine.
func (ctl *Controller) Register(r gin.IRouter) {
	payments := r.Group("/payments")
	payments.POST("/orders/:order_id/capture_terminal_payment", ctl.CaptureTerminalPayment)
	payments.POST("/orders/:order_id/capture_authorization", ctl.CaptureAuthorization)
	payments.POST("/orders/:order_id/process", ctl.ProcessPayment)
	payments.GET("/reports/retrospective", ctl.Retrospective)
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"code": code, "message": message})
}

// lookupOrder resolves the path order, replying 404 with the missing-order
// code when it does not exist.
func (ctl *Controller) lookupOrder(c *gin.Context) (order.Order, bool) {
	o, err := ctl.orders.Get(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondError(c, http.StatusNotFound, codeMissingOrder, "Order not found")
		return nil, false
	}
	return o, true
}
