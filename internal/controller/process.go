package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/monitor"
	"github.com/yourorg/payments-gateway/internal/order"
	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/payment/method"
	"github.com/yourorg/payments-gateway/internal/payment/step"
	pstorage "github.com/yourorg/payments-gateway/internal/payment/storage"
	"github.com/yourorg/payments-gateway/internal/reporting"
)

type processRequest struct {
	Flow              string `json:"flow"`
	PaymentMethodID   string `json:"payment_method_id"`
	TokenID           string `json:"token_id"`
	ManualCapture     bool   `json:"manual_capture"`
	SavePaymentMethod bool   `json:"save_payment_method"`
	Recurring         bool   `json:"recurring"`
	IntentID          string `json:"intent_id"`
}

// ProcessPayment runs the payment pipeline for an order, under the
// per-order advisory lock so concurrent submissions cannot double charge.
func (ctl *Controller) ProcessPayment(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "The request body could not be read.")
		return
	}

	valid, validationErrors, err := ctl.monitor.Validate(body)
	if err != nil {
		ctl.log.ErrorContext(ctx, "request schema validation failed", "error", err)
		respondError(c, http.StatusInternalServerError, codeServerError, "An error occurred while validating the request.")
		return
	}
	if !valid {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, monitor.FormatErrors(validationErrors))
		return
	}

	var req processRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "Invalid request format: "+err.Error())
		return
	}

	o, ok := ctl.lookupOrder(c)
	if !ok {
		return
	}

	release, acquired, err := ctl.locker.Acquire(ctx, o.ID())
	if err != nil {
		ctl.log.ErrorContext(ctx, "acquiring order lock", "order_id", o.ID(), "error", err)
		respondError(c, http.StatusInternalServerError, codeServerError, "An error occurred while locking the order.")
		return
	}
	if !acquired {
		respondError(c, http.StatusConflict, codeOrderLocked, "Another payment for this order is already in progress.")
		return
	}
	defer release()

	p, err := ctl.buildPayment(c, o, &req)
	if err != nil {
		// buildPayment already responded.
		return
	}

	resp, err := p.Process(ctx)
	ctl.record(o, p, resp, err)
	if err != nil {
		ctl.processFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// buildPayment assembles the payment for one run: rehydrated state, flags
// and method from the request, flow last so misconfigured requests fail
// before any remote call.
func (ctl *Controller) buildPayment(c *gin.Context, o order.Order, req *processRequest) (*payment.Payment, error) {
	ctx := c.Request.Context()

	// The payment id doubles as the storage key, which is the order id.
	p := payment.New(o.ID(), o, ctl.storage, ctl.steps.Build(), ctl.log)

	data, err := ctl.storage.Load(ctx, p.ID())
	switch {
	case err == nil:
		if err := p.LoadData(data); err != nil {
			ctl.log.ErrorContext(ctx, "rehydrating payment state", "order_id", o.ID(), "error", err)
			respondError(c, http.StatusInternalServerError, codeServerError, "Stored payment state could not be loaded.")
			return nil, err
		}
	case errors.Is(err, pstorage.ErrNotFound):
		// First attempt for this order.
	default:
		ctl.log.ErrorContext(ctx, "loading payment state", "order_id", o.ID(), "error", err)
		respondError(c, http.StatusInternalServerError, codeServerError, "Stored payment state could not be loaded.")
		return nil, err
	}

	if req.ManualCapture {
		p.SetFlag(payment.ManualCapture)
	}
	if req.SavePaymentMethod {
		p.SetFlag(payment.SavePaymentMethodToStore)
	}
	if req.Recurring {
		p.SetFlag(payment.Recurring)
	}

	switch {
	case req.TokenID != "":
		p.SetMethod(&method.Saved{TokenID: req.TokenID, PaymentMethodID: req.PaymentMethodID})
	case req.PaymentMethodID != "":
		p.SetMethod(&method.Card{PaymentMethodID: req.PaymentMethodID})
	}

	if req.IntentID != "" {
		p.SetVar(step.VarIntentID, req.IntentID)
	}

	flow := payment.Flow(req.Flow)
	if req.Flow == "" {
		flow = payment.StandardFlow
	}
	if err := p.SetFlow(flow); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return nil, err
	}

	return p, nil
}

// processFailure maps pipeline errors onto the REST vocabulary.
func (ctl *Controller) processFailure(c *gin.Context, err error) {
	var (
		fraudErr  *step.FraudError
		amountErr *step.MinimumAmountError
		rateErr   *step.RateLimitError
		confErr   *payment.ConfigurationError
		apiErr    *api.Error
	)

	switch {
	case errors.As(err, &fraudErr):
		respondError(c, http.StatusBadRequest, codeFraudRuleBlocked, fraudErr.Error())
	case errors.As(err, &rateErr):
		respondError(c, http.StatusTooManyRequests, codeRateLimited, rateErr.Error())
	case errors.As(err, &amountErr):
		respondError(c, http.StatusBadRequest, codeAmountTooSmall, amountErr.Error())
	case errors.As(err, &confErr):
		respondError(c, http.StatusBadRequest, codeInvalidRequest, confErr.Error())
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.HTTPStatus >= 400 {
			status = apiErr.HTTPStatus
		}
		respondError(c, status, apiErr.Code, apiErr.Message)
	default:
		ctl.log.ErrorContext(c.Request.Context(), "payment processing failed", "error", err)
		respondError(c, http.StatusInternalServerError, codeServerError, "An error occurred while processing the payment.")
	}
}

// record appends the attempt to the retrospective recorder.
func (ctl *Controller) record(o order.Order, p *payment.Payment, resp *payment.Response, err error) {
	if ctl.recorder == nil {
		return
	}

	rec := reporting.AttemptRecord{
		Timestamp: time.Now(),
		OrderID:   o.ID(),
		Flow:      string(p.Flow()),
		Amount:    o.Total(),
		Currency:  o.Currency(),
	}
	switch {
	case err != nil:
		rec.Status = "error"
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			rec.ErrorCode = apiErr.Code
		}
	case resp != nil:
		rec.Status = resp.Result
	}
	ctl.recorder.Append(rec)
}
