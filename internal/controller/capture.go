package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/payments-gateway/internal/api"
	"github.com/yourorg/payments-gateway/internal/metrics"
	"github.com/yourorg/payments-gateway/internal/order"
	"github.com/yourorg/payments-gateway/internal/payment/step"
	"github.com/yourorg/payments-gateway/internal/server/request"
)

// MetaReceiptURL is set on the order exactly once, on the first successful
// capture. Re-captures of an already succeeded intent must not rewrite it.
const MetaReceiptURL = "receipt_url"

// CaptureTerminalPayment captures an authorized in-person payment. Orders
// with any refund are rejected before the processor is contacted, because a
// partial refund invalidates the authorized amount.
func (ctl *Controller) CaptureTerminalPayment(c *gin.Context) {
	o, ok := ctl.lookupOrder(c)
	if !ok {
		metrics.CaptureResults.WithLabelValues(codeMissingOrder).Inc()
		return
	}

	if o.TotalRefunded() > 0 {
		metrics.CaptureResults.WithLabelValues(codeRefundedUncapturable).Inc()
		respondError(c, http.StatusBadRequest, codeRefundedUncapturable,
			"Payment cannot be captured for partially or fully refunded orders.")
		return
	}

	ctl.capture(c, o)
}

// CaptureAuthorization captures a regular authorized payment. Unlike the
// terminal variant it has no refunded-order guard.
func (ctl *Controller) CaptureAuthorization(c *gin.Context) {
	o, ok := ctl.lookupOrder(c)
	if !ok {
		metrics.CaptureResults.WithLabelValues(codeMissingOrder).Inc()
		return
	}

	ctl.capture(c, o)
}

func (ctl *Controller) capture(c *gin.Context, o order.Order) {
	ctx := c.Request.Context()

	intentID, ok := o.Meta(step.MetaIntentID)
	if !ok || intentID == "" {
		metrics.CaptureResults.WithLabelValues(codePaymentUncapturable).Inc()
		respondError(c, http.StatusConflict, codePaymentUncapturable,
			"The order has no payment intent to capture.")
		return
	}

	intent, err := ctl.client.GetIntent(ctx, intentID)
	if err != nil {
		ctl.captureFailure(c, err)
		return
	}

	if !api.Capturable(intent.Status) {
		metrics.CaptureResults.WithLabelValues(codePaymentUncapturable).Inc()
		respondError(c, http.StatusConflict, codePaymentUncapturable,
			"The payment cannot be captured in its current state: "+intent.Status)
		return
	}

	// An intent that already succeeded needs no remote call; the order is
	// simply brought up to date.
	if intent.Status != api.IntentSucceeded {
		intent, err = ctl.client.CaptureIntent(ctx, &request.CaptureIntent{
			IntentID:        intentID,
			AmountToCapture: o.Total(),
		})
		if err != nil {
			ctl.captureFailure(c, err)
			return
		}
		if intent.Status != api.IntentSucceeded {
			metrics.CaptureResults.WithLabelValues(codeCaptureError).Inc()
			respondError(c, http.StatusBadGateway, codeCaptureError,
				"The payment was not captured: "+intent.Status)
			return
		}
	}

	if _, exists := o.Meta(MetaReceiptURL); !exists {
		o.SetMeta(MetaReceiptURL, "https://pay.example.com/receipts/"+intent.ID)
	}
	o.SetStatus("completed")
	if err := o.Save(ctx); err != nil {
		ctl.log.ErrorContext(ctx, "saving order after capture",
			"order_id", o.ID(), "error", err)
		metrics.CaptureResults.WithLabelValues(codeServerError).Inc()
		respondError(c, http.StatusInternalServerError, codeServerError,
			"An error occurred while saving the order.")
		return
	}

	metrics.CaptureResults.WithLabelValues("succeeded").Inc()
	c.JSON(http.StatusOK, gin.H{"status": intent.Status, "id": intent.ID})
}

// captureFailure translates a remote error into the capture error code,
// passing the upstream HTTP status through when the processor supplied one.
func (ctl *Controller) captureFailure(c *gin.Context, err error) {
	status := http.StatusBadGateway
	message := "An error occurred while capturing the payment."

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatus >= 400 {
			status = apiErr.HTTPStatus
		}
		message = apiErr.Message
	}

	metrics.CaptureResults.WithLabelValues(codeCaptureError).Inc()
	respondError(c, status, codeCaptureError, message)
}
