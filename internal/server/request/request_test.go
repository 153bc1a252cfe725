package request_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payments-gateway/internal/server/request"
)

// trickyRequest declares an HTTP method outside the allow-list.
type trickyRequest struct {
	request.Base
}

func (r *trickyRequest) Method() string                { return "TRACE" }
func (r *trickyRequest) Route() string                 { return "/intentions" }
func (r *trickyRequest) SiteSpecific() bool            { return true }
func (r *trickyRequest) UseUserToken() bool            { return false }
func (r *trickyRequest) Validate() error               { return nil }
func (r *trickyRequest) Parameters() map[string]string { return nil }

func TestDataRejectsDisallowedMethod(t *testing.T) {
	_, err := request.Data(&trickyRequest{})

	var valErr *request.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "method", valErr.Field)
}

func TestCreateIntentValidation(t *testing.T) {
	t.Run("valid unconfirmed intent", func(t *testing.T) {
		req := &request.CreateIntent{Amount: 1000, Currency: "usd"}
		params, err := request.Data(req)
		require.NoError(t, err)
		assert.Equal(t, "1000", params["amount"])
		assert.Equal(t, "usd", params["currency"])
		assert.NotContains(t, params, "confirm")
	})

	t.Run("amount must be positive", func(t *testing.T) {
		req := &request.CreateIntent{Amount: 0, Currency: "usd"}
		_, err := request.Data(req)

		var valErr *request.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "amount", valErr.Field)
	})

	t.Run("confirm requires a payment method", func(t *testing.T) {
		req := &request.CreateIntent{Amount: 1000, Currency: "usd", Confirm: true}
		_, err := request.Data(req)

		var valErr *request.ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "payment_method", valErr.Field)
	})

	t.Run("unknown capture method", func(t *testing.T) {
		req := &request.CreateIntent{Amount: 1000, Currency: "usd", CaptureMethod: "eventually"}
		_, err := request.Data(req)
		assert.Error(t, err)
	})

	t.Run("metadata is flattened", func(t *testing.T) {
		req := &request.CreateIntent{
			Amount:   1000,
			Currency: "usd",
			Metadata: map[string]string{"order_id": "42"},
		}
		params, err := request.Data(req)
		require.NoError(t, err)
		assert.Equal(t, "42", params["metadata[order_id]"])
	})
}

func TestCaptureIntentValidation(t *testing.T) {
	req := &request.CaptureIntent{IntentID: "pi_1", AmountToCapture: 1500}

	params, err := request.Data(req)
	require.NoError(t, err)
	assert.Equal(t, "/intentions/pi_1/capture", req.Route())
	assert.Equal(t, "1500", params["amount_to_capture"])

	t.Run("requires intent id", func(t *testing.T) {
		_, err := request.Data(&request.CaptureIntent{AmountToCapture: 1500})
		assert.Error(t, err)
	})
}

func TestCredentialSelection(t *testing.T) {
	// Intent calls use the application credential, setup intent calls the
	// user-level one.
	assert.False(t, (&request.CreateIntent{}).UseUserToken())
	assert.False(t, (&request.CaptureIntent{}).UseUserToken())
	assert.True(t, (&request.CreateSetupIntent{}).UseUserToken())
	assert.True(t, (&request.GetSetupIntent{}).UseUserToken())
}

func TestListTransactionsParameters(t *testing.T) {
	req := &request.ListTransactions{
		Page:      2,
		PageSize:  25,
		SortBy:    "date",
		Direction: request.SortDescending,
		TypeIs:    "charge",
	}

	params, err := request.Data(req)
	require.NoError(t, err)
	assert.Equal(t, "2", params["page"])
	assert.Equal(t, "25", params["pagesize"])
	assert.Equal(t, "desc", params["direction"])
	assert.Equal(t, "charge", params["type_is"])
}

func TestHeaders(t *testing.T) {
	req := &request.GetIntent{IntentID: "pi_1"}
	assert.Nil(t, req.Headers())

	req.AddHeader("Idempotency-Key", "key-1")
	assert.Equal(t, "key-1", req.Headers()["Idempotency-Key"])
}
