package storage_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payments-gateway/internal/order"
	"github.com/yourorg/payments-gateway/internal/payment"
	"github.com/yourorg/payments-gateway/internal/payment/storage"
)

func sampleData() payment.Data {
	return payment.Data{
		Flags:         int(payment.ManualCapture | payment.Recurring),
		PaymentMethod: map[string]any{"type": "saved", "token": "tok_1", "id": "pm_1"},
		Vars:          map[string]any{"intent_id": "pi_1"},
		Logs: []payment.VarChange{
			{Key: "intent_id", New: "pi_1", Stage: payment.StageAction, Step: "standard-payment"},
		},
	}
}

func TestOrderMetaStorage(t *testing.T) {
	orders := order.NewMemoryService()
	ord := order.NewMemoryOrder("42", 1000, "usd")
	orders.Add(ord)

	store := storage.NewOrderMetaStorage(orders)
	ctx := context.Background()

	t.Run("load before store", func(t *testing.T) {
		_, err := store.Load(ctx, "42")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("round trip through order meta", func(t *testing.T) {
		require.NoError(t, store.Store(ctx, "42", sampleData()))

		// The state lives in the order's metadata as a JSON document.
		raw, ok := ord.Meta(storage.MetaKey)
		require.True(t, ok)
		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &doc))
		assert.Contains(t, doc, "flags")
		assert.Contains(t, doc, "payment_method")
		assert.Contains(t, doc, "vars")
		assert.Contains(t, doc, "logs")

		loaded, err := store.Load(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, sampleData().Flags, loaded.Flags)
		assert.Equal(t, "pi_1", loaded.Vars["intent_id"])
		assert.Equal(t, "tok_1", loaded.PaymentMethod["token"])
		require.Len(t, loaded.Logs, 1)
		assert.Equal(t, payment.StageAction, loaded.Logs[0].Stage)
	})

	t.Run("unknown order", func(t *testing.T) {
		err := store.Store(ctx, "999", sampleData())
		assert.Error(t, err)

		_, err = store.Load(ctx, "999")
		assert.Error(t, err)
	})
}

func TestMemoryStorage(t *testing.T) {
	store := storage.NewMemoryStorage()
	ctx := context.Background()

	_, err := store.Load(ctx, "42")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Store(ctx, "42", sampleData()))
	assert.Equal(t, 1, store.StoreCount)

	loaded, err := store.Load(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", loaded.Vars["intent_id"])
}
