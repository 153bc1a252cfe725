// Package storage persists serialized payment state keyed by order id. The
// production implementation writes the document into order metadata, so the
// state shares the order's durability and survives across redirects.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/yourorg/payments-gateway/internal/order"
	"github.com/yourorg/payments-gateway/internal/payment"
)

// ErrNotFound is returned when no payment state exists for an id.
var ErrNotFound = errors.New("payment storage: no stored state")

// MetaKey is the order meta key the payment document is stored under.
const MetaKey = "_payment_state"

// OrderMetaStorage stores payment state as a JSON document in order meta.
type OrderMetaStorage struct {
	orders order.Service
}

// NewOrderMetaStorage creates storage backed by the order service.
func NewOrderMetaStorage(orders order.Service) *OrderMetaStorage {
	if orders == nil {
		panic("order service cannot be nil")
	}
	return &OrderMetaStorage{orders: orders}
}

// Store serializes the payment data into the order's metadata.
func (s *OrderMetaStorage) Store(ctx context.Context, id string, data payment.Data) error {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("payment storage: loading order %s: %w", id, err)
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("payment storage: encoding state for order %s: %w", id, err)
	}
	o.SetMeta(MetaKey, string(encoded))
	return o.Save(ctx)
}

// Load rehydrates the payment data from the order's metadata.
func (s *OrderMetaStorage) Load(ctx context.Context, id string) (payment.Data, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return payment.Data{}, fmt.Errorf("payment storage: loading order %s: %w", id, err)
	}
	raw, ok := o.Meta(MetaKey)
	if !ok {
		return payment.Data{}, ErrNotFound
	}
	var data payment.Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return payment.Data{}, fmt.Errorf("payment storage: decoding state for order %s: %w", id, err)
	}
	return data, nil
}

// MemoryStorage is an in-memory payment.Storage for tests.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]payment.Data

	// StoreCount tracks how many times Store was called, for assertions.
	StoreCount int
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]payment.Data)}
}

// Store keeps a JSON round-tripped copy so stored state behaves like the
// order-meta implementation.
func (s *MemoryStorage) Store(ctx context.Context, id string, data payment.Data) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var copied payment.Data
	if err := json.Unmarshal(encoded, &copied); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = copied
	s.StoreCount++
	return nil
}

// Load returns the stored state for an id.
func (s *MemoryStorage) Load(ctx context.Context, id string) (payment.Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[id]
	if !ok {
		return payment.Data{}, ErrNotFound
	}
	return data, nil
}
