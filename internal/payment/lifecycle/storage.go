package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/yourorg/payments-gateway/internal/statemachine"
)

// MemoryEntityStorage is an in-memory statemachine.EntityStorage.
type MemoryEntityStorage struct {
	mu       sync.RWMutex
	entities map[string]statemachine.EntityData
}

// NewMemoryEntityStorage creates an empty entity store.
func NewMemoryEntityStorage() *MemoryEntityStorage {
	return &MemoryEntityStorage{entities: make(map[string]statemachine.EntityData)}
}

// Store persists the entity keyed by its order id.
func (s *MemoryEntityStorage) Store(ctx context.Context, e *statemachine.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.OrderID()] = e.Data()
	return nil
}

// Load rehydrates the entity for an order id.
func (s *MemoryEntityStorage) Load(ctx context.Context, orderID string) (*statemachine.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.entities[orderID]
	if !ok {
		return nil, fmt.Errorf("no payment entity stored for order %s", orderID)
	}
	return statemachine.EntityFromData(data), nil
}
