package order

import (
	"context"
	"fmt"
	"sync"
)

// MemoryOrder is an in-memory Order used by tests and the demo server.
type MemoryOrder struct {
	mu sync.Mutex

	OrderID     string
	OrderNumber string
	Name        string
	Email       string
	User        string
	Amount      int64
	Refunded    int64
	Curr        string

	status string
	meta   map[string]string
	tokens []Token

	// SaveCount tracks how many times Save was called, for assertions.
	SaveCount int
}

// NewMemoryOrder creates an order with the given id, total and currency.
func NewMemoryOrder(id string, amount int64, currency string) *MemoryOrder {
	return &MemoryOrder{
		OrderID:     id,
		OrderNumber: id,
		Amount:      amount,
		Curr:        currency,
		status:      "pending",
		meta:        make(map[string]string),
	}
}

func (o *MemoryOrder) ID() string           { return o.OrderID }
func (o *MemoryOrder) Number() string       { return o.OrderNumber }
func (o *MemoryOrder) BillingName() string  { return o.Name }
func (o *MemoryOrder) BillingEmail() string { return o.Email }
func (o *MemoryOrder) UserID() string       { return o.User }
func (o *MemoryOrder) Total() int64         { return o.Amount }
func (o *MemoryOrder) TotalRefunded() int64 { return o.Refunded }
func (o *MemoryOrder) Currency() string     { return o.Curr }

func (o *MemoryOrder) Meta(key string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.meta[key]
	return v, ok
}

func (o *MemoryOrder) SetMeta(key, value string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.meta[key] = value
}

func (o *MemoryOrder) Status() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *MemoryOrder) SetStatus(status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = status
}

func (o *MemoryOrder) Tokens() []Token {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Token, len(o.tokens))
	copy(out, o.tokens)
	return out
}

func (o *MemoryOrder) AttachToken(t Token) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens = append(o.tokens, t)
}

func (o *MemoryOrder) Save(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.SaveCount++
	return nil
}

// MemoryService is an in-memory order Service.
type MemoryService struct {
	mu     sync.RWMutex
	orders map[string]Order
}

// NewMemoryService creates an empty in-memory order service.
func NewMemoryService() *MemoryService {
	return &MemoryService{orders: make(map[string]Order)}
}

// Add registers an order with the service.
func (s *MemoryService) Add(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID()] = o
}

// Get fetches an order by id.
func (s *MemoryService) Get(ctx context.Context, id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order not found for ID: %s", id)
	}
	return o, nil
}
