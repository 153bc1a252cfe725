package order

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryTokenService stores payment tokens per user in memory. It backs the
// demo server and tests; production deployments plug in the store's token
// vault instead.
type MemoryTokenService struct {
	mu     sync.Mutex
	byUser map[string][]Token
}

func NewMemoryTokenService() *MemoryTokenService {
	return &MemoryTokenService{byUser: make(map[string][]Token)}
}

// AddTokenForUser creates a token for the instrument, reusing an existing
// token when the user already saved the same instrument.
func (s *MemoryTokenService) AddTokenForUser(ctx context.Context, userID, instrumentID string) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.byUser[userID] {
		if t.InstrumentID == instrumentID {
			return t, nil
		}
	}

	token := Token{ID: "token_" + uuid.NewString(), InstrumentID: instrumentID}
	s.byUser[userID] = append(s.byUser[userID], token)
	return token, nil
}

// TokensForUser lists the user's saved tokens, oldest first.
func (s *MemoryTokenService) TokensForUser(userID string) []Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Token, len(s.byUser[userID]))
	copy(out, s.byUser[userID])
	return out
}
