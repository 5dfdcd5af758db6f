package memory

import (
	"context"
	"sync"

	"survey-service/internal/domain"
)

// TokenStore is an in-memory implementation of app.TokenRepository.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]domain.Token
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]domain.Token),
	}
}

func (s *TokenStore) SaveToken(_ context.Context, token domain.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Value] = token
	return nil
}

func (s *TokenStore) LookupToken(_ context.Context, value string) (domain.Token, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[value]
	return token, ok, nil
}
