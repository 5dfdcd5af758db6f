package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"survey-service/internal/domain"

	"github.com/google/uuid"
)

// TokenRepository persists token bindings (in-memory, Redis, SQL).
type TokenRepository interface {
	SaveToken(ctx context.Context, token domain.Token) error
	// LookupToken reports ok=false for unknown tokens; err is reserved for backend failures.
	LookupToken(ctx context.Context, value string) (domain.Token, bool, error)
}

// TokenStore issues opaque tokens and resolves them back to user names.
type TokenStore struct {
	repo  TokenRepository
	now   func() time.Time
	newID func() string
}

func NewTokenStore(repo TokenRepository) *TokenStore {
	return NewTokenStoreWithClock(repo, func() time.Time { return time.Now().UTC() }, uuid.NewString)
}

// NewTokenStoreWithClock is test-only for deterministic timestamps and token values.
func NewTokenStoreWithClock(repo TokenRepository, now func() time.Time, newID func() string) *TokenStore {
	return &TokenStore{repo: repo, now: now, newID: newID}
}

// IssueToken creates a new token bound to userName. Repeated calls for the same
// user always yield distinct tokens.
func (s *TokenStore) IssueToken(ctx context.Context, userName string) (domain.Token, error) {
	if strings.TrimSpace(userName) == "" {
		return domain.Token{}, fmt.Errorf("%w: user_name is required", domain.ErrInvalidInput)
	}
	token := domain.Token{
		Value:     s.newID(),
		UserName:  userName,
		CreatedAt: s.now(),
	}
	if err := s.repo.SaveToken(ctx, token); err != nil {
		return domain.Token{}, fmt.Errorf("save token: %w", err)
	}
	return token, nil
}

// ResolveToken returns the user bound to value. An unknown token is not an error.
func (s *TokenStore) ResolveToken(ctx context.Context, value string) (string, bool, error) {
	if value == "" {
		return "", false, nil
	}
	token, ok, err := s.repo.LookupToken(ctx, value)
	if err != nil {
		return "", false, fmt.Errorf("lookup token: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token.UserName, true, nil
}
