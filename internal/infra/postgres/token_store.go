package postgres

import (
	"context"
	"errors"
	"fmt"

	"survey-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// TokenStore persists token bindings in the survey_tokens table.
type TokenStore struct {
	pool *pgxpool.Pool
}

func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

func (s *TokenStore) SaveToken(ctx context.Context, token domain.Token) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO survey_tokens (token, user_name, created_at) VALUES ($1, $2, $3)`,
		token.Value, token.UserName, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (s *TokenStore) LookupToken(ctx context.Context, value string) (domain.Token, bool, error) {
	token := domain.Token{Value: value}
	err := s.pool.QueryRow(ctx,
		`SELECT user_name, created_at FROM survey_tokens WHERE token=$1`, value,
	).Scan(&token.UserName, &token.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Token{}, false, nil
	}
	if err != nil {
		return domain.Token{}, false, fmt.Errorf("select token: %w", err)
	}
	return token, true, nil
}
