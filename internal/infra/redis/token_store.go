package redis

import (
	"context"
	"time"

	"survey-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// TokenStore is a Redis-backed implementation of app.TokenRepository.
// Each token is a hash:  HSET survey:token:{token} user_name {name} created_at {RFC3339}
// Tokens never expire, so no TTL is set.
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func (s *TokenStore) SaveToken(ctx context.Context, token domain.Token) error {
	return s.client.HSet(ctx, s.key(token.Value),
		"user_name", token.UserName,
		"created_at", token.CreatedAt.UTC().Format(time.RFC3339Nano),
	).Err()
}

func (s *TokenStore) LookupToken(ctx context.Context, value string) (domain.Token, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(value)).Result()
	if err != nil {
		return domain.Token{}, false, err
	}
	userName, ok := fields["user_name"]
	if !ok {
		return domain.Token{}, false, nil
	}
	token := domain.Token{Value: value, UserName: userName}
	if raw := fields["created_at"]; raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			token.CreatedAt = ts
		}
	}
	return token, true, nil
}

func (s *TokenStore) key(value string) string {
	return "survey:token:" + value
}
