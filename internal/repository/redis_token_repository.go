package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/identity-service/internal/domain"
)

type redisTokenRepository struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

type redisToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TenantID  string    `json:"tenant_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Enabled   bool      `json:"enabled"`
}

// NewRedisTokenRepository stores tokens as JSON strings. Each key expires
// retention after the token itself, so Redis performs the reclamation and a
// recently expired token can still be told apart from an unknown one.
func NewRedisTokenRepository(client *redis.Client, prefix string, retention time.Duration) TokenRepository {
	return &redisTokenRepository{client: client, prefix: prefix, retention: retention}
}

func (r *redisTokenRepository) key(id string) string {
	return r.prefix + id
}

func (r *redisTokenRepository) Create(ctx context.Context, token *domain.Token) error {
	payload, err := json.Marshal(redisToken{
		ID:        token.ID,
		UserID:    token.UserID,
		TenantID:  token.TenantID,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
		Enabled:   token.Enabled,
	})
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	err = r.client.SetArgs(ctx, r.key(token.ID), payload, redis.SetArgs{
		Mode:     "NX",
		ExpireAt: token.ExpiresAt.Add(r.retention),
	}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrDuplicate
	}
	return redisError("create token", err)
}

func (r *redisTokenRepository) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		return nil, redisError("get token", err)
	}
	var stored redisToken
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", id, err)
	}
	return &domain.Token{
		ID:        stored.ID,
		UserID:    stored.UserID,
		TenantID:  stored.TenantID,
		IssuedAt:  stored.IssuedAt,
		ExpiresAt: stored.ExpiresAt,
		Enabled:   stored.Enabled,
	}, nil
}

func (r *redisTokenRepository) Delete(ctx context.Context, id string) error {
	deleted, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return redisError("delete token", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpiredBefore is a no-op: key expiry already reclaims tokens.
func (r *redisTokenRepository) DeleteExpiredBefore(context.Context, time.Time) (int, error) {
	return 0, nil
}

func redisError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
