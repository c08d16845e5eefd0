package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/identity-service/internal/domain"
)

// TokenRepository persists issued tokens. Create must fail with
// ErrDuplicate rather than overwrite an existing id.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	GetByID(ctx context.Context, id string) (*domain.Token, error)
	Delete(ctx context.Context, id string) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type tokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository returns a Postgres-backed implementation.
func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &tokenRepository{pool: pool}
}

func (r *tokenRepository) Create(ctx context.Context, token *domain.Token) error {
	const query = `
        INSERT INTO tokens (id, user_id, tenant_id, issued_at, expires_at, enabled)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
        ON CONFLICT (id) DO NOTHING`

	cmd, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TenantID,
		token.IssuedAt,
		token.ExpiresAt,
		token.Enabled,
	)
	if err != nil {
		return pgError("create token", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *tokenRepository) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	const query = `
        SELECT id, user_id, COALESCE(tenant_id, ''), issued_at, expires_at, enabled
        FROM tokens WHERE id=$1`

	var token domain.Token
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&token.ID,
		&token.UserID,
		&token.TenantID,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.Enabled,
	); err != nil {
		return nil, pgError("get token", err)
	}
	return &token, nil
}

func (r *tokenRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE id=$1`, id)
	if err != nil {
		return pgError("delete token", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, pgError("purge tokens", err)
	}
	return int(cmd.RowsAffected()), nil
}
