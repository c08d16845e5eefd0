package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/repository"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

// Authorizer resolves a presented token into an Identity. Liveness faults
// (401) are always decided before privilege faults (403).
type Authorizer struct {
	tokens *TokenStore
	users  repository.UserRepository
	logger *zap.Logger
}

// NewAuthorizer constructs an Authorizer.
func NewAuthorizer(tokens *TokenStore, users repository.UserRepository, logger *zap.Logger) *Authorizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authorizer{tokens: tokens, users: users, logger: logger}
}

// Authorize checks tokenID and, when requireAdmin is set, that its owner is
// an administrator.
func (a *Authorizer) Authorize(ctx context.Context, tokenID string, requireAdmin bool) (*domain.Identity, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil, apperrors.NewUnauthorized("missing credentials")
	}

	token, err := a.tokens.Lookup(ctx, tokenID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			a.logger.Debug("token expired", zap.String("token_ref", Fingerprint(tokenID)))
			return nil, apperrors.NewUnauthorized("token expired")
		case apperrors.IsNotFound(err):
			a.logger.Debug("token not found", zap.String("token_ref", Fingerprint(tokenID)))
			return nil, apperrors.NewUnauthorized("invalid token")
		default:
			return nil, err
		}
	}

	user, err := a.users.GetByID(ctx, token.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		a.logger.Debug("token owner missing", zap.String("token_ref", Fingerprint(tokenID)), zap.String("user_id", token.UserID))
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	if err != nil {
		return nil, repository.ToFault(err, "user", nil)
	}

	if !token.Enabled || !user.Enabled {
		return nil, apperrors.NewForbidden("account disabled")
	}
	if requireAdmin && !user.IsAdmin() {
		return nil, apperrors.NewForbidden("insufficient privilege")
	}

	return &domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		TenantID: token.TenantID,
		Role:     user.Role,
		Admin:    user.IsAdmin(),
		Token:    token,
	}, nil
}
