package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/repository"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

// AuthService authenticates credentials and validates or revokes tokens.
type AuthService struct {
	users      repository.UserRepository
	tenants    repository.TenantRepository
	tokens     *auth.TokenStore
	authorizer *auth.Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	tokenTTL   time.Duration
	bcryptCost int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	TenantRepo repository.TenantRepository
	TokenStore *auth.TokenStore
	Authorizer *auth.Authorizer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tenants:    deps.TenantRepo,
		tokens:     deps.TokenStore,
		authorizer: deps.Authorizer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		tokenTTL:   cfg.Auth.TokenTTL(),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Authenticate verifies credentials and issues a token. A disabled account
// is reported as Forbidden whatever the password; an unknown username is
// indistinguishable from a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Token, *domain.User, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return nil, nil, apperrors.NewBadRequest("expecting password credentials", nil)
	}

	user, err := s.users.GetByUsername(ctx, creds.Username)
	if errors.Is(err, repository.ErrNotFound) {
		auth.BurnComparison(creds.Password, s.bcryptCost)
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, nil, repository.ToFault(err, "user", nil)
	}

	if !user.Enabled {
		s.logger.Info("authentication refused for disabled account", zap.String("username", user.Username))
		return nil, nil, apperrors.NewForbidden("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, creds.Password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	scope, err := s.tokenScope(ctx, user, creds.TenantID)
	if err != nil {
		return nil, nil, err
	}
	token, err := s.tokens.Issue(ctx, user, scope, s.tokenTTL)
	if err != nil {
		return nil, nil, err
	}

	event := newEvent(events.EventTokenIssued, &domain.Identity{UserID: user.ID, Username: user.Username})
	event.TokenRef = auth.Fingerprint(token.ID)
	event.TenantID = token.TenantID
	publish(ctx, s.dispatcher, s.logger, event)

	return token, user, nil
}

// tokenScope picks the tenant the token is issued for. A member may only
// name their own tenant; an administrator may name any existing tenant.
func (s *AuthService) tokenScope(ctx context.Context, user *domain.User, hint string) (string, error) {
	if hint == "" || hint == user.TenantID {
		return user.TenantID, nil
	}
	if !user.IsAdmin() || s.tenants == nil {
		s.logger.Info("tenant scope refused", zap.String("username", user.Username), zap.String("tenant_id", hint))
		return "", apperrors.NewUnauthorized("user is not authorized for tenant")
	}
	if _, err := s.tenants.GetByID(ctx, hint); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewUnauthorized("user is not authorized for tenant")
		}
		return "", repository.ToFault(err, "tenant", nil)
	}
	return hint, nil
}

// ValidateToken checks tokenID on behalf of the caller. Neither token needs
// admin privilege. A belongsTo tenant that differs from the token scope is
// Unauthorized.
func (s *AuthService) ValidateToken(ctx context.Context, callerToken, tokenID, belongsTo string) (*domain.Identity, error) {
	if _, err := s.authorizer.Authorize(ctx, callerToken, false); err != nil {
		return nil, err
	}

	identity, err := s.authorizer.Authorize(ctx, tokenID, false)
	if err != nil {
		return nil, err
	}

	if belongsTo != "" && belongsTo != identity.TenantID {
		return nil, apperrors.NewUnauthorized("token does not belong to tenant")
	}
	return identity, nil
}

// RevokeToken revokes tokenID; the caller must hold an admin token.
func (s *AuthService) RevokeToken(ctx context.Context, adminToken, tokenID string) error {
	actor, err := s.authorizer.Authorize(ctx, adminToken, true)
	if err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, tokenID); err != nil {
		return err
	}

	event := newEvent(events.EventTokenRevoked, actor)
	event.TokenRef = auth.Fingerprint(tokenID)
	publish(ctx, s.dispatcher, s.logger, event)
	return nil
}
