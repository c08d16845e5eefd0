package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/repository"
)

// Bootstrap seeds the records the service cannot run without.
type Bootstrap struct {
	users   repository.UserRepository
	tenants repository.TenantRepository
	cfg     config.AuthConfig
	logger  *zap.Logger
}

// NewBootstrap constructs a Bootstrap.
func NewBootstrap(cfg config.AuthConfig, users repository.UserRepository, tenants repository.TenantRepository, logger *zap.Logger) *Bootstrap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrap{users: users, tenants: tenants, cfg: cfg, logger: logger}
}

// EnsureAdmin creates the configured admin user, and its home tenant when
// one is named, unless they already exist.
func (b *Bootstrap) EnsureAdmin(ctx context.Context) error {
	existing, err := b.users.GetByUsername(ctx, b.cfg.AdminUsername)
	if err == nil {
		if !existing.IsAdmin() {
			b.logger.Warn("bootstrap admin exists without admin role", zap.String("username", existing.Username))
		}
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup admin user: %w", err)
	}
	if b.cfg.AdminPassword == "" {
		b.logger.Warn("no admin user and AUTH_ADMIN_PASSWORD unset; skipping bootstrap", zap.String("username", b.cfg.AdminUsername))
		return nil
	}

	if b.cfg.AdminTenant != "" {
		tenant := &domain.Tenant{ID: b.cfg.AdminTenant, Description: "Administrative tenant", Enabled: true}
		if err := b.tenants.Create(ctx, tenant); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("create admin tenant: %w", err)
		}
	}

	hash, err := auth.HashPassword(b.cfg.AdminPassword, b.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &domain.User{
		ID:           uuid.NewString(),
		Username:     b.cfg.AdminUsername,
		PasswordHash: hash,
		TenantID:     b.cfg.AdminTenant,
		Role:         domain.RoleAdmin,
		Enabled:      true,
	}
	if err := b.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}

	b.logger.Info("bootstrap admin created", zap.String("username", admin.Username), zap.String("tenant_id", admin.TenantID))
	return nil
}
