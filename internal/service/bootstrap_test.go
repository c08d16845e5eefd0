package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/repository"
)

func TestBootstrap_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	tenants := repository.NewMemoryTenantRepository()
	cfg := config.AuthConfig{AdminUsername: "root", AdminPassword: "s3cret", AdminTenant: "admin", BcryptCost: bcrypt.MinCost}

	boot := NewBootstrap(cfg, users, tenants, zap.NewNop())
	require.NoError(t, boot.EnsureAdmin(ctx))
	require.NoError(t, boot.EnsureAdmin(ctx))

	admin, err := users.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.Enabled)
	assert.Equal(t, "admin", admin.TenantID)
	assert.NoError(t, auth.ComparePassword(admin.PasswordHash, "s3cret"))

	tenant, err := tenants.GetByID(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, tenant.Enabled)
}

func TestBootstrap_SkipsWithoutPassword(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()

	boot := NewBootstrap(config.AuthConfig{AdminUsername: "root"}, users, repository.NewMemoryTenantRepository(), nil)
	require.NoError(t, boot.EnsureAdmin(ctx))

	_, err := users.GetByUsername(ctx, "root")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
