package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/repository"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

type authorizerFixture struct {
	clock      *fakeClock
	store      *TokenStore
	authorizer *Authorizer
	users      repository.UserRepository
}

func newAuthorizerFixture(t *testing.T) *authorizerFixture {
	t.Helper()
	clock := newFakeClock()
	users := repository.NewMemoryUserRepository()
	ctx := context.Background()
	for _, u := range []domain.User{
		{ID: "admin", Username: "admin", Role: domain.RoleAdmin, Enabled: true},
		{ID: "joe", Username: "joeuser", Role: domain.RoleMember, Enabled: true, TenantID: "1234"},
		{ID: "off", Username: "disabled", Role: domain.RoleAdmin, Enabled: false},
	} {
		u := u
		require.NoError(t, users.Create(ctx, &u))
	}
	store := NewTokenStore(repository.NewMemoryTokenRepository(), WithClock(clock.Now))
	return &authorizerFixture{
		clock:      clock,
		store:      store,
		users:      users,
		authorizer: NewAuthorizer(store, users, zap.NewNop()),
	}
}

func (f *authorizerFixture) issue(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	token, err := f.store.Issue(context.Background(), &domain.User{ID: userID}, "1234", ttl)
	require.NoError(t, err)
	return token.ID
}

func TestAuthorizer_Ordering(t *testing.T) {
	f := newAuthorizerFixture(t)
	adminToken := f.issue(t, "admin", time.Hour)
	memberToken := f.issue(t, "joe", time.Hour)
	disabledToken := f.issue(t, "off", time.Hour)
	expiredToken := f.issue(t, "admin", time.Minute)
	orphanToken := f.issue(t, "ghost", time.Hour)
	f.clock.Advance(2 * time.Minute)

	cases := []struct {
		name         string
		token        string
		requireAdmin bool
		kind         apperrors.Kind
		message      string
	}{
		{"missing", "", true, apperrors.KindUnauthorized, "missing credentials"},
		{"blank", "   ", false, apperrors.KindUnauthorized, "missing credentials"},
		{"unknown", "nonexsitingtoken", true, apperrors.KindUnauthorized, "invalid token"},
		{"expired admin", expiredToken, true, apperrors.KindUnauthorized, "token expired"},
		{"owner gone", orphanToken, false, apperrors.KindUnauthorized, "invalid token"},
		{"disabled", disabledToken, true, apperrors.KindForbidden, "account disabled"},
		{"member needs admin", memberToken, true, apperrors.KindForbidden, "insufficient privilege"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.authorizer.Authorize(context.Background(), tc.token, tc.requireAdmin)
			require.Error(t, err)
			de := apperrors.ToDomainError(err)
			assert.Equal(t, tc.kind, de.Kind)
			assert.Equal(t, tc.message, de.Message)
		})
	}

	identity, err := f.authorizer.Authorize(context.Background(), adminToken, true)
	require.NoError(t, err)
	assert.True(t, identity.Admin)
	assert.Equal(t, "admin", identity.Username)
	assert.Equal(t, "1234", identity.TenantID)
}

func TestAuthorizer_MemberWithoutAdminRequirement(t *testing.T) {
	f := newAuthorizerFixture(t)
	memberToken := f.issue(t, "joe", time.Hour)

	identity, err := f.authorizer.Authorize(context.Background(), memberToken, false)
	require.NoError(t, err)
	assert.False(t, identity.Admin)
	assert.Equal(t, domain.RoleMember, identity.Role)
	assert.Equal(t, memberToken, identity.Token.ID)
}

func TestAuthorizer_RevokedTokenIsUnauthorized(t *testing.T) {
	f := newAuthorizerFixture(t)
	token := f.issue(t, "admin", time.Hour)
	require.NoError(t, f.store.Revoke(context.Background(), token))

	_, err := f.authorizer.Authorize(context.Background(), token, false)
	assert.True(t, apperrors.IsUnauthorized(err))
}
