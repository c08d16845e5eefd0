package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/identity-service/internal/domain"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

func TestFacade_NilPayloadIsBadRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.facade.Authenticate(ctx, AuthenticateRequest{})
	requireKind(t, err, apperrors.KindBadRequest)

	// Shape is checked before the token because there is no request to authorize.
	_, err = f.facade.CreateTenant(ctx, TenantRequest{})
	requireKind(t, err, apperrors.KindBadRequest)

	_, err = f.facade.UpdateTenant(ctx, TenantUpdateRequest{TenantID: "1234"})
	requireKind(t, err, apperrors.KindBadRequest)

	_, err = f.facade.CreateTenantGroup(ctx, GroupRequest{TenantID: "1234"})
	requireKind(t, err, apperrors.KindBadRequest)

	_, err = f.facade.UpdateTenantGroup(ctx, GroupUpdateRequest{TenantID: "1234", GroupID: "ops"})
	requireKind(t, err, apperrors.KindBadRequest)
}

func TestFacade_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.facade.Authenticate(ctx, AuthenticateRequest{Credentials: &domain.Credentials{Username: "admin", Password: "secrete"}})
	require.NoError(t, err)
	admin := result.Token.ID

	tenant, err := f.facade.CreateTenant(ctx, TenantRequest{CallerToken: admin, Tenant: &domain.Tenant{ID: "1234", Description: "d", Enabled: true}})
	require.NoError(t, err)
	assert.Equal(t, "1234", tenant.ID)

	_, err = f.facade.CreateTenant(ctx, TenantRequest{CallerToken: admin, Tenant: &domain.Tenant{ID: "1234", Description: "d"}})
	requireKind(t, err, apperrors.KindConflict)

	_, err = f.facade.UpdateTenant(ctx, TenantUpdateRequest{CallerToken: admin, TenantID: "1234", Update: &domain.TenantUpdate{Description: strPtr("new")}})
	require.NoError(t, err)

	page, err := f.facade.ListTenants(ctx, ListTenantsRequest{CallerToken: admin})
	require.NoError(t, err)
	require.Len(t, page.Tenants, 1)

	_, err = f.facade.CreateTenantGroup(ctx, GroupRequest{CallerToken: admin, TenantID: "1234", Group: &domain.TenantGroup{ID: "ops", Description: "d"}})
	require.NoError(t, err)

	_, err = f.facade.UpdateTenantGroup(ctx, GroupUpdateRequest{CallerToken: admin, TenantID: "1234", GroupID: "ops", Update: &domain.GroupUpdate{Description: strPtr("x")}})
	require.NoError(t, err)

	group, err := f.facade.GetTenantGroup(ctx, GroupRef{CallerToken: admin, TenantID: "1234", GroupID: "ops"})
	require.NoError(t, err)
	assert.Equal(t, "x", group.Description)

	groups, err := f.facade.ListTenantGroups(ctx, ListGroupsRequest{CallerToken: admin, TenantID: "1234"})
	require.NoError(t, err)
	assert.Len(t, groups.Groups, 1)

	require.NoError(t, f.facade.DeleteTenantGroup(ctx, GroupRef{CallerToken: admin, TenantID: "1234", GroupID: "ops"}))
	require.NoError(t, f.facade.DeleteTenant(ctx, TenantRef{CallerToken: admin, TenantID: "1234"}))

	_, err = f.facade.GetTenant(ctx, TenantRef{CallerToken: admin, TenantID: "1234"})
	requireKind(t, err, apperrors.KindItemNotFound)

	identity, err := f.facade.ValidateToken(ctx, ValidateTokenRequest{CallerToken: admin, TokenID: admin})
	require.NoError(t, err)
	assert.Equal(t, "admin", identity.Username)

	require.NoError(t, f.facade.RevokeToken(ctx, RevokeTokenRequest{CallerToken: admin, TokenID: admin}))
	_, err = f.facade.ValidateToken(ctx, ValidateTokenRequest{CallerToken: admin, TokenID: admin})
	requireKind(t, err, apperrors.KindUnauthorized)
}

func TestFacade_PassesFaultsThroughUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.login(t, "joeuser")

	direct := func() error {
		_, err := f.tenantSvc.Get(ctx, member, "1234")
		return err
	}()
	_, viaFacade := f.facade.GetTenant(ctx, TenantRef{CallerToken: member, TenantID: "1234"})

	require.Error(t, viaFacade)
	assert.Equal(t, apperrors.ToDomainError(direct).Code, apperrors.ToDomainError(viaFacade).Code)
	assert.Equal(t, direct.Error(), viaFacade.Error())
}
