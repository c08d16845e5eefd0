package service

import (
	"context"

	"github.com/spec-kit/identity-service/internal/domain"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

// Request is implemented by every operation's input. Validate checks shape
// only: that the transport managed to build the payload the operation needs.
type Request interface {
	Validate() error
}

func missingPayload(what string) error {
	return apperrors.NewBadRequest("expecting "+what, nil)
}

// AuthenticateRequest carries password credentials.
type AuthenticateRequest struct {
	Credentials *domain.Credentials
}

func (r AuthenticateRequest) Validate() error {
	if r.Credentials == nil {
		return missingPayload("passwordCredentials")
	}
	return nil
}

// ValidateTokenRequest asks whether TokenID is live, optionally within BelongsTo.
type ValidateTokenRequest struct {
	CallerToken string
	TokenID     string
	BelongsTo   string
}

func (r ValidateTokenRequest) Validate() error { return nil }

// RevokeTokenRequest revokes TokenID.
type RevokeTokenRequest struct {
	CallerToken string
	TokenID     string
}

func (r RevokeTokenRequest) Validate() error { return nil }

// TenantRequest creates a tenant.
type TenantRequest struct {
	CallerToken string
	Tenant      *domain.Tenant
}

func (r TenantRequest) Validate() error {
	if r.Tenant == nil {
		return missingPayload("tenant")
	}
	return nil
}

// TenantUpdateRequest modifies the tenant named by TenantID.
type TenantUpdateRequest struct {
	CallerToken string
	TenantID    string
	Update      *domain.TenantUpdate
}

func (r TenantUpdateRequest) Validate() error {
	if r.Update == nil {
		return missingPayload("tenant")
	}
	return nil
}

// TenantRef addresses a single tenant.
type TenantRef struct {
	CallerToken string
	TenantID    string
}

func (r TenantRef) Validate() error { return nil }

// ListTenantsRequest pages through tenants. Limit zero selects the default.
type ListTenantsRequest struct {
	CallerToken string
	Marker      string
	Limit       int
}

func (r ListTenantsRequest) Validate() error { return nil }

// GroupRequest creates a group under TenantID.
type GroupRequest struct {
	CallerToken string
	TenantID    string
	Group       *domain.TenantGroup
}

func (r GroupRequest) Validate() error {
	if r.Group == nil {
		return missingPayload("group")
	}
	return nil
}

// GroupUpdateRequest modifies one group.
type GroupUpdateRequest struct {
	CallerToken string
	TenantID    string
	GroupID     string
	Update      *domain.GroupUpdate
}

func (r GroupUpdateRequest) Validate() error {
	if r.Update == nil {
		return missingPayload("group")
	}
	return nil
}

// GroupRef addresses a single group.
type GroupRef struct {
	CallerToken string
	TenantID    string
	GroupID     string
}

func (r GroupRef) Validate() error { return nil }

// ListGroupsRequest pages through one tenant's groups.
type ListGroupsRequest struct {
	CallerToken string
	TenantID    string
	Marker      string
	Limit       int
}

func (r ListGroupsRequest) Validate() error { return nil }

// AuthResult is the outcome of a successful authentication.
type AuthResult struct {
	Token *domain.Token
	User  *domain.User
}

// IdentityService is the single entry point the transport calls. It holds no
// state and returns component faults unchanged.
type IdentityService struct {
	auth    *AuthService
	tenants *TenantService
	groups  *GroupService
}

// NewIdentityService composes the components.
func NewIdentityService(authService *AuthService, tenants *TenantService, groups *GroupService) *IdentityService {
	return &IdentityService{auth: authService, tenants: tenants, groups: groups}
}

// Authenticate exchanges credentials for a token.
func (s *IdentityService) Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	token, user, err := s.auth.Authenticate(ctx, *req.Credentials)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// ValidateToken reports the identity behind a live token.
func (s *IdentityService) ValidateToken(ctx context.Context, req ValidateTokenRequest) (*domain.Identity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.auth.ValidateToken(ctx, req.CallerToken, req.TokenID, req.BelongsTo)
}

// RevokeToken revokes a token.
func (s *IdentityService) RevokeToken(ctx context.Context, req RevokeTokenRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.auth.RevokeToken(ctx, req.CallerToken, req.TokenID)
}

func (s *IdentityService) CreateTenant(ctx context.Context, req TenantRequest) (*domain.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.tenants.Create(ctx, req.CallerToken, req.Tenant)
}

func (s *IdentityService) GetTenant(ctx context.Context, req TenantRef) (*domain.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.tenants.Get(ctx, req.CallerToken, req.TenantID)
}

func (s *IdentityService) ListTenants(ctx context.Context, req ListTenantsRequest) (*domain.TenantPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.tenants.List(ctx, req.CallerToken, req.Marker, req.Limit)
}

func (s *IdentityService) UpdateTenant(ctx context.Context, req TenantUpdateRequest) (*domain.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.tenants.Update(ctx, req.CallerToken, req.TenantID, *req.Update)
}

func (s *IdentityService) DeleteTenant(ctx context.Context, req TenantRef) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.tenants.Delete(ctx, req.CallerToken, req.TenantID)
}

func (s *IdentityService) CreateTenantGroup(ctx context.Context, req GroupRequest) (*domain.TenantGroup, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.groups.Create(ctx, req.CallerToken, req.TenantID, req.Group)
}

func (s *IdentityService) GetTenantGroup(ctx context.Context, req GroupRef) (*domain.TenantGroup, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.groups.Get(ctx, req.CallerToken, req.TenantID, req.GroupID)
}

func (s *IdentityService) ListTenantGroups(ctx context.Context, req ListGroupsRequest) (*domain.GroupPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.groups.List(ctx, req.CallerToken, req.TenantID, req.Marker, req.Limit)
}

func (s *IdentityService) UpdateTenantGroup(ctx context.Context, req GroupUpdateRequest) (*domain.TenantGroup, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.groups.Update(ctx, req.CallerToken, req.TenantID, req.GroupID, *req.Update)
}

func (s *IdentityService) DeleteTenantGroup(ctx context.Context, req GroupRef) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.groups.Delete(ctx, req.CallerToken, req.TenantID, req.GroupID)
}
