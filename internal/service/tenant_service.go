package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/repository"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

// TenantService is the tenant registry. Every operation requires an admin token.
type TenantService struct {
	tenants      repository.TenantRepository
	authorizer   *auth.Authorizer
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	defaultLimit int
	maxLimit     int
}

// RegistryDependencies encapsulates collaborators shared by the registries.
type RegistryDependencies struct {
	TenantRepo repository.TenantRepository
	GroupRepo  repository.GroupRepository
	Authorizer *auth.Authorizer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTenantService constructs the service.
func NewTenantService(cfg config.Config, deps RegistryDependencies) *TenantService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{
		tenants:      deps.TenantRepo,
		authorizer:   deps.Authorizer,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		defaultLimit: cfg.Store.ListDefaultLimit,
		maxLimit:     cfg.Store.ListMaxLimit,
	}
}

// Create registers a new tenant.
func (s *TenantService) Create(ctx context.Context, token string, tenant *domain.Tenant) (*domain.Tenant, error) {
	actor, err := s.authorizer.Authorize(ctx, token, true)
	if err != nil {
		return nil, err
	}
	if err := validateID("tenant id", tenant.ID); err != nil {
		return nil, err
	}
	if err := validateDescription("description", tenant.Description); err != nil {
		return nil, err
	}

	created := &domain.Tenant{ID: tenant.ID, Description: tenant.Description, Enabled: tenant.Enabled}
	if err := s.tenants.Create(ctx, created); err != nil {
		return nil, repository.ToFault(err, "tenant", map[string]any{"tenant_id": tenant.ID})
	}

	s.publishTenant(ctx, events.EventTenantCreated, actor, created)
	return created, nil
}

// Get fetches a tenant.
func (s *TenantService) Get(ctx context.Context, token, id string) (*domain.Tenant, error) {
	if _, err := s.authorizer.Authorize(ctx, token, true); err != nil {
		return nil, err
	}
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, repository.ToFault(err, "tenant", map[string]any{"tenant_id": id})
	}
	return tenant, nil
}

// List returns one page of tenants ordered by id, after marker.
func (s *TenantService) List(ctx context.Context, token, marker string, limit int) (*domain.TenantPage, error) {
	if _, err := s.authorizer.Authorize(ctx, token, true); err != nil {
		return nil, err
	}
	limit, err := pageLimit(limit, s.defaultLimit, s.maxLimit)
	if err != nil {
		return nil, err
	}

	tenants, err := s.tenants.List(ctx, marker, limit+1)
	if err != nil {
		return nil, repository.ToFault(err, "tenant", nil)
	}

	page := &domain.TenantPage{Marker: marker, Limit: limit, Tenants: tenants}
	if len(tenants) > limit {
		page.Tenants = tenants[:limit]
		page.NextMarker = page.Tenants[limit-1].ID
	}
	return page, nil
}

// Update changes description and/or enabled. The id is immutable.
func (s *TenantService) Update(ctx context.Context, token, id string, upd domain.TenantUpdate) (*domain.Tenant, error) {
	actor, err := s.authorizer.Authorize(ctx, token, true)
	if err != nil {
		return nil, err
	}
	if upd.ID != "" && upd.ID != id {
		return nil, apperrors.NewBadRequest("tenant id cannot be changed", map[string]any{"tenant_id": id})
	}
	if upd.Empty() {
		return nil, apperrors.NewBadRequest("expecting description or enabled", nil)
	}
	if upd.Description != nil {
		if err := validateDescription("description", *upd.Description); err != nil {
			return nil, err
		}
	}

	tenant, err := s.tenants.Update(ctx, id, upd)
	if err != nil {
		return nil, repository.ToFault(err, "tenant", map[string]any{"tenant_id": id})
	}

	s.publishTenant(ctx, events.EventTenantUpdated, actor, tenant)
	return tenant, nil
}

// Delete removes a tenant. Its groups are left in place and become
// unreachable until the reaper reclaims them.
func (s *TenantService) Delete(ctx context.Context, token, id string) error {
	actor, err := s.authorizer.Authorize(ctx, token, true)
	if err != nil {
		return err
	}
	if err := s.tenants.Delete(ctx, id); err != nil {
		return repository.ToFault(err, "tenant", map[string]any{"tenant_id": id})
	}

	event := newEvent(events.EventTenantDeleted, actor)
	event.TenantID = id
	publish(ctx, s.dispatcher, s.logger, event)
	return nil
}

func (s *TenantService) publishTenant(ctx context.Context, eventType events.EventType, actor *domain.Identity, tenant *domain.Tenant) {
	event := newEvent(eventType, actor)
	event.TenantID = tenant.ID
	event.Payload = events.TenantChangedPayload{Description: tenant.Description, Enabled: tenant.Enabled}
	publish(ctx, s.dispatcher, s.logger, event)
}
