package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/repository"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

// GroupService is the tenant group registry. The parent tenant is always
// resolved before the group, so a missing tenant wins over a missing group.
type GroupService struct {
	tenants      repository.TenantRepository
	groups       repository.GroupRepository
	authorizer   *auth.Authorizer
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	defaultLimit int
	maxLimit     int
}

// NewGroupService constructs the service.
func NewGroupService(cfg config.Config, deps RegistryDependencies) *GroupService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{
		tenants:      deps.TenantRepo,
		groups:       deps.GroupRepo,
		authorizer:   deps.Authorizer,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		defaultLimit: cfg.Store.ListDefaultLimit,
		maxLimit:     cfg.Store.ListMaxLimit,
	}
}

// requireTenant resolves the current incarnation of tenantID. Groups are
// only ever addressed through it, so groups left by a deleted tenant stay
// unreachable even after the id is re-created.
func (s *GroupService) requireTenant(ctx context.Context, tenantID string) (domain.GroupOwner, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return domain.GroupOwner{}, repository.ToFault(err, "tenant", map[string]any{"tenant_id": tenantID})
	}
	return tenant.Owner(), nil
}

// Create adds a group under tenantID. The tenant check and the insert
// are not atomic; a group created under a concurrently deleted tenant keeps
// the old generation and is reclaimed by the reaper.
func (s *GroupService) Create(ctx context.Context, token, tenantID string, group *domain.TenantGroup) (*domain.TenantGroup, error) {
	actor, err := s.authorizer.Authorize(ctx, token, true)
	if err != nil {
		return nil, err
	}
	if err := validateID("group id", group.ID); err != nil {
		return nil, err
	}
	if err := validateDescription("description", group.Description); err != nil {
		return nil, err
	}
	if group.TenantID != "" && group.TenantID != tenantID {
		return nil, apperrors.NewBadRequest("group tenant does not match path", map[string]any{"tenant_id": tenantID})
	}
	owner, err := s.requireTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	created := &domain.TenantGroup{
		ID:               group.ID,
		TenantID:         owner.TenantID,
		TenantGeneration: owner.Generation,
		Description:      group.Description,
	}
	if err := s.groups.Create(ctx, created); err != nil {
		return nil, repository.ToFault(err, "group", map[string]any{"tenant_id": tenantID, "group_id": group.ID})
	}

	s.publishGroup(ctx, events.EventGroupCreated, actor, created.TenantID, created.ID)
	return created, nil
}

// Get fetches one group.
func (s *GroupService) Get(ctx context.Context, token, tenantID, groupID string) (*domain.TenantGroup, error) {
	if _, err := s.authorizer.Authorize(ctx, token, true); err != nil {
		return nil, err
	}
	owner, err := s.requireTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	group, err := s.groups.Get(ctx, owner, groupID)
	if err != nil {
		return nil, repository.ToFault(err, "group", map[string]any{"tenant_id": tenantID, "group_id": groupID})
	}
	return group, nil
}

// List returns one page of a tenant's groups ordered by id.
func (s *GroupService) List(ctx context.Context, token, tenantID, marker string, limit int) (*domain.GroupPage, error) {
	if _, err := s.authorizer.Authorize(ctx, token, true); err != nil {
		return nil, err
	}
	owner, err := s.requireTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	limit, err = pageLimit(limit, s.defaultLimit, s.maxLimit)
	if err != nil {
		return nil, err
	}

	groups, err := s.groups.List(ctx, owner, marker, limit+1)
	if err != nil {
		return nil, repository.ToFault(err, "group", nil)
	}
	page := &domain.GroupPage{TenantID: tenantID, Marker: marker, Limit: limit, Groups: groups}
	if len(groups) > limit {
		page.Groups = groups[:limit]
		page.NextMarker = page.Groups[limit-1].ID
	}
	return page, nil
}

// Update changes a group's description.
func (s *GroupService) Update(ctx context.Context, token, tenantID, groupID string, upd domain.GroupUpdate) (*domain.TenantGroup, error) {
	actor, err := s.authorizer.Authorize(ctx, token, true)
	if err != nil {
		return nil, err
	}
	if upd.ID != "" && upd.ID != groupID {
		return nil, apperrors.NewBadRequest("group id cannot be changed", map[string]any{"group_id": groupID})
	}
	if upd.Description == nil {
		return nil, apperrors.NewBadRequest("expecting description", nil)
	}
	if err := validateDescription("description", *upd.Description); err != nil {
		return nil, err
	}
	owner, err := s.requireTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	group, err := s.groups.Update(ctx, owner, groupID, upd)
	if err != nil {
		return nil, repository.ToFault(err, "group", map[string]any{"tenant_id": tenantID, "group_id": groupID})
	}

	s.publishGroup(ctx, events.EventGroupUpdated, actor, tenantID, groupID)
	return group, nil
}

// Delete removes a group.
func (s *GroupService) Delete(ctx context.Context, token, tenantID, groupID string) error {
	actor, err := s.authorizer.Authorize(ctx, token, true)
	if err != nil {
		return err
	}
	owner, err := s.requireTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, owner, groupID); err != nil {
		return repository.ToFault(err, "group", map[string]any{"tenant_id": tenantID, "group_id": groupID})
	}

	s.publishGroup(ctx, events.EventGroupDeleted, actor, tenantID, groupID)
	return nil
}

// ReclaimOrphans deletes groups whose tenant incarnation no longer exists:
// the tenant is gone, or was re-created with a new generation. Only the
// stale generation is deleted, so groups of a tenant re-created during the
// pass are never touched.
func (s *GroupService) ReclaimOrphans(ctx context.Context) (int, error) {
	owners, err := s.groups.Owners(ctx)
	if err != nil {
		return 0, repository.ToFault(err, "group", nil)
	}

	reclaimed := 0
	for _, owner := range owners {
		tenant, err := s.tenants.GetByID(ctx, owner.TenantID)
		switch {
		case err == nil && tenant.Generation == owner.Generation:
			continue
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return reclaimed, repository.ToFault(err, "tenant", nil)
		}
		n, err := s.groups.DeleteByOwner(ctx, owner)
		if err != nil {
			return reclaimed, repository.ToFault(err, "group", nil)
		}
		if n > 0 {
			s.logger.Info("reclaimed orphaned groups",
				zap.String("tenant_id", owner.TenantID),
				zap.String("generation", owner.Generation),
				zap.Int("count", n))
			event := newEvent(events.EventGroupsReclaimed, nil)
			event.TenantID = owner.TenantID
			event.Payload = events.ReclaimedPayload{Count: n}
			publish(ctx, s.dispatcher, s.logger, event)
		}
		reclaimed += n
	}
	return reclaimed, nil
}

func (s *GroupService) publishGroup(ctx context.Context, eventType events.EventType, actor *domain.Identity, tenantID, groupID string) {
	event := newEvent(eventType, actor)
	event.TenantID = tenantID
	event.GroupID = groupID
	publish(ctx, s.dispatcher, s.logger, event)
}
