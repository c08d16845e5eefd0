package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/identity-service/internal/domain"
)

// The in-memory repositories back the default STORE_BACKEND=memory mode and
// the service tests. Each guards its own collection with one mutex, which
// makes create/update/delete on one key linearizable.

type memoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byLogin map[string]string
	now     func() time.Time
}

// NewMemoryUserRepository returns a process-local UserRepository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID:    make(map[string]domain.User),
		byLogin: make(map[string]string),
		now:     time.Now,
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; ok {
		return ErrDuplicate
	}
	if _, ok := r.byLogin[user.Username]; ok {
		return ErrDuplicate
	}
	now := r.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.byID[user.ID] = *user
	r.byLogin[user.Username] = user.ID
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byLogin[username]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}

type memoryTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]domain.Token
}

// NewMemoryTokenRepository returns a process-local TokenRepository.
func NewMemoryTokenRepository() TokenRepository {
	return &memoryTokenRepository{tokens: make(map[string]domain.Token)}
}

func (r *memoryTokenRepository) Create(_ context.Context, token *domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token.ID]; ok {
		return ErrDuplicate
	}
	r.tokens[token.ID] = *token
	return nil
}

func (r *memoryTokenRepository) GetByID(_ context.Context, id string) (*domain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.tokens[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &token, nil
}

func (r *memoryTokenRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[id]; !ok {
		return ErrNotFound
	}
	delete(r.tokens, id)
	return nil
}

func (r *memoryTokenRepository) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	purged := 0
	for id, token := range r.tokens {
		if token.ExpiresAt.Before(cutoff) {
			delete(r.tokens, id)
			purged++
		}
	}
	return purged, nil
}

type memoryTenantRepository struct {
	mu      sync.RWMutex
	tenants map[string]domain.Tenant
	now     func() time.Time
}

// NewMemoryTenantRepository returns a process-local TenantRepository.
func NewMemoryTenantRepository() TenantRepository {
	return &memoryTenantRepository{tenants: make(map[string]domain.Tenant), now: time.Now}
}

func (r *memoryTenantRepository) Create(_ context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[tenant.ID]; ok {
		return ErrDuplicate
	}
	now := r.now().UTC()
	tenant.Generation = uuid.NewString()
	tenant.CreatedAt, tenant.UpdatedAt = now, now
	r.tenants[tenant.ID] = *tenant
	return nil
}

func (r *memoryTenantRepository) GetByID(_ context.Context, id string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &tenant, nil
}

func (r *memoryTenantRepository) List(_ context.Context, marker string, limit int) ([]domain.Tenant, error) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.tenants))
	for id := range r.tenants {
		if id > marker {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	result := make([]domain.Tenant, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.tenants[id])
	}
	r.mu.RUnlock()
	return result, nil
}

func (r *memoryTenantRepository) Update(_ context.Context, id string, upd domain.TenantUpdate) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	upd.Apply(&tenant)
	tenant.UpdatedAt = r.now().UTC()
	r.tenants[id] = tenant
	return &tenant, nil
}

func (r *memoryTenantRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[id]; !ok {
		return ErrNotFound
	}
	delete(r.tenants, id)
	return nil
}

type memoryGroupRepository struct {
	mu     sync.RWMutex
	groups map[string]domain.TenantGroup
	now    func() time.Time
}

// NewMemoryGroupRepository returns a process-local GroupRepository.
func NewMemoryGroupRepository() GroupRepository {
	return &memoryGroupRepository{groups: make(map[string]domain.TenantGroup), now: time.Now}
}

// ownerPrefix joins with a NUL byte, which never appears in ids accepted by the service.
func ownerPrefix(owner domain.GroupOwner) string {
	return owner.TenantID + "\x00" + owner.Generation + "\x00"
}

func groupKey(owner domain.GroupOwner, groupID string) string {
	return ownerPrefix(owner) + groupID
}

func (r *memoryGroupRepository) Create(_ context.Context, group *domain.TenantGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := groupKey(group.Owner(), group.ID)
	if _, ok := r.groups[key]; ok {
		return ErrDuplicate
	}
	now := r.now().UTC()
	group.CreatedAt, group.UpdatedAt = now, now
	r.groups[key] = *group
	return nil
}

func (r *memoryGroupRepository) Get(_ context.Context, owner domain.GroupOwner, groupID string) (*domain.TenantGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	group, ok := r.groups[groupKey(owner, groupID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &group, nil
}

func (r *memoryGroupRepository) List(_ context.Context, owner domain.GroupOwner, marker string, limit int) ([]domain.TenantGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefix := ownerPrefix(owner)
	var result []domain.TenantGroup
	for key, group := range r.groups {
		if strings.HasPrefix(key, prefix) && group.ID > marker {
			result = append(result, group)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *memoryGroupRepository) Update(_ context.Context, owner domain.GroupOwner, groupID string, upd domain.GroupUpdate) (*domain.TenantGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := groupKey(owner, groupID)
	group, ok := r.groups[key]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Description != nil {
		group.Description = *upd.Description
	}
	group.UpdatedAt = r.now().UTC()
	r.groups[key] = group
	return &group, nil
}

func (r *memoryGroupRepository) Delete(_ context.Context, owner domain.GroupOwner, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := groupKey(owner, groupID)
	if _, ok := r.groups[key]; !ok {
		return ErrNotFound
	}
	delete(r.groups, key)
	return nil
}

func (r *memoryGroupRepository) Owners(_ context.Context) ([]domain.GroupOwner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[domain.GroupOwner]struct{})
	for _, group := range r.groups {
		seen[group.Owner()] = struct{}{}
	}
	owners := make([]domain.GroupOwner, 0, len(seen))
	for owner := range seen {
		owners = append(owners, owner)
	}
	sort.Slice(owners, func(i, j int) bool {
		if owners[i].TenantID != owners[j].TenantID {
			return owners[i].TenantID < owners[j].TenantID
		}
		return owners[i].Generation < owners[j].Generation
	})
	return owners, nil
}

func (r *memoryGroupRepository) DeleteByOwner(_ context.Context, owner domain.GroupOwner) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for key, group := range r.groups {
		if group.Owner() == owner {
			delete(r.groups, key)
			deleted++
		}
	}
	return deleted, nil
}
