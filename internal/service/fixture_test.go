package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/repository"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingDispatcher struct {
	events.Dispatcher
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.events = append(d.events, event)
	d.mu.Unlock()
	return d.Dispatcher.Publish(ctx, event)
}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	clock      *testClock
	cfg        config.Config
	users      repository.UserRepository
	tenants    repository.TenantRepository
	groups     repository.GroupRepository
	tokens     *auth.TokenStore
	dispatcher *recordingDispatcher
	auth       *AuthService
	tenantSvc  *TenantService
	groupSvc   *GroupService
	facade     *IdentityService
}

func testConfig() config.Config {
	return config.Config{
		Auth:  config.AuthConfig{TokenTTLMinutes: 60, TokenHeader: "X-Auth-Token", BcryptCost: bcrypt.MinCost},
		Store: config.StoreConfig{Backend: config.BackendMemory, TokenBackend: config.BackendMemory, ListDefaultLimit: 10, ListMaxLimit: 100},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:      &testClock{now: time.Date(2011, 4, 23, 12, 0, 0, 0, time.UTC)},
		cfg:        testConfig(),
		users:      repository.NewMemoryUserRepository(),
		tenants:    repository.NewMemoryTenantRepository(),
		groups:     repository.NewMemoryGroupRepository(),
		dispatcher: &recordingDispatcher{Dispatcher: events.NewInMemoryDispatcher()},
	}
	f.tokens = auth.NewTokenStore(repository.NewMemoryTokenRepository(), auth.WithClock(f.clock.Now))
	authorizer := auth.NewAuthorizer(f.tokens, f.users, zap.NewNop())

	f.auth = NewAuthService(f.cfg, AuthDependencies{
		UserRepo:   f.users,
		TenantRepo: f.tenants,
		TokenStore: f.tokens,
		Authorizer: authorizer,
		Dispatcher: f.dispatcher,
	})
	deps := RegistryDependencies{
		TenantRepo: f.tenants,
		GroupRepo:  f.groups,
		Authorizer: authorizer,
		Dispatcher: f.dispatcher,
	}
	f.tenantSvc = NewTenantService(f.cfg, deps)
	f.groupSvc = NewGroupService(f.cfg, deps)
	f.facade = NewIdentityService(f.auth, f.tenantSvc, f.groupSvc)

	f.addUser(t, "admin", "secrete", "", domain.RoleAdmin, true)
	f.addUser(t, "joeuser", "secrete", "1234", domain.RoleMember, true)
	f.addUser(t, "disabled", "secrete", "1234", domain.RoleAdmin, false)
	return f
}

func (f *fixture) addUser(t *testing.T, username, password, tenantID string, role domain.Role, enabled bool) {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), &domain.User{
		ID:           "u-" + username,
		Username:     username,
		PasswordHash: hash,
		TenantID:     tenantID,
		Role:         role,
		Enabled:      enabled,
	}))
}

func (f *fixture) login(t *testing.T, username string) string {
	t.Helper()
	token, _, err := f.auth.Authenticate(context.Background(), domain.Credentials{Username: username, Password: "secrete"})
	require.NoError(t, err)
	return token.ID
}

func (f *fixture) createTenant(t *testing.T, token, id string) *domain.Tenant {
	t.Helper()
	tenant, err := f.tenantSvc.Create(context.Background(), token, &domain.Tenant{ID: id, Description: "tenant " + id, Enabled: true})
	require.NoError(t, err)
	return tenant
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperrors.KindOf(err), "unexpected fault: %v", err)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
