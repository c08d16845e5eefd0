package http

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/identity-service/internal/api/http/handlers"
	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/internal/repository"
	"github.com/spec-kit/identity-service/internal/service"
)

type testServer struct {
	app   *fiber.App
	clock *time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	now := time.Date(2011, 4, 23, 12, 0, 0, 0, time.UTC)
	s := &testServer{clock: &now}

	cfg := config.Config{
		App:   config.AppConfig{Name: "identity-service", Version: "v1.0"},
		Auth:  config.AuthConfig{TokenTTLMinutes: 60, TokenHeader: "X-Auth-Token", BcryptCost: bcrypt.MinCost},
		Store: config.StoreConfig{ListDefaultLimit: 10, ListMaxLimit: 100},
	}
	users := repository.NewMemoryUserRepository()
	for _, u := range []struct {
		name    string
		role    domain.Role
		enabled bool
	}{
		{"admin", domain.RoleAdmin, true},
		{"joeuser", domain.RoleMember, true},
		{"disabled", domain.RoleMember, false},
	} {
		hash, err := auth.HashPassword("secrete", bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, users.Create(context.Background(), &domain.User{
			ID: "u-" + u.name, Username: u.name, PasswordHash: hash, TenantID: "1234", Role: u.role, Enabled: u.enabled,
		}))
	}

	tokens := auth.NewTokenStore(repository.NewMemoryTokenRepository(), auth.WithClock(func() time.Time { return *s.clock }))
	authorizer := auth.NewAuthorizer(tokens, users, zap.NewNop())
	deps := service.RegistryDependencies{
		TenantRepo: repository.NewMemoryTenantRepository(),
		GroupRepo:  repository.NewMemoryGroupRepository(),
		Authorizer: authorizer,
	}
	identity := service.NewIdentityService(
		service.NewAuthService(cfg, service.AuthDependencies{UserRepo: users, TenantRepo: deps.TenantRepo, TokenStore: tokens, Authorizer: authorizer}),
		service.NewTenantService(cfg, deps),
		service.NewGroupService(cfg, deps),
	)

	metrics := observability.NewMetrics()
	s.app = NewApp(cfg.App.Name)
	RegisterMiddlewares(s.app, zap.NewNop(), metrics, time.Second)
	RegisterRoutes(s.app, RouteConfig{
		APIVersion:      "v1.0",
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil, metrics, zap.NewNop()),
		Version:         handlers.NewVersionHandler("v1.0"),
		Tokens:          handlers.NewTokenHandler(identity),
		Tenants:         handlers.NewTenantsHandler(identity),
		Groups:          handlers.NewGroupsHandler(identity),
		TokenMiddleware: auth.NewTokenMiddleware(cfg.Auth.TokenHeader),
	})
	return s
}

type call struct {
	method      string
	path        string
	body        string
	token       string
	contentType string
	accept      string
}

func (s *testServer) do(t *testing.T, c call) (int, string, string) {
	t.Helper()
	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	contentType := c.contentType
	if contentType == "" && c.body != "" {
		contentType = "application/json"
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.accept != "" {
		req.Header.Set("Accept", c.accept)
	}
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(raw)
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	status, _, body := s.do(t, call{
		method: fiber.MethodPost,
		path:   "/v1.0/token",
		body:   `{"passwordCredentials":{"username":"` + username + `","password":"secrete"}}`,
	})
	require.Equal(t, fiber.StatusOK, status, body)
	var doc struct {
		Auth struct {
			Token struct {
				ID string `json:"id"`
			} `json:"token"`
		} `json:"auth"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	return doc.Auth.Token.ID
}

func faultCode(t *testing.T, body string) string {
	t.Helper()
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &doc), body)
	require.Len(t, doc, 1)
	for k := range doc {
		return k
	}
	return ""
}

func TestTenantScenario(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin")
	tenant := `{"tenant":{"id":"1234","description":"A description ...","enabled":true}}`

	status, ctype, body := s.do(t, call{method: "POST", path: "/v1.0/tenants", body: tenant, token: admin})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "application/json", ctype)
	assert.JSONEq(t, `{"tenant":{"id":"1234","description":"A description ...","enabled":true}}`, body)

	status, _, body = s.do(t, call{method: "POST", path: "/v1.0/tenants", body: tenant, token: admin})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "tenantConflict", faultCode(t, body))

	status, _, _ = s.do(t, call{method: "GET", path: "/v1.0/tenants/1234", token: admin})
	assert.Equal(t, fiber.StatusOK, status)

	status, _, body = s.do(t, call{method: "PUT", path: "/v1.0/tenants/1234", body: `{"tenant":{"description":"changed"}}`, token: admin})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.JSONEq(t, `{"tenant":{"id":"1234","description":"changed","enabled":true}}`, body)

	status, _, _ = s.do(t, call{method: "PUT", path: "/v1.0/tenants/1234", body: `{"tenant":{"id":"9999","description":"x"}}`, token: admin})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, body = s.do(t, call{method: "DELETE", path: "/v1.0/tenants/1234", token: admin})
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.Empty(t, body)

	status, _, body = s.do(t, call{method: "GET", path: "/v1.0/tenants/1234", token: admin})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "itemNotFound", faultCode(t, body))
}

func TestGroupUnderMissingTenant(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin")

	status, _, body := s.do(t, call{method: "POST", path: "/v1.0/tenant/ghost/groups", body: `{"group":{"id":"ops","description":"d"}}`, token: admin})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "itemNotFound", faultCode(t, body))

	status, _, _ = s.do(t, call{method: "POST", path: "/v1.0/tenants", body: `{"tenant":{"id":"1234","description":"d"}}`, token: admin})
	require.Equal(t, fiber.StatusCreated, status)

	status, _, body = s.do(t, call{method: "POST", path: "/v1.0/tenant/1234/groups", body: `{"group":{"id":"ops","description":"d"}}`, token: admin})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.JSONEq(t, `{"group":{"id":"ops","tenantId":"1234","description":"d"}}`, body)

	status, _, body = s.do(t, call{method: "POST", path: "/v1.0/tenant/1234/groups", body: `{"group":{"id":"ops","description":"d"}}`, token: admin})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "groupConflict", faultCode(t, body))

	status, _, _ = s.do(t, call{method: "DELETE", path: "/v1.0/tenant/1234/groups/ops", token: admin})
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestAuthorizationFaults(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin")
	member := s.login(t, "joeuser")

	status, _, body := s.do(t, call{method: "GET", path: "/v1.0/tenants"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", faultCode(t, body))

	status, _, body = s.do(t, call{method: "GET", path: "/v1.0/tenants", token: member})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "forbidden", faultCode(t, body))

	status, _, _ = s.do(t, call{method: "GET", path: "/v1.0/tenants", token: "not-a-token"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	*s.clock = s.clock.Add(2 * time.Hour)
	status, _, body = s.do(t, call{method: "GET", path: "/v1.0/tenants", token: admin})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "token expired")
}

func TestAuthenticateFaults(t *testing.T) {
	s := newTestServer(t)

	status, _, _ := s.do(t, call{method: "POST", path: "/v1.0/token", body: `{"passwordCredentials":{"username":"disabled","password":"secrete"}}`})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = s.do(t, call{method: "POST", path: "/v1.0/token", body: `{"passwordCredentials":{"username":"joeuser","password":"wrong"}}`})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _, body := s.do(t, call{method: "POST", path: "/v1.0/token", body: `{"passwordCredentials":{"username":"joeuser","password":"secrete","color":"red"}}`})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "badRequest", faultCode(t, body))

	status, _, _ = s.do(t, call{method: "POST", path: "/v1.0/token", body: `{}`})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, _ = s.do(t, call{method: "POST", path: "/v1.0/token", body: `username=joeuser`, contentType: "application/x-www-form-urlencoded"})
	assert.Equal(t, fiber.StatusUnsupportedMediaType, status)
}

func TestValidateAndRevokeToken(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin")
	member := s.login(t, "joeuser")

	status, _, body := s.do(t, call{method: "GET", path: "/v1.0/token/" + member + "?belongsTo=1234", token: admin})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Contains(t, body, `"username":"joeuser"`)

	status, _, _ = s.do(t, call{method: "GET", path: "/v1.0/token/" + member + "?belongsTo=9999", token: admin})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _, _ = s.do(t, call{method: "DELETE", path: "/v1.0/token/" + admin, token: member})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = s.do(t, call{method: "DELETE", path: "/v1.0/token/" + member, token: admin})
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _, _ = s.do(t, call{method: "GET", path: "/v1.0/token/" + member, token: admin})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _, _ = s.do(t, call{method: "DELETE", path: "/v1.0/token/" + member, token: admin})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestXMLRoundTrip(t *testing.T) {
	s := newTestServer(t)

	status, ctype, body := s.do(t, call{
		method:      "POST",
		path:        "/v1.0/token",
		body:        `<?xml version="1.0" encoding="UTF-8"?><passwordCredentials xmlns="http://docs.openstack.org/idm/api/v1.0" password="secrete" username="admin" tenantId="1234"/>`,
		contentType: "application/xml",
		accept:      "application/xml",
	})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "application/xml", ctype)

	var authDoc struct {
		Token struct {
			ID string `xml:"id,attr"`
		} `xml:"token"`
	}
	require.NoError(t, xml.Unmarshal([]byte(body), &authDoc))
	admin := authDoc.Token.ID
	require.NotEmpty(t, admin)

	status, _, body = s.do(t, call{
		method:      "POST",
		path:        "/v1.0/tenants",
		body:        `<tenant xmlns="http://docs.openstack.org/idm/api/v1.0" enabled="true" id="1234"><description>A description...</description></tenant>`,
		contentType: "application/xml",
		accept:      "application/xml",
		token:       admin,
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Contains(t, body, `<tenant xmlns="http://docs.openstack.org/idm/api/v1.0" id="1234" enabled="true"><description>A description...</description></tenant>`)

	status, _, body = s.do(t, call{method: "GET", path: "/v1.0/tenants/ghost", accept: "application/xml", token: admin})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, body, `<itemNotFound xmlns="http://docs.openstack.org/idm/api/v1.0" code="404">`)

	status, _, _ = s.do(t, call{
		method:      "POST",
		path:        "/v1.0/tenants",
		body:        `<tenant id="5678" owner="x"><description>d</description></tenant>`,
		contentType: "application/xml",
		token:       admin,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestTenantListPagination(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin")
	for _, id := range []string{"a", "b", "c"} {
		status, _, _ := s.do(t, call{method: "POST", path: "/v1.0/tenants", body: `{"tenant":{"id":"` + id + `","description":"d"}}`, token: admin})
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, _, body := s.do(t, call{method: "GET", path: "/v1.0/tenants?limit=2", token: admin})
	require.Equal(t, fiber.StatusOK, status, body)
	var page struct {
		Tenants struct {
			Values []struct {
				ID string `json:"id"`
			} `json:"values"`
			Links []struct {
				Rel  string `json:"rel"`
				Href string `json:"href"`
			} `json:"links"`
		} `json:"tenants"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Tenants.Values, 2)
	require.Len(t, page.Tenants.Links, 1)
	assert.Equal(t, "next", page.Tenants.Links[0].Rel)
	assert.Contains(t, page.Tenants.Links[0].Href, "/v1.0/tenants?limit=2&marker=b")

	status, _, body = s.do(t, call{method: "GET", path: "/v1.0/tenants?marker=b", token: admin})
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"id":"c"`)
	assert.NotContains(t, body, `"id":"a"`)

	for _, bad := range []string{"0", "-1", "ten"} {
		status, _, _ = s.do(t, call{method: "GET", path: "/v1.0/tenants?limit=" + bad, token: admin})
		assert.Equal(t, fiber.StatusBadRequest, status, bad)
	}
}

func TestVersionAndExtensions(t *testing.T) {
	s := newTestServer(t)

	status, ctype, body := s.do(t, call{method: "GET", path: "/v1.0"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "application/json", ctype)
	assert.Contains(t, body, `"status":"ALPHA"`)
	assert.Contains(t, body, `"updated":"2011-04-23T00:00:00Z"`)

	status, ctype, body = s.do(t, call{method: "GET", path: "/v1.0/", accept: "application/xml"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "application/xml", ctype)
	assert.Contains(t, body, `status="ALPHA"`)

	status, _, body = s.do(t, call{method: "GET", path: "/v1.0/extensions"})
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"extensions":{"values":[]}}`, body)

	status, _, _ = s.do(t, call{method: "GET", path: "/v1.0/extensions/OS-KSADM"})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _, body = s.do(t, call{method: "GET", path: "/v1.0/nowhere"})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "itemNotFound", faultCode(t, body))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, _, _ := s.do(t, call{method: "GET", path: "/health/live"})
	assert.Equal(t, fiber.StatusOK, status)

	status, _, body := s.do(t, call{method: "GET", path: "/health/ready"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"ready"`)

	status, _, body = s.do(t, call{method: "GET", path: "/metrics"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "/health/live|GET|200")
}

func TestErrorMiddleware_RecoversPanicsAndTimeouts(t *testing.T) {
	app := NewApp("identity-service")
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	app.Get("/boom", func(*fiber.Ctx) error { panic("kaboom") })
	app.Get("/slow", func(*fiber.Ctx) error { return context.DeadlineExceeded })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Contains(t, body, "identityFault")
	assert.Equal(t, "internal server error", body["identityFault"]["message"])
	assert.NotContains(t, body["identityFault"]["message"], "kaboom")

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/slow", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
