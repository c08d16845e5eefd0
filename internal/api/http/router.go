package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/http/handlers"
	"github.com/spec-kit/identity-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	APIVersion      string
	Health          *handlers.HealthHandler
	Version         *handlers.VersionHandler
	Contract        *handlers.ContractHandler
	Tokens          *handlers.TokenHandler
	Tenants         *handlers.TenantsHandler
	Groups          *handlers.GroupsHandler
	TokenMiddleware *auth.TokenMiddleware
}

// NewApp builds a Fiber app with the settings the routes rely on.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               name,
		UnescapePath:          true,
		DisableStartupMessage: true,
	})
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	version := cfg.APIVersion
	if version == "" {
		version = "v1.0"
	}
	api := app.Group("/"+version, cfg.TokenMiddleware.Handle)

	api.Get("/", cfg.Version.Version)
	api.Get("/extensions", cfg.Version.Extensions)
	api.Get("/extensions/:alias", cfg.Version.Extension)

	contract := cfg.Contract
	if contract == nil {
		contract = handlers.NewContractHandler(nil)
	}
	api.Get("/idmdevguide.pdf", contract.DevGuide)
	api.Get("/identity.wadl", contract.WADL)
	api.Get("/xsd/:xsd", contract.Schema)
	api.Get("/xsd/atom/:xsd", contract.AtomSchema)

	api.Post("/token", cfg.Tokens.Authenticate)
	api.Get("/token/:tokenId", cfg.Tokens.Validate)
	api.Delete("/token/:tokenId", cfg.Tokens.Revoke)

	api.Post("/tenants", cfg.Tenants.Create)
	api.Get("/tenants", cfg.Tenants.List)
	api.Get("/tenants/:tenantId", cfg.Tenants.Get)
	api.Put("/tenants/:tenantId", cfg.Tenants.Update)
	api.Delete("/tenants/:tenantId", cfg.Tenants.Delete)

	api.Post("/tenant/:tenantId/groups", cfg.Groups.Create)
	api.Get("/tenant/:tenantId/groups", cfg.Groups.List)
	api.Get("/tenant/:tenantId/groups/:groupId", cfg.Groups.Get)
	api.Put("/tenant/:tenantId/groups/:groupId", cfg.Groups.Update)
	api.Delete("/tenant/:tenantId/groups/:groupId", cfg.Groups.Delete)
}
