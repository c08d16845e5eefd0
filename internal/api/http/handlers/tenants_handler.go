package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/service"
)

// TenantsHandler manages tenant endpoints.
type TenantsHandler struct {
	identity *service.IdentityService
}

// NewTenantsHandler constructs handler.
func NewTenantsHandler(identity *service.IdentityService) *TenantsHandler {
	return &TenantsHandler{identity: identity}
}

// Create POST /v1.0/tenants.
func (h *TenantsHandler) Create(c *fiber.Ctx) error {
	format, err := bodyFormat(c)
	if err != nil {
		return err
	}
	in, err := dto.DecodeTenant(format, c.Body())
	if err != nil {
		return err
	}

	req := service.TenantRequest{CallerToken: callerToken(c)}
	if in != nil {
		req.Tenant = in.ToTenant()
	}
	tenant, err := h.identity.CreateTenant(c.UserContext(), req)
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusCreated, dto.TenantDocument(tenant))
}

// List GET /v1.0/tenants?marker=&limit=.
func (h *TenantsHandler) List(c *fiber.Ctx) error {
	marker, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.identity.ListTenants(c.UserContext(), service.ListTenantsRequest{
		CallerToken: callerToken(c),
		Marker:      marker,
		Limit:       limit,
	})
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusOK, dto.TenantsDocument(page, nextLinks(c, page.NextMarker, page.Limit)))
}

// Get GET /v1.0/tenants/:tenantId.
func (h *TenantsHandler) Get(c *fiber.Ctx) error {
	tenant, err := h.identity.GetTenant(c.UserContext(), service.TenantRef{
		CallerToken: callerToken(c),
		TenantID:    c.Params("tenantId"),
	})
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusOK, dto.TenantDocument(tenant))
}

// Update PUT /v1.0/tenants/:tenantId.
func (h *TenantsHandler) Update(c *fiber.Ctx) error {
	format, err := bodyFormat(c)
	if err != nil {
		return err
	}
	in, err := dto.DecodeTenant(format, c.Body())
	if err != nil {
		return err
	}

	req := service.TenantUpdateRequest{CallerToken: callerToken(c), TenantID: c.Params("tenantId")}
	if in != nil {
		req.Update = in.ToUpdate()
	}
	tenant, err := h.identity.UpdateTenant(c.UserContext(), req)
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusOK, dto.TenantDocument(tenant))
}

// Delete DELETE /v1.0/tenants/:tenantId.
func (h *TenantsHandler) Delete(c *fiber.Ctx) error {
	err := h.identity.DeleteTenant(c.UserContext(), service.TenantRef{
		CallerToken: callerToken(c),
		TenantID:    c.Params("tenantId"),
	})
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

