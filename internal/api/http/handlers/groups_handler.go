package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/service"
)

// GroupsHandler manages the groups of one tenant.
type GroupsHandler struct {
	identity *service.IdentityService
}

// NewGroupsHandler constructs handler.
func NewGroupsHandler(identity *service.IdentityService) *GroupsHandler {
	return &GroupsHandler{identity: identity}
}

// Create POST /v1.0/tenant/:tenantId/groups.
func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	format, err := bodyFormat(c)
	if err != nil {
		return err
	}
	in, err := dto.DecodeGroup(format, c.Body())
	if err != nil {
		return err
	}

	req := service.GroupRequest{CallerToken: callerToken(c), TenantID: c.Params("tenantId")}
	if in != nil {
		req.Group = in.ToGroup()
	}
	group, err := h.identity.CreateTenantGroup(c.UserContext(), req)
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusCreated, dto.GroupDocument(group))
}

// List GET /v1.0/tenant/:tenantId/groups?marker=&limit=.
func (h *GroupsHandler) List(c *fiber.Ctx) error {
	marker, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	page, err := h.identity.ListTenantGroups(c.UserContext(), service.ListGroupsRequest{
		CallerToken: callerToken(c),
		TenantID:    c.Params("tenantId"),
		Marker:      marker,
		Limit:       limit,
	})
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusOK, dto.GroupsDocument(page, nextLinks(c, page.NextMarker, page.Limit)))
}

// Get GET /v1.0/tenant/:tenantId/groups/:groupId.
func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	group, err := h.identity.GetTenantGroup(c.UserContext(), service.GroupRef{
		CallerToken: callerToken(c),
		TenantID:    c.Params("tenantId"),
		GroupID:     c.Params("groupId"),
	})
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusOK, dto.GroupDocument(group))
}

// Update PUT /v1.0/tenant/:tenantId/groups/:groupId.
func (h *GroupsHandler) Update(c *fiber.Ctx) error {
	format, err := bodyFormat(c)
	if err != nil {
		return err
	}
	in, err := dto.DecodeGroup(format, c.Body())
	if err != nil {
		return err
	}

	req := service.GroupUpdateRequest{
		CallerToken: callerToken(c),
		TenantID:    c.Params("tenantId"),
		GroupID:     c.Params("groupId"),
	}
	if in != nil {
		req.Update = in.ToUpdate()
	}
	group, err := h.identity.UpdateTenantGroup(c.UserContext(), req)
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusOK, dto.GroupDocument(group))
}

// Delete DELETE /v1.0/tenant/:tenantId/groups/:groupId.
func (h *GroupsHandler) Delete(c *fiber.Ctx) error {
	err := h.identity.DeleteTenantGroup(c.UserContext(), service.GroupRef{
		CallerToken: callerToken(c),
		TenantID:    c.Params("tenantId"),
		GroupID:     c.Params("groupId"),
	})
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
