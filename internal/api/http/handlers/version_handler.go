package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/dto"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

const (
	versionStatus  = "ALPHA"
	versionUpdated = "2011-04-23T00:00:00Z"
)

// VersionHandler describes the API and its extensions.
type VersionHandler struct {
	version string
}

// NewVersionHandler constructs handler.
func NewVersionHandler(version string) *VersionHandler {
	return &VersionHandler{version: version}
}

// Version GET /v1.0.
func (h *VersionHandler) Version(c *fiber.Ctx) error {
	self := c.BaseURL() + "/" + h.version + "/"
	return Render(c, fiber.StatusOK, dto.VersionDocument(h.version, versionStatus, versionUpdated, self))
}

// Extensions GET /v1.0/extensions.
func (h *VersionHandler) Extensions(c *fiber.Ctx) error {
	return Render(c, fiber.StatusOK, dto.ExtensionsDocument())
}

// Extension GET /v1.0/extensions/:alias. No extensions are installed.
func (h *VersionHandler) Extension(c *fiber.Ctx) error {
	return apperrors.NewNotFound("extension", map[string]any{"alias": c.Params("alias")})
}
