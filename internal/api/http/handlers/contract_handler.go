package handlers

import (
	"errors"
	"io/fs"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

const (
	mimePDF  = "application/pdf"
	mimeWADL = "application/vnd.sun.wadl+xml"
	mimeXSD  = "application/xml"
)

// ContractHandler serves the published API contract: developer guide, WADL
// and XML schemas. A nil document tree answers every request with 404.
type ContractHandler struct {
	docs fs.FS
}

// NewContractHandler serves documents from docs.
func NewContractHandler(docs fs.FS) *ContractHandler {
	return &ContractHandler{docs: docs}
}

// DevGuide GET /v1.0/idmdevguide.pdf.
func (h *ContractHandler) DevGuide(c *fiber.Ctx) error {
	return h.send(c, "idmdevguide.pdf", mimePDF)
}

// WADL GET /v1.0/identity.wadl.
func (h *ContractHandler) WADL(c *fiber.Ctx) error {
	return h.send(c, "identity.wadl", mimeWADL)
}

// Schema GET /v1.0/xsd/:xsd.
func (h *ContractHandler) Schema(c *fiber.Ctx) error {
	return h.sendSchema(c, "xsd")
}

// AtomSchema GET /v1.0/xsd/atom/:xsd.
func (h *ContractHandler) AtomSchema(c *fiber.Ctx) error {
	return h.sendSchema(c, "xsd/atom")
}

func (h *ContractHandler) sendSchema(c *fiber.Ctx, dir string) error {
	name := c.Params("xsd")
	if name == "" || strings.ContainsAny(name, `/\`) || !strings.HasSuffix(name, ".xsd") {
		return apperrors.NewNotFound("document", map[string]any{"name": name})
	}
	return h.send(c, path.Join(dir, name), mimeXSD)
}

func (h *ContractHandler) send(c *fiber.Ctx, name, contentType string) error {
	if h.docs == nil || !fs.ValidPath(name) {
		return apperrors.NewNotFound("document", map[string]any{"name": name})
	}
	data, err := fs.ReadFile(h.docs, name)
	if errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewNotFound("document", map[string]any{"name": name})
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(data)
}
