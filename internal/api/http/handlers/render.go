package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/auth"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

// Render writes doc in the representation the client accepts.
func Render(c *fiber.Ctx, status int, doc dto.Document) error {
	format := dto.ResponseFormat(c.Get(fiber.HeaderAccept))
	body, err := dto.Encode(format, doc.For(format))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Status(status).Send(body)
}

func bodyFormat(c *fiber.Ctx) (dto.Format, error) {
	contentType := c.Get(fiber.HeaderContentType)
	format, err := dto.RequestFormat(contentType)
	if err != nil {
		return 0, apperrors.NewUnsupportedMediaType(contentType)
	}
	return format, nil
}

func callerToken(c *fiber.Ctx) string {
	return auth.TokenFromContext(c)
}

// pageParams reads marker and limit. An absent limit selects the default;
// a present one must be a positive integer.
func pageParams(c *fiber.Ctx) (string, int, error) {
	marker := c.Query("marker")
	raw := c.Query("limit")
	if raw == "" {
		return marker, 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return "", 0, apperrors.NewBadRequest("limit must be a positive integer", map[string]any{"limit": raw})
	}
	return marker, limit, nil
}

func nextLinks(c *fiber.Ctx, nextMarker string, limit int) []dto.Link {
	if nextMarker == "" {
		return nil
	}
	query := url.Values{}
	query.Set("marker", nextMarker)
	query.Set("limit", strconv.Itoa(limit))
	return []dto.Link{{Rel: "next", Href: c.BaseURL() + c.Path() + "?" + query.Encode()}}
}
