package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/service"
)

// TokenHandler serves authentication and token validation.
type TokenHandler struct {
	identity *service.IdentityService
}

// NewTokenHandler constructs handler.
func NewTokenHandler(identity *service.IdentityService) *TokenHandler {
	return &TokenHandler{identity: identity}
}

// Authenticate POST /v1.0/token.
func (h *TokenHandler) Authenticate(c *fiber.Ctx) error {
	format, err := bodyFormat(c)
	if err != nil {
		return err
	}
	creds, err := dto.DecodeCredentials(format, c.Body())
	if err != nil {
		return err
	}

	result, err := h.identity.Authenticate(c.UserContext(), service.AuthenticateRequest{Credentials: creds})
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusOK, dto.AuthDocument(result.Token, result.User.Username))
}

// Validate GET /v1.0/token/:tokenId?belongsTo=.
func (h *TokenHandler) Validate(c *fiber.Ctx) error {
	identity, err := h.identity.ValidateToken(c.UserContext(), service.ValidateTokenRequest{
		CallerToken: callerToken(c),
		TokenID:     c.Params("tokenId"),
		BelongsTo:   c.Query("belongsTo"),
	})
	if err != nil {
		return err
	}
	return Render(c, fiber.StatusOK, dto.AuthDocument(identity.Token, identity.Username))
}

// Revoke DELETE /v1.0/token/:tokenId.
func (h *TokenHandler) Revoke(c *fiber.Ctx) error {
	err := h.identity.RevokeToken(c.UserContext(), service.RevokeTokenRequest{
		CallerToken: callerToken(c),
		TokenID:     c.Params("tokenId"),
	})
	if err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
