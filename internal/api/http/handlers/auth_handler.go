package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/issue-admin/internal/api/dto"
	"github.com/civicdesk/issue-admin/internal/auth"
	"github.com/civicdesk/issue-admin/internal/service"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// AuthHandler exposes sign-in, sign-out and session endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.authService.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Lang:     req.Lang,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"staff":   dto.NewStaffResponse(result.Staff),
			"session": dto.NewSessionResponse(result.Session),
			"auth":    dto.AuthResponse{Token: result.Token, ExpiresAt: result.Session.ExpiresAt},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), auth.SessionFromContext(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(auth.SessionFromContext(c))})
}

// SetLanguage handles PUT /auth/session/lang.
func (h *AuthHandler) SetLanguage(c *fiber.Ctx) error {
	var req dto.LanguageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.authService.SetLanguage(c.UserContext(), auth.SessionFromContext(c), req.Lang)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(*session)})
}
