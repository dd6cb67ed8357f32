package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/manocorp/account-service/internal/api/dto"
	"github.com/manocorp/account-service/internal/auth"
	"github.com/manocorp/account-service/internal/service"
	"github.com/manocorp/account-service/pkg/util/errorutil"
)

// AuthHandler exposes login and password reset endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	token, _, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{AccessToken: token})
}

// PasswordReset handles PATCH /auth/password.
func (h *AuthHandler) PasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	message, err := h.auth.PasswordReset(c.UserContext(),
		req.Username, req.ResetToken, req.NewPassword, req.NewPasswordConfirm)
	if err != nil {
		return err
	}
	return c.JSON(dto.PasswordResetMessage{Message: message})
}

// ForgotPassword handles POST /auth/password/forgot. The response is the
// same whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Username); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(dto.PasswordResetMessage{
		Message: "If the account exists, a reset link has been sent.",
	})
}

// Me handles GET /auth/me behind the bearer middleware.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}
	return c.JSON(dto.NewUserResponse(user))
}
