package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-console/internal/api/dto"
	"github.com/spec-kit/hr-console/internal/service"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// Authenticator signs console operators in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
}

// AuthHandler exposes sign-in.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", map[string]any{
			"email":    "email is required",
			"password": "password is required",
		})
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
		User:      dto.NewUserSummary(res.User),
	}})
}
