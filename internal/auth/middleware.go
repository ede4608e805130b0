package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hr-console/internal/domain"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// UserLookup loads console users referenced by tokens.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.ConsoleUser, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  UserLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Authenticate resolves a raw token to an active console user.
func (m *AuthMiddleware) Authenticate(ctx context.Context, token string) (*domain.ConsoleUser, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.NewUnauthorized("missing token")
	}
	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	user, err := m.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("user inactive")
	}
	return user, nil
}

// Handle enforces bearer authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	user, err := m.Authenticate(c.UserContext(), parts[1])
	if err != nil {
		return err
	}
	c.Locals(principalKey, user)
	return c.Next()
}

// HandleQueryToken authenticates the socket handshake, which carries the
// token as the `token` query parameter.
func (m *AuthMiddleware) HandleQueryToken(c *fiber.Ctx) error {
	user, err := m.Authenticate(c.UserContext(), c.Query("token"))
	if err != nil {
		return err
	}
	c.Locals(principalKey, user)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated console user.
func PrincipalFromContext(c *fiber.Ctx) (*domain.ConsoleUser, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.ConsoleUser)
	return user, ok
}
