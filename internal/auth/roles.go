package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-console/internal/domain"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// MutatingRoles may change HR records.
var MutatingRoles = []domain.Role{domain.RoleAdmin, domain.RoleHR}

// HasRole reports whether user holds one of the allowed roles. An empty
// allow list admits any authenticated user.
func HasRole(user *domain.ConsoleUser, allowed ...domain.Role) bool {
	if user == nil {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, role := range allowed {
		if user.Role == role {
			return true
		}
	}
	return false
}

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !HasRole(user, allowed...) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
