package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seva-foundation/darshan-service/internal/domain"
	apperrors "github.com/seva-foundation/darshan-service/pkg/util/errorutil"
)

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !PrincipalFromContext(c).Authenticated {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRole ensures the caller is authenticated and holds one of the
// allowed roles. Each route declares its requirement here instead of a
// global method/path rule table.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal := PrincipalFromContext(c)
		if !principal.Authenticated {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, ok := allowedSet[principal.Role]; !ok {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
