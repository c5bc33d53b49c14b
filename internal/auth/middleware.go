package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/seva-foundation/darshan-service/internal/domain"
)

const principalKey = "auth_principal"

// Principal carries the caller identity resolved from the bearer credential.
// Anonymous principals have Authenticated=false and no capabilities; each
// endpoint decides whether it requires authentication.
type Principal struct {
	Authenticated bool
	UserID        string
	Role          domain.Role
}

// ContextResolver attaches a principal to every request. It never rejects:
// a missing, malformed or expired credential degrades to an anonymous
// principal and the request continues to the endpoint's own role check.
type ContextResolver struct {
	tokens *TokenManager
}

// NewContextResolver constructs the middleware.
func NewContextResolver(tokens *TokenManager) *ContextResolver {
	return &ContextResolver{tokens: tokens}
}

// Handle resolves the caller context from the Authorization header.
func (m *ContextResolver) Handle(c *fiber.Ctx) error {
	c.Locals(principalKey, m.resolve(c.Get("Authorization")))
	return c.Next()
}

func (m *ContextResolver) resolve(authHeader string) *Principal {
	anonymous := &Principal{}
	if authHeader == "" {
		return anonymous
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return anonymous
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return anonymous
	}

	return &Principal{
		Authenticated: true,
		UserID:        claims.UserID,
		Role:          claims.Role,
	}
}

// PrincipalFromContext retrieves the resolved caller context.
func PrincipalFromContext(c *fiber.Ctx) *Principal {
	if val, ok := c.Locals(principalKey).(*Principal); ok {
		return val
	}
	return &Principal{}
}
