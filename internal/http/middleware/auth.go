package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docrepo/internal/access"
	"docrepo/internal/model"
	"docrepo/internal/service"
)

const (
	// PrincipalLocalKey is the context-locals key holding the caller's principal.
	PrincipalLocalKey = "principal"
	// UserLocalKey is the context-locals key holding the full user record.
	UserLocalKey = "current_user"
)

// Authenticated resolves the Bearer access token into a principal and stores
// it in context locals for downstream handlers. Requests without a valid
// token are rejected before any handler runs.
func Authenticated(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		p, user, err := auth.ResolvePrincipal(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(PrincipalLocalKey, p)
		c.Locals(UserLocalKey, user)

		return c.Next()
	}
}

// PrincipalFromCtx returns the principal stored by Authenticated.
func PrincipalFromCtx(c *fiber.Ctx) (access.Principal, bool) {
	p, ok := c.Locals(PrincipalLocalKey).(access.Principal)
	return p, ok
}

// UserFromCtx returns the user record stored by Authenticated.
func UserFromCtx(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals(UserLocalKey).(*model.User)
	return u, ok
}
