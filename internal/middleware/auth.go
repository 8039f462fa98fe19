package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/taskloop/taskloop/internal/auth"
)

// Locals keys populated by Authenticate for downstream handlers.
const (
	UserIDKey      = "user_id"
	CurrentUserKey = "current_user"
)

// Authenticate returns a middleware that resolves the bearer credential into
// a user before the handler runs. Every rejection, whatever the internal
// reason, surfaces as the same 401 response.
func Authenticate(resolver *auth.IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolver.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid or missing credentials")
		}
		c.Locals(UserIDKey, user.ID)
		c.Locals(CurrentUserKey, user)
		return c.Next()
	}
}
