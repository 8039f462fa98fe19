package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/taskloop/taskloop/internal/auth"
	"github.com/taskloop/taskloop/internal/identity"
	"github.com/taskloop/taskloop/internal/middleware"
)

// RegisterAuthRoutes wires registration and login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
}

// RegisterMeRoute exposes the authenticated caller's public profile.
func RegisterMeRoute(r fiber.Router) {
	r.Get("/me", func(c *fiber.Ctx) error {
		user, ok := c.Locals(middleware.CurrentUserKey).(identity.User)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "invalid or missing credentials")
		}
		return c.Status(http.StatusOK).JSON(user.Public())
	})
}
