package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskloop/taskloop/internal/middleware"
	"github.com/taskloop/taskloop/internal/task"
)

// RegisterTaskRoutes wires the owner-scoped task CRUD endpoints. Unsafe task
// mutations go through the Redis idempotency layer when a cache is wired.
func RegisterTaskRoutes(r fiber.Router, h *task.Handler, d Deps) {
	group := r.Group("/tasks")
	if d.Cache != nil {
		group.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	group.Post("", h.Create)
	group.Get("", h.List)
	group.Get("/:taskId", h.Get)
	group.Patch("/:taskId", h.Update)
	group.Delete("/:taskId", h.Delete)
	group.Post("/:taskId/toggle", h.Toggle)
}
