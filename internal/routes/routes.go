package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taskloop/taskloop/internal/auth"
	"github.com/taskloop/taskloop/internal/config"
	"github.com/taskloop/taskloop/internal/events"
	"github.com/taskloop/taskloop/internal/identity"
	"github.com/taskloop/taskloop/internal/middleware"
	"github.com/taskloop/taskloop/internal/task"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fiber.NewError(http.StatusInternalServerError, "database is required outside development")
		}
		if d.Cache == nil {
			return fiber.NewError(http.StatusInternalServerError, "redis is required outside development")
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories: Postgres when available, in-memory fallback for dev/tests.
	var userRepo identity.Repository
	var taskRepo task.Repository
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
		taskRepo = task.NewPostgresRepository(d.DB)
	} else {
		userRepo = identity.NewMemoryRepository()
		taskRepo = task.NewMemoryRepository()
	}

	recorder := events.NewLoggerRecorder(d.Logger)

	// Services and handlers
	hasher := auth.NewPasswordHasher(d.Cfg.BcryptCost)
	codec := auth.NewTokenCodec([]byte(d.Cfg.JWTSecret))
	resolver := auth.NewIdentityResolver(codec, userRepo, recorder)
	authSvc := auth.NewService(d.Cfg, userRepo, hasher, codec, recorder)
	authHandler := auth.NewHandler(authSvc)
	taskSvc := task.NewService(taskRepo, recorder)
	taskHandler := task.NewHandler(taskSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	authmw := middleware.Authenticate(resolver)
	protected := api.Group("", authmw)
	RegisterMeRoute(protected)
	RegisterTaskRoutes(protected, taskHandler, d)

	return nil
}
