package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupRateLimitApp(t *testing.T, limit int) (*fiber.App, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, limit), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, cleanup
}

func postLogin(t *testing.T, app *fiber.App, email string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"email":"`+email+`"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func TestLoginRateLimitBlocksAfterThreshold(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 3)
	defer cleanup()

	for i := 0; i < 3; i++ {
		if code := postLogin(t, app, "a@x.com"); code != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, code)
		}
	}
	if code := postLogin(t, app, "a@x.com"); code != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 after threshold, got %d", code)
	}
}

func TestLoginRateLimitIsPerEmail(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 1)
	defer cleanup()

	if code := postLogin(t, app, "a@x.com"); code != fiber.StatusOK {
		t.Fatalf("first a@x.com attempt: got %d", code)
	}
	if code := postLogin(t, app, "b@x.com"); code != fiber.StatusOK {
		t.Fatalf("first b@x.com attempt: got %d", code)
	}
	if code := postLogin(t, app, "a@x.com"); code != fiber.StatusTooManyRequests {
		t.Fatalf("second a@x.com attempt: expected 429, got %d", code)
	}
}

func TestLoginRateLimitWithoutCacheIsNoop(t *testing.T) {
	app := fiber.New()
	app.Post("/login", LoginRateLimit(nil, 1), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 5; i++ {
		if code := postLogin(t, app, "a@x.com"); code != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, code)
		}
	}
}
