package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/taskloop/taskloop/internal/auth"
	"github.com/taskloop/taskloop/internal/identity"
)

func setupAuthApp(t *testing.T) (*fiber.App, *auth.TokenCodec, identity.User) {
	t.Helper()

	repo := identity.NewMemoryRepository()
	codec := auth.NewTokenCodec([]byte("test-secret"))
	resolver := auth.NewIdentityResolver(codec, repo, nil)

	user := identity.User{
		ID:        uuid.NewString(),
		Email:     "a@x.com",
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	app := fiber.New()
	app.Get("/protected", Authenticate(resolver), func(c *fiber.Ctx) error {
		uid, _ := c.Locals(UserIDKey).(string)
		return c.JSON(fiber.Map{"user_id": uid})
	})
	return app, codec, user
}

func TestAuthenticateRejectsWithoutCredential(t *testing.T) {
	app, _, _ := setupAuthApp(t)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer garbage"} {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, resp.StatusCode)
		}
	}
}

func TestAuthenticatePassesResolvedUser(t *testing.T) {
	app, codec, user := setupAuthApp(t)

	token, err := codec.Issue(user.ID, auth.KindAccess, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
