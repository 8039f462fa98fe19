package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskloop/taskloop/internal/config"
	"github.com/taskloop/taskloop/internal/logging"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		AppName:        "TaskLoop",
		AppEnv:         "development",
		Port:           "0",
		JWTSecret:      "test-secret",
		AccessTokenTTL: time.Minute,
		BcryptCost:     bcrypt.MinCost,
		PasswordMinLen: 8,
		LoginRateLimit: 100,
	}

	app := fiber.New()
	err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()})
	require.NoError(t, err)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(payload))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func registerUser(t *testing.T, app *fiber.App, email string) (token string, userID string) {
	t.Helper()
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "Str0ngPwd",
		"name":     "Test User",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	token, _ = body["access_token"].(string)
	require.NotEmpty(t, token)

	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	userID, _ = user["id"].(string)
	require.NotEmpty(t, userID)
	return token, userID
}

func TestRegisterLoginMeFlow(t *testing.T) {
	app := newTestApp(t)

	token, userID := registerUser(t, app, "a@x.com")

	// Login with the wrong password yields the uniform unauthorized outcome.
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "WrongPwd1",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.NotContains(t, fmt.Sprint(body), "password hash")

	// Login with the right password issues a fresh session.
	resp, body = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "Str0ngPwd",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["access_token"])
	require.Equal(t, "bearer", body["token_type"])

	// The profile endpoint returns public fields only.
	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, userID, body["id"])
	require.Equal(t, "a@x.com", body["email"])
	_, hasHash := body["password_hash"]
	require.False(t, hasHash)
	_, hasPassword := body["password"]
	require.False(t, hasPassword)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	app := newTestApp(t)

	registerUser(t, app, "a@x.com")

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "a@x.com",
		"password": "Str0ngPwd",
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	app := newTestApp(t)

	cases := []map[string]string{
		{"email": "not-an-email", "password": "Str0ngPwd"},
		{"email": "a@x.com", "password": "short1A"},
		{"email": "a@x.com", "password": "alllowercase1"},
	}
	for _, payload := range cases {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/register", "", payload)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "payload %v", payload)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/v1/me", "/api/v1/tasks"} {
		resp, _ := doJSON(t, app, fiber.MethodGet, path, "", nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}

	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/me", "not-a-token", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTaskLifecycle(t *testing.T) {
	app := newTestApp(t)
	token, userID := registerUser(t, app, "a@x.com")

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/tasks", token, map[string]string{
		"title":       "write report",
		"description": "quarterly numbers",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, userID, body["owner_id"])
	require.Equal(t, false, body["completed"])
	taskID, _ := body["id"].(string)
	require.NotEmpty(t, taskID)

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/tasks", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.EqualValues(t, 1, body["count"])

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/v1/tasks/"+taskID+"/toggle", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["completed"])

	resp, body = doJSON(t, app, fiber.MethodPatch, "/api/v1/tasks/"+taskID, token, map[string]string{
		"title": "write annual report",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "write annual report", body["title"])
	require.Equal(t, true, body["completed"])

	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/tasks/"+taskID, token, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/tasks/"+taskID, token, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestTaskOwnershipLooksLikeAbsence(t *testing.T) {
	app := newTestApp(t)
	tokenA, _ := registerUser(t, app, "a@x.com")
	tokenB, _ := registerUser(t, app, "b@x.com")

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/tasks", tokenA, map[string]string{
		"title": "private task",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	taskID, _ := body["id"].(string)

	// Another account probing the id sees the same response as a missing task.
	respForeign, bodyForeign := doJSON(t, app, fiber.MethodGet, "/api/v1/tasks/"+taskID, tokenB, nil)
	require.Equal(t, fiber.StatusNotFound, respForeign.StatusCode)

	respAbsent, bodyAbsent := doJSON(t, app, fiber.MethodGet, "/api/v1/tasks/does-not-exist", tokenB, nil)
	require.Equal(t, fiber.StatusNotFound, respAbsent.StatusCode)
	require.Equal(t, bodyAbsent, bodyForeign)

	// Mutations by a non-owner fail the same way and change nothing.
	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/tasks/"+taskID, tokenB, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/tasks/"+taskID, tokenA, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "private task", body["title"])
}

func TestTaskIdempotencyScopedToCaller(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	cfg := config.Config{
		AppEnv:         "development",
		JWTSecret:      "test-secret",
		AccessTokenTTL: time.Minute,
		BcryptCost:     bcrypt.MinCost,
		PasswordMinLen: 8,
		LoginRateLimit: 100,
		IdempotencyTTL: time.Minute,
	}
	app := fiber.New()
	require.NoError(t, Setup(app, Deps{Cfg: cfg, Cache: cache, Logger: logging.Discard()}))

	tokenA, userA := registerUser(t, app, "a@x.com")
	tokenB, userB := registerUser(t, app, "b@x.com")

	createTask := func(token, title string) map[string]any {
		t.Helper()
		payload, err := json.Marshal(map[string]string{"title": title})
		require.NoError(t, err)

		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/tasks", strings.NewReader(string(payload)))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		req.Header.Set("Idempotency-Key", "shared-key")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		return decoded
	}

	// Two owners reusing the same Idempotency-Key each get their own task,
	// never the other's stored response.
	taskA := createTask(tokenA, "private plans")
	taskB := createTask(tokenB, "grocery run")
	require.Equal(t, userA, taskA["owner_id"])
	require.Equal(t, userB, taskB["owner_id"])
	require.Equal(t, "grocery run", taskB["title"])
	require.NotEqual(t, taskA["id"], taskB["id"])

	// The same owner replaying the key gets the original response back.
	replay := createTask(tokenA, "different title")
	require.Equal(t, taskA["id"], replay["id"])
	require.Equal(t, "private plans", replay["title"])
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := config.Config{
		AppEnv:         "development",
		JWTSecret:      "test-secret",
		AccessTokenTTL: -time.Second,
		BcryptCost:     bcrypt.MinCost,
		PasswordMinLen: 8,
		LoginRateLimit: 100,
	}
	app := fiber.New()
	require.NoError(t, Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}))

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "a@x.com",
		"password": "Str0ngPwd",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
