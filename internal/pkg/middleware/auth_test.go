package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/FeeFox/internal/pkg/session"
	"github.com/ManuelReschke/FeeFox/internal/pkg/usercontext"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	session.SetSessionStore(fibersession.New(fibersession.Config{KeyLookup: "cookie:session_id"}))
	t.Cleanup(func() { session.SetSessionStore(nil) })

	app := fiber.New()
	app.Use(UserContextMiddleware)

	app.Get("/test-login", func(c *fiber.Ctx) error {
		return session.Start(c, session.StaffIdentity{
			UserID:  7,
			Name:    "Employee One",
			Role:    "employee",
			IsAdmin: c.Query("admin") == "1",
		})
	})
	app.Get("/staff", RequireAuth, func(c *fiber.Ctx) error {
		return c.JSON(usercontext.GetUserContext(c))
	})
	app.Get("/admin", RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func login(t *testing.T, app *fiber.App, admin bool) *http.Cookie {
	t.Helper()
	target := "/test-login"
	if admin {
		target += "?admin=1"
	}
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestRequireAuth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/staff", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.AddCookie(login(t, app, false))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got usercontext.UserContext
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, uint(7), got.UserID)
	assert.Equal(t, "Employee One", got.Username)
	assert.False(t, got.IsAdmin)
}

func TestRequireAdmin(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(login(t, app, false))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(login(t, app, true))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
