package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/api/middleware"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

func newAuthApp() (*fiber.App, config.Config) {
	cfg := config.Config{
		SecretKey:   "test-secret",
		CookieName:  "postpilot_session",
		AdminAPIKey: "admin-key",
	}

	app := fiber.New()
	app.Post("/auth/session", NewAuthHandler(cfg).CreateSession)
	return app, cfg
}

func sessionCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestCreateSession_MintsValidCookie(t *testing.T) {
	app, cfg := newAuthApp()

	req := httptest.NewRequest(http.MethodPost, "/auth/session?api_key=admin-key", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := sessionCookie(t, resp, cfg.CookieName)
	require.NotNil(t, cookie, "session cookie must be set")
	assert.True(t, cookie.HttpOnly)

	claims, err := utils.ValidateToken(cfg.SecretKey, cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.UserID)
}

func TestCreateSession_RejectsWrongKey(t *testing.T) {
	app, cfg := newAuthApp()

	req := httptest.NewRequest(http.MethodPost, "/auth/session?api_key=nope", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, sessionCookie(t, resp, cfg.CookieName))
}

func TestCreateSession_RejectsWhenKeyUnset(t *testing.T) {
	cfg := config.Config{SecretKey: "test-secret", CookieName: "postpilot_session"}
	app := fiber.New()
	app.Post("/auth/session", NewAuthHandler(cfg).CreateSession)

	req := httptest.NewRequest(http.MethodPost, "/auth/session?api_key=", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateSession_CookiePassesAuthMiddleware(t *testing.T) {
	app, cfg := newAuthApp()

	guarded := app.Group("/api")
	guarded.Use(middleware.NewAuthMiddleware(cfg).AuthMiddleware())
	guarded.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	mint := httptest.NewRequest(http.MethodPost, "/auth/session?api_key=admin-key", nil)
	resp, err := app.Test(mint)
	require.NoError(t, err)
	cookie := sessionCookie(t, resp, cfg.CookieName)
	require.NotNil(t, cookie)

	ping := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	ping.AddCookie(cookie)
	resp, err = app.Test(ping)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	bare := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp, err = app.Test(bare)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
