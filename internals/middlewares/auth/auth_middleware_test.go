package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hajri_backend/internals/constants"
	helper "hajri_backend/internals/helpers"
)

const testSecret = "s3cret"

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(AuthMiddleware(testSecret, log.NewNopLogger()))
	app.Get("/me", func(c *fiber.Ctx) error {
		id, err := helper.GetStudentIDFromToken(c)
		if err != nil {
			return err
		}
		return c.SendString(id.String())
	})
	app.Get("/admin", OnlyRoles(constants.RoleErrorAdmin("engine"), constants.AdminOnly...), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	student := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no token", "/me", "", fiber.StatusUnauthorized},
		{"bad format", "/me", "Token abc", fiber.StatusUnauthorized},
		{"wrong secret", "/me", "Bearer " + sign(t, "other", jwt.MapClaims{"sub": student.String(), "exp": exp}), fiber.StatusUnauthorized},
		{"expired", "/me", "Bearer " + sign(t, testSecret, jwt.MapClaims{"sub": student.String(), "exp": time.Now().Add(-time.Hour).Unix()}), fiber.StatusUnauthorized},
		{"missing subject", "/me", "Bearer " + sign(t, testSecret, jwt.MapClaims{"exp": exp}), fiber.StatusUnauthorized},
		{"student ok", "/me", "Bearer " + sign(t, testSecret, jwt.MapClaims{"sub": student.String(), "exp": exp}), fiber.StatusOK},
		{"student on admin route", "/admin", "Bearer " + sign(t, testSecret, jwt.MapClaims{"sub": student.String(), "exp": exp, "role": "student"}), fiber.StatusForbidden},
		{"admin ok", "/admin", "bearer  " + sign(t, testSecret, jwt.MapClaims{"sub": student.String(), "exp": exp, "role": "ADMIN"}), fiber.StatusNoContent},
	}
	app := newApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuthMiddleware_CookieFallback(t *testing.T) {
	student := uuid.New()
	tok := sign(t, testSecret, jwt.MapClaims{"sub": student.String(), "exp": time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Cookie", "access_token="+tok)
	resp, err := newApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
