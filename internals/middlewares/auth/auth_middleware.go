// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	helper "hajri_backend/internals/helpers"
)

const expirySkew = 30 * time.Second

// AuthMiddleware memverifikasi JWT (HS256) dari identity provider.
// Klaim "sub" = student_id, "role" = student | admin.
func AuthMiddleware(secret string, logger log.Logger) fiber.Handler {
	logger = log.With(logger, "component", "auth")
	parser := jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}

	return func(c *fiber.Ctx) error {
		// 1) Authorization header (atau cookie)
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		if secret == "" {
			level.Error(logger).Log("msg", "JWT_SECRET kosong")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		// 2) Parse & verifikasi signature; exp dicek manual dengan toleransi skew
		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}); err != nil {
			level.Debug(logger).Log("msg", "token parse error", "err", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}
		if err := validateTokenExpiry(claims, expirySkew); err != nil {
			level.Debug(logger).Log("msg", "token expired", "err", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		// 3) Subject → student_id
		studentID, err := extractSubject(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing subject")
		}
		c.Locals(helper.LocStudentID, studentID)

		storeBasicClaimsToLocals(c, claims)
		return c.Next()
	}
}
