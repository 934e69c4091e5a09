package middlewares

import (
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"hajri_backend/internals/helpers/logs"
)

// RecoveryMiddleware menangkap panic dan mengembalikan error 500
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			level.Error(logs.Logger()).Log("msg", "panic recovered", "method", c.Method(), "path", c.Path(), "panic", e)
		},
	})
}
