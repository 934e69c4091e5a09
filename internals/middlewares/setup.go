package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"hajri_backend/internals/middlewares/logger"
)

// SetupMiddlewares: urutan penting, recover paling luar.
func SetupMiddlewares(app *fiber.App, timezone string) {
	app.Use(RecoveryMiddleware())
	app.Use(logger.LoggerMiddleware(timezone))
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
}
