package routes

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck mengecek store (DB ping / memory selalu ok).
type HealthCheck func(ctx context.Context) error

func BaseRoutes(app *fiber.App, health HealthCheck, metrics fiber.Handler) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("hajri attendance engine")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if health != nil {
			if err := health(c.UserContext()); err != nil {
				dbStatus = "Database connection error"
				serverStatus = "DOWN"
				httpStatus = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    os.Getenv("RAILWAY_ENVIRONMENT"),
		})
	})

	if metrics != nil {
		app.Get("/metrics", metrics)
	}
}
