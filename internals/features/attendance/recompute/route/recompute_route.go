package route

import (
	"github.com/gofiber/fiber/v2"

	"hajri_backend/internals/features/attendance/recompute/controller"
	"hajri_backend/internals/features/attendance/recompute/service"
	"hajri_backend/internals/middlewares"
	"hajri_backend/internals/repository"
)

func RecomputeUserRoutes(user fiber.Router, d *service.Dispatcher, store repository.Store) {
	ctl := controller.NewRecomputeController(d, store)

	g := user.Group("/engine")
	g.Post("/recompute", middlewares.RecomputeRateLimiter(), ctl.Recompute)
	g.Get("/logs", ctl.Logs)
}

func RecomputeAdminRoutes(admin fiber.Router, d *service.Dispatcher, store repository.Store) {
	ctl := controller.NewRecomputeController(d, store)

	admin.Post("/engine/recompute", ctl.AdminRecompute)
}
