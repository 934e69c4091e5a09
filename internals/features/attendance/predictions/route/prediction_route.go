package route

import (
	"github.com/gofiber/fiber/v2"

	"hajri_backend/internals/features/attendance/predictions/controller"
	"hajri_backend/internals/features/attendance/predictions/service"
	summaryService "hajri_backend/internals/features/attendance/summaries/service"
)

func PredictionUserRoutes(user fiber.Router, p *service.Reader, s *summaryService.Reader) {
	ctl := controller.NewPredictionController(p, s)

	g := user.Group("/predictions")
	g.Get("/", ctl.List)
	g.Get("/dashboard", ctl.Dashboard)
}
