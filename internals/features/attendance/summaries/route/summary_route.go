package route

import (
	"github.com/gofiber/fiber/v2"

	"hajri_backend/internals/features/attendance/summaries/controller"
	"hajri_backend/internals/features/attendance/summaries/service"
)

func SummaryUserRoutes(user fiber.Router, reader *service.Reader) {
	ctl := controller.NewSummaryController(reader)
	user.Get("/attendance/summary", ctl.Get)
}
