package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"hajri_backend/internals/features/attendance/manual_entries/controller"
	"hajri_backend/internals/features/attendance/manual_entries/service"
	rcService "hajri_backend/internals/features/attendance/recompute/service"
)

func ManualEntryUserRoutes(user fiber.Router, svc *service.Service, rc *rcService.Dispatcher, v *validator.Validate) {
	ctl := controller.NewManualEntryController(svc, rc, v)

	g := user.Group("/attendance/manual")
	g.Post("/", ctl.Create)
	g.Get("/", ctl.List) // ?subject_id&from&to&page&per_page
	g.Patch("/:id", ctl.UpdateStatus)
	g.Delete("/:id", ctl.Delete)
}
