package route

import (
	"github.com/gofiber/fiber/v2"

	"hajri_backend/internals/features/academics/semester_totals/controller"
	"hajri_backend/internals/features/academics/semester_totals/service"
	rcService "hajri_backend/internals/features/attendance/recompute/service"
)

func SemesterTotalAdminRoutes(admin fiber.Router, calc *service.Calculator, rc *rcService.Dispatcher) {
	ctl := controller.NewSemesterTotalController(calc, rc)

	g := admin.Group("/engine/semester-totals")
	g.Post("/calculate", ctl.Calculate)
	g.Get("/:batch_id/:semester_id", ctl.Get)
}
