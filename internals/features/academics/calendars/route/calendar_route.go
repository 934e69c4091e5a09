package route

import (
	"github.com/go-kit/log"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"hajri_backend/internals/features/academics/calendars/controller"
	totalService "hajri_backend/internals/features/academics/semester_totals/service"
	rcService "hajri_backend/internals/features/attendance/recompute/service"
	"hajri_backend/internals/repository"
)

func CalendarUserRoutes(user fiber.Router, store repository.Store, logger log.Logger) {
	ctl := controller.NewCalendarController(store, nil, nil, nil, logger)

	user.Get("/calendar/teaching-day", ctl.TeachingDay)
}

func CalendarAdminRoutes(admin fiber.Router, store repository.Store, calc *totalService.Calculator, rc *rcService.Dispatcher, v *validator.Validate, logger log.Logger) {
	ctl := controller.NewCalendarController(store, calc, rc, v, logger)

	g := admin.Group("/calendar")
	g.Get("/non-teaching", ctl.NonTeaching)
	g.Post("/exceptions", ctl.CreateException)
	g.Delete("/exceptions/:id", ctl.DeleteException)
}
