package details

import (
	"github.com/gofiber/fiber/v2"

	calRoute "hajri_backend/internals/features/academics/calendars/route"
	totalRoute "hajri_backend/internals/features/academics/semester_totals/route"
)

func AcademicsUserRoutes(user fiber.Router, d Deps) {
	calRoute.CalendarUserRoutes(user, d.Store, d.Logger)
}

func AcademicsAdminRoutes(admin fiber.Router, d Deps) {
	calRoute.CalendarAdminRoutes(admin, d.Store, d.Calculator, d.Dispatcher, d.Validate, d.Logger)
	totalRoute.SemesterTotalAdminRoutes(admin, d.Calculator, d.Dispatcher)
}
