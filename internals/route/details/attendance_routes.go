package details

import (
	"github.com/gofiber/fiber/v2"

	manualRoute "hajri_backend/internals/features/attendance/manual_entries/route"
	predRoute "hajri_backend/internals/features/attendance/predictions/route"
	rcRoute "hajri_backend/internals/features/attendance/recompute/route"
	snapRoute "hajri_backend/internals/features/attendance/snapshots/route"
	summaryRoute "hajri_backend/internals/features/attendance/summaries/route"
)

// AttendanceUserRoutes: snapshot, entry manual, summary, prediksi, recompute milik sendiri.
func AttendanceUserRoutes(user fiber.Router, d Deps) {
	snapRoute.SnapshotUserRoutes(user, d.Snapshots, d.Dispatcher, d.Validate)
	manualRoute.ManualEntryUserRoutes(user, d.ManualEntries, d.Dispatcher, d.Validate)
	summaryRoute.SummaryUserRoutes(user, d.Summaries)
	predRoute.PredictionUserRoutes(user, d.Predictions, d.Summaries)
	rcRoute.RecomputeUserRoutes(user, d.Dispatcher, d.Store)
}

func AttendanceAdminRoutes(admin fiber.Router, d Deps) {
	rcRoute.RecomputeAdminRoutes(admin, d.Dispatcher, d.Store)
}
