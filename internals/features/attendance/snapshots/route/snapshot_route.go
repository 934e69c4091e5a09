package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	rcService "hajri_backend/internals/features/attendance/recompute/service"
	"hajri_backend/internals/features/attendance/snapshots/controller"
	"hajri_backend/internals/features/attendance/snapshots/service"
)

// SnapshotUserRoutes: snapshot milik mahasiswa yang login
func SnapshotUserRoutes(user fiber.Router, svc *service.Service, rc *rcService.Dispatcher, v *validator.Validate) {
	ctl := controller.NewSnapshotController(svc, rc, v)

	g := user.Group("/snapshots")
	g.Post("/confirm", ctl.Confirm)
	g.Get("/latest", ctl.Latest)
}
