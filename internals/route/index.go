// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"

	"hajri_backend/internals/constants"
	authMiddleware "hajri_backend/internals/middlewares/auth"
	routeDetails "hajri_backend/internals/route/details"
)

var startTime time.Time

type Options struct {
	JWTSecret string
	Health    HealthCheck
	Metrics   fiber.Handler
	Logger    log.Logger
}

func SetupRoutes(app *fiber.App, deps routeDetails.Deps, opts Options) {
	startTime = time.Now()
	logger := opts.Logger

	BaseRoutes(app, opts.Health, opts.Metrics)

	// ===================== PRIVATE (STUDENT) =====================
	level.Info(logger).Log("msg", "setting up USER group")
	user := app.Group("/api/u",
		authMiddleware.AuthMiddleware(opts.JWTSecret, logger),
		authMiddleware.OnlyRoles(constants.RoleErrorStudent("akses data kehadiran"), constants.StudentRoles...),
	)

	// ===================== ADMIN =====================
	level.Info(logger).Log("msg", "setting up ADMIN group (Auth + RoleCheck)")
	admin := app.Group("/api/a",
		authMiddleware.AuthMiddleware(opts.JWTSecret, logger),
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("mengelola engine"), constants.AdminOnly...),
	)

	// ===================== MOUNT ROUTES =====================
	level.Info(logger).Log("msg", "mounting attendance routes")
	routeDetails.AttendanceUserRoutes(user, deps)
	routeDetails.AttendanceAdminRoutes(admin, deps)

	level.Info(logger).Log("msg", "mounting academics routes")
	routeDetails.AcademicsUserRoutes(user, deps)
	routeDetails.AcademicsAdminRoutes(admin, deps)
}
