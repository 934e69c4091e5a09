// file: internals/features/academics/calendars/controller/calendar_controller.go
package controller

import (
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"hajri_backend/internals/features/academics/calendars/dto"
	"hajri_backend/internals/features/academics/calendars/service"
	totalService "hajri_backend/internals/features/academics/semester_totals/service"
	logModel "hajri_backend/internals/features/attendance/recompute/model"
	rcService "hajri_backend/internals/features/attendance/recompute/service"
	snapService "hajri_backend/internals/features/attendance/snapshots/service"
	helper "hajri_backend/internals/helpers"
	"hajri_backend/internals/helpers/dbtime"
	"hajri_backend/internals/repository"
)

type CalendarController struct {
	Store     repository.Store
	Loader    *service.Loader
	Totals    *totalService.Calculator
	Recompute *rcService.Dispatcher
	Validate  *validator.Validate
	Logger    log.Logger
	Now       func() time.Time
}

func NewCalendarController(store repository.Store, calc *totalService.Calculator, rc *rcService.Dispatcher, v *validator.Validate, logger log.Logger) *CalendarController {
	return &CalendarController{
		Store:     store,
		Loader:    service.NewLoader(store),
		Totals:    calc,
		Recompute: rc,
		Validate:  v,
		Logger:    logger,
		Now:       time.Now,
	}
}

/*
========================= User =========================
GET /api/u/calendar/teaching-day?date=YYYY-MM-DD (default: hari ini)
*/
func (ctl *CalendarController) TeachingDay(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}

	day := dbtime.Today(ctl.Now())
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		if day, err = dbtime.ParseDate(raw); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "date harus format YYYY-MM-DD")
		}
	}

	ctx := c.UserContext()
	sc, err := snapService.StudentContext(ctx, ctl.Store, studentID)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}

	out := dto.TeachingDayResponse{Date: dbtime.FormatDate(day)}
	cal, err := ctl.Loader.ForSemester(ctx, sc.StudentContextSemesterID)
	switch {
	case errors.Is(err, service.ErrNoTeachingPeriod):
		// belum ada period: hanya weekly off default
		out.IsTeachingDay, out.Reasons = service.IsTeachingDay(day, service.DefaultWeeklyOff(), nil)
	case err != nil:
		return helper.JsonServiceError(c, err)
	default:
		out.InPeriod = cal.InPeriod(day)
		out.IsTeachingDay, out.Reasons = cal.IsTeachingDay(day)
		if !out.InPeriod {
			out.IsTeachingDay = false
			out.Reasons = append(out.Reasons, "outside teaching period")
		}
	}
	if out.Reasons == nil {
		out.Reasons = []string{}
	}
	return helper.JsonOK(c, "ok", out)
}

/*
========================= Admin =========================
GET /api/a/calendar/non-teaching?batch_id=|academic_year=&from=&to=
batch_id  → period semester batch tsb (from/to opsional, di-clip ke period)
academic_year → from & to wajib
*/
func (ctl *CalendarController) NonTeaching(c *fiber.Ctx) error {
	ctx := c.UserContext()

	batchID, err := helper.ParseUUIDQuery(c, "batch_id")
	if err != nil {
		return err
	}
	year := strings.TrimSpace(c.Query("academic_year"))
	if batchID == nil && year == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "batch_id atau academic_year wajib diisi")
	}

	from, to, err := parseRange(c)
	if err != nil {
		return err
	}

	if batchID != nil {
		semesterID, err := ctl.semesterOfBatch(c, *batchID)
		if err != nil {
			return helper.JsonServiceError(c, err)
		}
		cal, err := ctl.Loader.ForSemester(ctx, semesterID)
		if err != nil {
			if errors.Is(err, service.ErrNoTeachingPeriod) {
				return helper.JsonError(c, fiber.StatusNotFound, "Semester belum punya teaching period")
			}
			return helper.JsonServiceError(c, err)
		}
		start, end := cal.Period.TeachingPeriodStartDate, cal.Period.TeachingPeriodEndDate
		if from != nil {
			start = dbtime.MaxDate(start, *from)
		}
		if to != nil {
			end = dbtime.MinDate(end, *to)
		}
		res := service.NonTeachingDates(start, end, cal.WeeklyOff, cal.Exceptions)
		return helper.JsonOK(c, "ok", dto.ToNonTeachingResponse(res))
	}

	if from == nil || to == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "from dan to wajib diisi bersama academic_year")
	}
	wo, exceptions, err := ctl.Loader.ForAcademicYear(ctx, year)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	res := service.NonTeachingDates(*from, *to, wo, exceptions)
	return helper.JsonOK(c, "ok", dto.ToNonTeachingResponse(res))
}

func parseRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	var out [2]*time.Time
	for i, name := range []string{"from", "to"} {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		d, err := dbtime.ParseDate(raw)
		if err != nil {
			return nil, nil, fiber.NewError(fiber.StatusBadRequest, name+" harus format YYYY-MM-DD")
		}
		out[i] = &d
	}
	if out[0] != nil && out[1] != nil && out[1].Before(*out[0]) {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "to tidak boleh sebelum from")
	}
	return out[0], out[1], nil
}

// semester aktif sebuah batch diambil dari student context.
func (ctl *CalendarController) semesterOfBatch(c *fiber.Ctx, batchID uuid.UUID) (uuid.UUID, error) {
	contexts, err := ctl.Store.ListStudentContexts(c.UserContext())
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "list student contexts")
	}
	for _, sc := range contexts {
		if sc.StudentContextBatchID == batchID {
			return sc.StudentContextSemesterID, nil
		}
	}
	return uuid.Nil, errors.Wrapf(repository.ErrNotFound, "batch %s", batchID)
}

// POST /api/a/calendar/exceptions
func (ctl *CalendarController) CreateException(c *fiber.Ctx) error {
	var req dto.CreateExceptionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	req.Normalize()
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.JsonServiceError(c, err)
	}

	m := req.ToModel()
	if m.CalendarExceptionEndDate.Before(m.CalendarExceptionStartDate) {
		ve := &helper.ValidationErrors{}
		ve.Add("end_date", "end_date must not be before start_date")
		return helper.JsonServiceError(c, ve)
	}
	if err := ctl.Store.CreateCalendarException(c.UserContext(), &m); err != nil {
		return helper.JsonServiceError(c, err)
	}

	affected, triggered := ctl.afterCalendarChange(c, m.CalendarExceptionAcademicYear, m.CalendarExceptionID)
	return helper.JsonCreated(c, "Exception kalender dibuat", fiber.Map{
		"exception":           dto.ToExceptionResponse(m),
		"students_affected":   affected,
		"recompute_triggered": triggered,
	})
}

// DELETE /api/a/calendar/exceptions/:id
func (ctl *CalendarController) DeleteException(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	m, err := ctl.Store.GetCalendarException(ctx, id)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	if err := ctl.Store.DeleteCalendarException(ctx, id); err != nil {
		return helper.JsonServiceError(c, err)
	}

	affected, triggered := ctl.afterCalendarChange(c, m.CalendarExceptionAcademicYear, id)
	return helper.JsonDeleted(c, "Exception kalender dihapus", fiber.Map{
		"exception":           dto.ToExceptionResponse(*m),
		"students_affected":   affected,
		"recompute_triggered": triggered,
	})
}

// afterCalendarChange: hitung ulang semester totals lalu trigger CALENDAR_UPDATE
// untuk mahasiswa di tahun akademik tsb. Kegagalan di sini tidak membatalkan perubahan kalender.
func (ctl *CalendarController) afterCalendarChange(c *fiber.Ctx, academicYear string, exceptionID uuid.UUID) (int, int) {
	ctx := c.UserContext()
	if ctl.Totals != nil {
		if _, err := ctl.Totals.RecalculateAll(ctx); err != nil {
			level.Warn(ctl.Logger).Log("msg", "semester totals refresh failed", "academic_year", academicYear, "err", err)
		}
	}

	students, err := ctl.Store.ListStudentsByAcademicYear(ctx, academicYear)
	if err != nil {
		level.Warn(ctl.Logger).Log("msg", "list students for calendar update failed", "academic_year", academicYear, "err", err)
		return 0, 0
	}
	triggered := 0
	for _, id := range students {
		if ctl.Recompute.Trigger(rcService.Job{
			StudentID: id,
			Trigger:   logModel.TriggerCalendarUpdate,
			TriggerID: exceptionID.String(),
		}) {
			triggered++
		}
	}
	level.Info(ctl.Logger).Log("msg", "calendar updated", "academic_year", academicYear, "students", len(students), "triggered", triggered)
	return len(students), triggered
}
