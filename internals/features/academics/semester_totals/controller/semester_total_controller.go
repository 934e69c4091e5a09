// file: internals/features/academics/semester_totals/controller/semester_total_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	calService "hajri_backend/internals/features/academics/calendars/service"
	"hajri_backend/internals/features/academics/semester_totals/dto"
	"hajri_backend/internals/features/academics/semester_totals/service"
	logModel "hajri_backend/internals/features/attendance/recompute/model"
	rcService "hajri_backend/internals/features/attendance/recompute/service"
	helper "hajri_backend/internals/helpers"
)

type SemesterTotalController struct {
	Calc      *service.Calculator
	Recompute *rcService.Dispatcher
}

func NewSemesterTotalController(calc *service.Calculator, rc *rcService.Dispatcher) *SemesterTotalController {
	return &SemesterTotalController{Calc: calc, Recompute: rc}
}

func requiredQueryUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := helper.ParseUUIDQuery(c, name)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" is required")
	}
	return *id, nil
}

/*
========================= Calculate =========================
POST /api/a/engine/semester-totals/calculate?batch_id=&semester_id=&persist=true
persist=false → preview saja (tidak ada yang ditulis)
*/
func (ctl *SemesterTotalController) Calculate(c *fiber.Ctx) error {
	batchID, err := requiredQueryUUID(c, "batch_id")
	if err != nil {
		return err
	}
	semesterID, err := requiredQueryUUID(c, "semester_id")
	if err != nil {
		return err
	}
	persist := c.QueryBool("persist", true)
	ctx := c.UserContext()

	totals, err := ctl.Calc.CalculateTotals(ctx, batchID, semesterID)
	if err != nil {
		if errors.Is(err, calService.ErrNoTeachingPeriod) {
			return helper.JsonError(c, fiber.StatusNotFound, "Semester belum punya teaching period")
		}
		return helper.JsonServiceError(c, err)
	}

	out := dto.CalculateResponse{
		BatchID:    batchID,
		SemesterID: semesterID,
		Persisted:  persist,
		Subjects:   dto.SortedTotals(totals),
	}
	if !persist {
		return helper.JsonOK(c, "Preview semester totals", out)
	}

	if out.RowsPersisted, err = ctl.Calc.Persist(ctx, batchID, semesterID, totals); err != nil {
		return helper.JsonServiceError(c, err)
	}

	// total berubah → prediksi mahasiswa di batch ini ikut dihitung ulang
	contexts, err := ctl.Calc.Store.ListStudentContexts(ctx)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	for _, sc := range contexts {
		if sc.StudentContextBatchID != batchID || sc.StudentContextSemesterID != semesterID {
			continue
		}
		if ctl.Recompute.Trigger(rcService.Job{
			StudentID: sc.StudentContextStudentID,
			Trigger:   logModel.TriggerForceRecompute,
			TriggerID: semesterID.String(),
		}) {
			out.RecomputeTriggered++
		}
	}
	return helper.JsonOK(c, "Semester totals disimpan", out)
}

// GET /api/a/engine/semester-totals/:batch_id/:semester_id
func (ctl *SemesterTotalController) Get(c *fiber.Ctx) error {
	batchID, err := helper.ParseUUIDParam(c, "batch_id")
	if err != nil {
		return err
	}
	semesterID, err := helper.ParseUUIDParam(c, "semester_id")
	if err != nil {
		return err
	}
	rows, err := ctl.Calc.Store.ListSemesterTotals(c.UserContext(), batchID, semesterID)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToSemesterTotalResponses(rows))
}
