// file: internals/features/attendance/manual_entries/controller/manual_entry_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	"hajri_backend/internals/features/attendance/manual_entries/dto"
	"hajri_backend/internals/features/attendance/manual_entries/model"
	"hajri_backend/internals/features/attendance/manual_entries/service"
	logModel "hajri_backend/internals/features/attendance/recompute/model"
	rcService "hajri_backend/internals/features/attendance/recompute/service"
	helper "hajri_backend/internals/helpers"
	"hajri_backend/internals/helpers/dbtime"
)

type ManualEntryController struct {
	Service   *service.Service
	Recompute *rcService.Dispatcher
	Validate  *validator.Validate
}

func NewManualEntryController(svc *service.Service, rc *rcService.Dispatcher, v *validator.Validate) *ManualEntryController {
	return &ManualEntryController{Service: svc, Recompute: rc, Validate: v}
}

/* =========================
   Helpers
   ========================= */

// body POST bisa single entry atau {"entries":[...]}
type createBody struct {
	dto.ManualEntryRequest
	Entries []dto.ManualEntryRequest `json:"entries"`
}

// toInput: request sudah lolos validator, jadi parse di sini tidak gagal.
func toInput(r dto.ManualEntryRequest) service.EntryInput {
	day, _ := dbtime.ParseDate(r.EventDate)
	ct, _ := subjectModel.ParseClassType(r.ClassType)
	st, _ := model.ParseAttendanceStatus(r.Status)
	in := service.EntryInput{
		SubjectID: r.SubjectID,
		EventDate: day,
		ClassType: ct,
		Status:    st,
		Note:      r.Note,
	}
	if r.PeriodSlot != nil {
		in.PeriodSlot = *r.PeriodSlot
	}
	return in
}

func (ctl *ManualEntryController) trigger(studentID uuid.UUID, triggerID string) bool {
	return ctl.Recompute.Trigger(rcService.Job{
		StudentID: studentID,
		Trigger:   logModel.TriggerManualEntry,
		TriggerID: triggerID,
	})
}

/*
========================= Create (single / bulk) =========================
POST /api/u/attendance/manual
*/
func (ctl *ManualEntryController) Create(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}

	var body createBody
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}

	if len(body.Entries) > 0 {
		return ctl.bulk(c, studentID, dto.ManualEntryBulkRequest{Entries: body.Entries})
	}

	req := body.ManualEntryRequest
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.JsonServiceError(c, err)
	}
	saved, err := ctl.Service.Create(c.UserContext(), studentID, toInput(req))
	if err != nil {
		return helper.JsonServiceError(c, err)
	}

	resp := dto.ToManualEntryResponse(&saved.Entry)
	resp.RecomputeTriggered = ctl.trigger(studentID, saved.Entry.ManualAttendanceID.String())
	if saved.Created {
		return helper.JsonCreated(c, "Entry manual disimpan", resp)
	}
	return helper.JsonUpdated(c, "Entry manual diperbarui", resp)
}

func (ctl *ManualEntryController) bulk(c *fiber.Ctx, studentID uuid.UUID, req dto.ManualEntryBulkRequest) error {
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.JsonServiceError(c, err)
	}
	inputs := make([]service.EntryInput, 0, len(req.Entries))
	for _, e := range req.Entries {
		inputs = append(inputs, toInput(e))
	}

	saved, err := ctl.Service.Bulk(c.UserContext(), studentID, inputs)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}

	created := 0
	rows := make([]dto.ManualEntryResponse, 0, len(saved))
	for i := range saved {
		if saved[i].Created {
			created++
		}
		rows = append(rows, dto.ToManualEntryResponse(&saved[i].Entry))
	}
	// satu trigger untuk seluruh batch
	triggered := ctl.trigger(studentID, "")
	return helper.JsonCreated(c, "Entry manual disimpan", fiber.Map{
		"entries":             rows,
		"created":             created,
		"updated":             len(saved) - created,
		"recompute_triggered": triggered,
	})
}

/*
========================= List =========================
GET /api/u/attendance/manual?subject_id=&from=&to=&page=&per_page=
*/
func (ctl *ManualEntryController) List(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}

	var q dto.ListManualEntriesQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}
	q.Normalize()
	if err := helper.ValidateStruct(ctl.Validate, &q); err != nil {
		return helper.JsonServiceError(c, err)
	}

	p := helper.ResolvePaging(c, 50, 200)
	f := service.ListFilter{Limit: p.Limit, Offset: p.Offset}
	if q.SubjectID != "" {
		id := uuid.MustParse(q.SubjectID)
		f.SubjectID = &id
	}
	if q.From != "" {
		d, _ := dbtime.ParseDate(q.From)
		f.From = &d
	}
	if q.To != "" {
		d, _ := dbtime.ParseDate(q.To)
		f.To = &d
	}

	rows, total, err := ctl.Service.List(c.UserContext(), studentID, f)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToManualEntryResponses(rows), helper.BuildPagination(total, p, len(rows)))
}

/*
========================= Update status =========================
PATCH /api/u/attendance/manual/:id
*/
func (ctl *ManualEntryController) UpdateStatus(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateManualEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.JsonServiceError(c, err)
	}
	status, _ := model.ParseAttendanceStatus(req.Status)

	m, err := ctl.Service.UpdateStatus(c.UserContext(), studentID, id, status, req.Note)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	resp := dto.ToManualEntryResponse(m)
	resp.RecomputeTriggered = ctl.trigger(studentID, id.String())
	return helper.JsonUpdated(c, "Status entry diperbarui", resp)
}

/*
========================= Delete =========================
DELETE /api/u/attendance/manual/:id
*/
func (ctl *ManualEntryController) Delete(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	m, err := ctl.Service.Delete(c.UserContext(), studentID, id)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	resp := dto.ToManualEntryResponse(m)
	resp.RecomputeTriggered = ctl.trigger(studentID, id.String())
	return helper.JsonDeleted(c, "Entry manual dihapus", resp)
}
