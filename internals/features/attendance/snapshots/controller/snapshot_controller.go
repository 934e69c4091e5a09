// file: internals/features/attendance/snapshots/controller/snapshot_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	logModel "hajri_backend/internals/features/attendance/recompute/model"
	rcService "hajri_backend/internals/features/attendance/recompute/service"
	"hajri_backend/internals/features/attendance/snapshots/dto"
	"hajri_backend/internals/features/attendance/snapshots/service"
	helper "hajri_backend/internals/helpers"
)

/* =========================
   Controller & Constructor
   ========================= */

type SnapshotController struct {
	Service   *service.Service
	Recompute *rcService.Dispatcher
	Validate  *validator.Validate
}

func NewSnapshotController(svc *service.Service, rc *rcService.Dispatcher, v *validator.Validate) *SnapshotController {
	return &SnapshotController{Service: svc, Recompute: rc, Validate: v}
}

/*
========================= Confirm =========================
POST /api/u/snapshots/confirm
*/
func (ctl *SnapshotController) Confirm(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.ConfirmSnapshotRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	req.Normalize()
	if err := helper.ValidateStruct(ctl.Validate, &req); err != nil {
		return helper.JsonServiceError(c, err)
	}

	res, err := ctl.Service.Confirm(c.UserContext(), service.ConfirmInput{
		StudentID:        studentID,
		CapturedAt:       req.CapturedAt,
		Entries:          req.ToEntries(),
		SourceType:       req.SourceType,
		Metadata:         req.Metadata,
		ConfirmDecreases: req.ConfirmDecreases,
	})
	if err != nil {
		return helper.JsonServiceError(c, err)
	}

	// recompute jalan di background; response tidak menunggu
	triggered := ctl.Recompute.Trigger(rcService.Job{
		StudentID: studentID,
		Trigger:   logModel.TriggerSnapshotConfirm,
		TriggerID: res.Snapshot.OCRSnapshotID.String(),
	})

	unmatched := res.UnmatchedCodes
	if unmatched == nil {
		unmatched = []string{}
	}
	return helper.JsonCreated(c, "Snapshot dikonfirmasi", dto.ConfirmSnapshotResponse{
		SnapshotID:         res.Snapshot.OCRSnapshotID,
		ConfirmedAt:        res.Snapshot.OCRSnapshotConfirmedAt,
		CapturedAt:         res.Snapshot.OCRSnapshotCapturedAt,
		EntriesProcessed:   len(res.Entries),
		SubjectsMatched:    res.MatchedCount,
		SubjectsUnmatched:  unmatched,
		RecomputeTriggered: triggered,
		Warnings:           res.Warnings(),
	})
}

/*
========================= Latest =========================
GET /api/u/snapshots/latest
*/
func (ctl *SnapshotController) Latest(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}
	snap, entries, err := ctl.Service.Latest(c.UserContext(), studentID)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToSnapshotResponse(snap, entries))
}
