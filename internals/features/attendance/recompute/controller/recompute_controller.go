// file: internals/features/attendance/recompute/controller/recompute_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"hajri_backend/internals/features/attendance/recompute/dto"
	"hajri_backend/internals/features/attendance/recompute/model"
	"hajri_backend/internals/features/attendance/recompute/service"
	helper "hajri_backend/internals/helpers"
	"hajri_backend/internals/repository"
)

const (
	defaultLogLimit = 20
	maxLogLimit     = 100
)

type RecomputeController struct {
	Dispatcher *service.Dispatcher
	Store      repository.Store
}

func NewRecomputeController(d *service.Dispatcher, store repository.Store) *RecomputeController {
	return &RecomputeController{Dispatcher: d, Store: store}
}

func (ctl *RecomputeController) runOne(c *fiber.Ctx, studentID uuid.UUID) error {
	res := ctl.Dispatcher.Do(c.UserContext(), service.Job{
		StudentID: studentID,
		Trigger:   model.TriggerForceRecompute,
	})
	if res.Err != nil {
		if errors.Is(res.Err, service.ErrDispatcherClosed) {
			return helper.JsonError(c, fiber.StatusServiceUnavailable, "Engine sedang shutdown")
		}
		return helper.JsonServiceError(c, res.Err)
	}
	return helper.JsonOK(c, "Recompute selesai", dto.RecomputeResponse{
		StudentID:       studentID,
		Trigger:         model.TriggerForceRecompute,
		Status:          res.Status,
		SubjectsUpdated: res.SubjectsUpdated,
	})
}

/*
========================= User =========================
POST /api/u/engine/recompute (sinkron, data milik sendiri)
*/
func (ctl *RecomputeController) Recompute(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}
	return ctl.runOne(c, studentID)
}

// GET /api/u/engine/logs?limit=
func (ctl *RecomputeController) Logs(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", defaultLogLimit)
	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}
	rows, err := ctl.Store.ListComputationLogs(c.UserContext(), studentID, limit)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToComputationLogResponses(rows))
}

/*
========================= Admin =========================
POST /api/a/engine/recompute
*/
func (ctl *RecomputeController) AdminRecompute(c *fiber.Ctx) error {
	var req dto.AdminRecomputeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
		}
	}
	if req.StudentID != nil && *req.StudentID != uuid.Nil {
		return ctl.runOne(c, *req.StudentID)
	}

	res, err := ctl.Dispatcher.RecomputeAll(c.UserContext(), ctl.Store, model.TriggerForceRecompute, "")
	if err != nil {
		if errors.Is(err, service.ErrDispatcherClosed) {
			return helper.JsonError(c, fiber.StatusServiceUnavailable, "Engine sedang shutdown")
		}
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "Recompute semua mahasiswa selesai", res)
}
