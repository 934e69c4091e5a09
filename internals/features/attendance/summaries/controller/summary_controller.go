package controller

import (
	"github.com/gofiber/fiber/v2"

	"hajri_backend/internals/features/attendance/summaries/dto"
	"hajri_backend/internals/features/attendance/summaries/service"
	helper "hajri_backend/internals/helpers"
)

type SummaryController struct {
	Reader *service.Reader
}

func NewSummaryController(r *service.Reader) *SummaryController {
	return &SummaryController{Reader: r}
}

// GET /api/u/attendance/summary
func (ctl *SummaryController) Get(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}
	d, err := ctl.Reader.Dashboard(c.UserContext(), studentID)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToDashboardResponse(d))
}
