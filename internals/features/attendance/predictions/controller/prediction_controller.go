package controller

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"hajri_backend/internals/features/attendance/predictions/dto"
	"hajri_backend/internals/features/attendance/predictions/service"
	summaryDTO "hajri_backend/internals/features/attendance/summaries/dto"
	summaryService "hajri_backend/internals/features/attendance/summaries/service"
	helper "hajri_backend/internals/helpers"
)

type PredictionController struct {
	Predictions *service.Reader
	Summaries   *summaryService.Reader
}

func NewPredictionController(p *service.Reader, s *summaryService.Reader) *PredictionController {
	return &PredictionController{Predictions: p, Summaries: s}
}

// GET /api/u/predictions
func (ctl *PredictionController) List(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}
	o, err := ctl.Predictions.Overview(c.UserContext(), studentID)
	if err != nil {
		return helper.JsonServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToPredictionsResponse(o))
}

// GET /api/u/predictions/dashboard: attendance sekarang + prediksi dalam satu response
func (ctl *PredictionController) Dashboard(c *fiber.Ctx) error {
	studentID, err := helper.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}

	var (
		o *service.Overview
		d *summaryService.Dashboard
	)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() (err error) {
		o, err = ctl.Predictions.Overview(ctx, studentID)
		return err
	})
	g.Go(func() (err error) {
		d, err = ctl.Summaries.Dashboard(ctx, studentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return helper.JsonServiceError(c, err)
	}

	return helper.JsonOK(c, "ok", fiber.Map{
		"dashboard":   summaryDTO.ToDashboardResponse(d),
		"predictions": dto.ToPredictionsResponse(o),
	})
}
