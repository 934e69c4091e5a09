package details

import (
	"github.com/go-kit/log"
	"github.com/go-playground/validator/v10"

	totalService "hajri_backend/internals/features/academics/semester_totals/service"
	manualService "hajri_backend/internals/features/attendance/manual_entries/service"
	predService "hajri_backend/internals/features/attendance/predictions/service"
	rcService "hajri_backend/internals/features/attendance/recompute/service"
	snapService "hajri_backend/internals/features/attendance/snapshots/service"
	summaryService "hajri_backend/internals/features/attendance/summaries/service"
	"hajri_backend/internals/repository"
)

// Deps: semua service yang sudah dirakit di main.
type Deps struct {
	Store         repository.Store
	Snapshots     *snapService.Service
	ManualEntries *manualService.Service
	Summaries     *summaryService.Reader
	Predictions   *predService.Reader
	Dispatcher    *rcService.Dispatcher
	Calculator    *totalService.Calculator
	Validate      *validator.Validate
	Logger        log.Logger
}
