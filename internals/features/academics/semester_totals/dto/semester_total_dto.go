package dto

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"hajri_backend/internals/features/academics/semester_totals/model"
	"hajri_backend/internals/features/academics/semester_totals/service"
	subjectModel "hajri_backend/internals/features/academics/subjects/model"
)

type CalculateResponse struct {
	BatchID            uuid.UUID       `json:"batch_id"`
	SemesterID         uuid.UUID       `json:"semester_id"`
	Persisted          bool            `json:"persisted"`
	RowsPersisted      int             `json:"rows_persisted"`
	RecomputeTriggered int             `json:"recompute_triggered"`
	Subjects           []service.Total `json:"subjects"`
}

// SortedTotals: urut subject_code supaya response stabil.
func SortedTotals(m map[uuid.UUID]service.Total) []service.Total {
	out := make([]service.Total, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectCode < out[j].SubjectCode })
	return out
}

type SemesterTotalResponse struct {
	SubjectID          uuid.UUID              `json:"subject_id"`
	ClassType          subjectModel.ClassType `json:"class_type"`
	SlotsPerWeek       int                    `json:"slots_per_week"`
	TotalClasses       int                    `json:"total_classes_in_semester"`
	CalculationDetails datatypes.JSON         `json:"calculation_details"`
	CalculatedAt       time.Time              `json:"calculated_at"`
}

func ToSemesterTotalResponses(rows []model.SemesterSubjectTotalModel) []SemesterTotalResponse {
	out := make([]SemesterTotalResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, SemesterTotalResponse{
			SubjectID:          r.SemesterSubjectTotalSubjectID,
			ClassType:          r.SemesterSubjectTotalClassType,
			SlotsPerWeek:       r.SemesterSubjectTotalSlotsPerWeek,
			TotalClasses:       r.SemesterSubjectTotalClasses,
			CalculationDetails: r.SemesterSubjectTotalCalculationDetails,
			CalculatedAt:       r.SemesterSubjectTotalCalculatedAt,
		})
	}
	return out
}
