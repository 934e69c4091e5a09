package dto

import (
	"time"

	"github.com/google/uuid"

	predModel "hajri_backend/internals/features/attendance/predictions/model"
	"hajri_backend/internals/features/attendance/predictions/service"
)

type SubjectPredictionResponse struct {
	SubjectID   uuid.UUID `json:"subject_id"`
	SubjectCode string    `json:"subject_code"`
	SubjectName string    `json:"subject_name"`

	Present            int     `json:"present"`
	Total              int     `json:"total"`
	Percentage         float64 `json:"percentage"`
	RequiredPercentage float64 `json:"required_percentage"`

	ClassesRemaining    int  `json:"classes_remaining"`
	RemainingIsEstimate bool `json:"remaining_is_estimate"`
	SemesterTotal       int  `json:"semester_total"`
	MustAttend          int  `json:"must_attend"`
	CanBunk             int  `json:"can_bunk"`
	ClassesToRecover    int  `json:"classes_to_recover"`

	Status      predModel.Status `json:"status"`
	StatusTier3 predModel.Status `json:"status_tier3"`
	StatusTier4 predModel.Status `json:"status_tier4"`
	AtRisk      bool             `json:"at_risk"`
	ComputedAt  time.Time        `json:"computed_at"`
}

type PredictionsResponse struct {
	BatchID                    uuid.UUID                   `json:"batch_id"`
	ClassesRemainingInSemester int                         `json:"classes_remaining_in_semester"`
	TotalCanBunk               int                         `json:"total_can_bunk"`
	TotalMustAttend            int                         `json:"total_must_attend"`
	SubjectsAtRisk             int                         `json:"subjects_at_risk"`
	HasEstimates               bool                        `json:"has_estimates"`
	CountsByStatus             map[predModel.Status]int    `json:"counts_by_status"`
	Subjects                   []SubjectPredictionResponse `json:"subjects"`
}

func ToPredictionsResponse(o *service.Overview) PredictionsResponse {
	out := PredictionsResponse{
		BatchID:                    o.BatchID,
		ClassesRemainingInSemester: o.ClassesRemaining,
		TotalCanBunk:               o.TotalCanBunk,
		TotalMustAttend:            o.TotalMustAttend,
		SubjectsAtRisk:             o.SubjectsAtRisk,
		HasEstimates:               o.HasEstimates,
		CountsByStatus:             o.ByStatus,
		Subjects:                   make([]SubjectPredictionResponse, 0, len(o.Subjects)),
	}
	for _, s := range o.Subjects {
		p := s.Prediction
		out.Subjects = append(out.Subjects, SubjectPredictionResponse{
			SubjectID:           p.AttendancePredictionSubjectID,
			SubjectCode:         s.SubjectCode,
			SubjectName:         s.SubjectName,
			Present:             p.AttendancePredictionCurrentPresent,
			Total:               p.AttendancePredictionCurrentTotal,
			Percentage:          p.AttendancePredictionCurrentPercentage,
			RequiredPercentage:  p.AttendancePredictionRequired,
			ClassesRemaining:    p.AttendancePredictionRemainingClasses,
			RemainingIsEstimate: p.AttendancePredictionRemainingIsEstimate,
			SemesterTotal:       p.AttendancePredictionCurrentTotal + p.AttendancePredictionRemainingClasses,
			MustAttend:          p.AttendancePredictionMustAttend,
			CanBunk:             p.AttendancePredictionCanBunk,
			ClassesToRecover:    p.AttendancePredictionRecoveryClasses,
			Status:              s.Status,
			StatusTier3:         p.AttendancePredictionStatus,
			StatusTier4:         p.AttendancePredictionStatusTier4,
			AtRisk:              s.AtRisk,
			ComputedAt:          p.AttendancePredictionComputedAt,
		})
	}
	return out
}
