package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"hajri_backend/internals/features/attendance/recompute/model"
)

type RecomputeResponse struct {
	StudentID       uuid.UUID           `json:"student_id"`
	Trigger         model.Trigger       `json:"trigger_type"`
	Status          model.ComputeStatus `json:"status"`
	SubjectsUpdated int                 `json:"subjects_updated"`
}

// admin: student_id kosong = semua mahasiswa
type AdminRecomputeRequest struct {
	StudentID *uuid.UUID `json:"student_id"`
}

type ComputationLogResponse struct {
	ID              uuid.UUID           `json:"id"`
	Trigger         model.Trigger       `json:"trigger_type"`
	TriggerID       *string             `json:"trigger_id,omitempty"`
	Status          model.ComputeStatus `json:"status"`
	SubjectsUpdated int                 `json:"subjects_updated"`
	StartedAt       time.Time           `json:"started_at"`
	CompletedAt     time.Time           `json:"completed_at"`
	DurationMs      int64               `json:"duration_ms"`
	ErrorMessage    *string             `json:"error_message,omitempty"`
	ErrorDetails    datatypes.JSON      `json:"error_details,omitempty"`
}

func ToComputationLogResponses(rows []model.ComputationLogModel) []ComputationLogResponse {
	out := make([]ComputationLogResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ComputationLogResponse{
			ID:              r.ComputationLogID,
			Trigger:         r.ComputationLogTrigger,
			TriggerID:       r.ComputationLogTriggerID,
			Status:          r.ComputationLogStatus,
			SubjectsUpdated: r.ComputationLogSubjectsUpdated,
			StartedAt:       r.ComputationLogStartedAt,
			CompletedAt:     r.ComputationLogCompletedAt,
			DurationMs:      r.ComputationLogDurationMs,
			ErrorMessage:    r.ComputationLogErrorMessage,
			ErrorDetails:    r.ComputationLogErrorDetails,
		})
	}
	return out
}
