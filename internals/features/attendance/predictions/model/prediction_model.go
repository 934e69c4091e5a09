// file: internals/features/attendance/predictions/model/prediction_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSafe     Status = "SAFE"
	StatusLow      Status = "LOW"
	StatusWarning  Status = "WARNING"
	StatusDanger   Status = "DANGER"
	StatusCritical Status = "CRITICAL"
)

// AttendancePredictionModel ditimpa penuh setiap recompute, key (student, subject).
type AttendancePredictionModel struct {
	AttendancePredictionID        uuid.UUID `json:"attendance_prediction_id"         gorm:"column:attendance_prediction_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	AttendancePredictionStudentID uuid.UUID `json:"attendance_prediction_student_id" gorm:"column:attendance_prediction_student_id;type:uuid;not null;uniqueIndex:uq_attendance_prediction,priority:1"`
	AttendancePredictionSubjectID uuid.UUID `json:"attendance_prediction_subject_id" gorm:"column:attendance_prediction_subject_id;type:uuid;not null;uniqueIndex:uq_attendance_prediction,priority:2"`
	AttendancePredictionBatchID   uuid.UUID `json:"attendance_prediction_batch_id"   gorm:"column:attendance_prediction_batch_id;type:uuid;not null"`

	AttendancePredictionCurrentPresent    int     `json:"attendance_prediction_current_present"    gorm:"column:attendance_prediction_current_present;not null"`
	AttendancePredictionCurrentTotal      int     `json:"attendance_prediction_current_total"      gorm:"column:attendance_prediction_current_total;not null"`
	AttendancePredictionCurrentPercentage float64 `json:"attendance_prediction_current_percentage" gorm:"column:attendance_prediction_current_percentage;type:numeric(5,2);not null"`
	AttendancePredictionRequired          float64 `json:"attendance_prediction_required_percentage" gorm:"column:attendance_prediction_required_percentage;type:numeric(5,2);not null"`

	AttendancePredictionRemainingClasses    int  `json:"attendance_prediction_remaining_classes"     gorm:"column:attendance_prediction_remaining_classes;not null"`
	AttendancePredictionRemainingIsEstimate bool `json:"attendance_prediction_remaining_is_estimate" gorm:"column:attendance_prediction_remaining_is_estimate;not null;default:false"`
	AttendancePredictionMustAttend          int  `json:"attendance_prediction_must_attend"           gorm:"column:attendance_prediction_must_attend;not null"`
	AttendancePredictionCanBunk             int  `json:"attendance_prediction_can_bunk"              gorm:"column:attendance_prediction_can_bunk;not null"`
	AttendancePredictionRecoveryClasses     int  `json:"attendance_prediction_recovery_classes"      gorm:"column:attendance_prediction_recovery_classes;not null"`

	AttendancePredictionStatus      Status `json:"attendance_prediction_status"       gorm:"column:attendance_prediction_status;type:varchar(10);not null"`
	AttendancePredictionStatusTier4 Status `json:"attendance_prediction_status_tier4" gorm:"column:attendance_prediction_status_tier4;type:varchar(10);not null"`

	AttendancePredictionComputedAt time.Time `json:"attendance_prediction_computed_at" gorm:"column:attendance_prediction_computed_at;type:timestamptz;not null"`
}

func (AttendancePredictionModel) TableName() string { return "attendance_predictions" }

func (m AttendancePredictionModel) SameFigures(o AttendancePredictionModel) bool {
	return m.AttendancePredictionBatchID == o.AttendancePredictionBatchID &&
		m.AttendancePredictionCurrentPresent == o.AttendancePredictionCurrentPresent &&
		m.AttendancePredictionCurrentTotal == o.AttendancePredictionCurrentTotal &&
		m.AttendancePredictionCurrentPercentage == o.AttendancePredictionCurrentPercentage &&
		m.AttendancePredictionRequired == o.AttendancePredictionRequired &&
		m.AttendancePredictionRemainingClasses == o.AttendancePredictionRemainingClasses &&
		m.AttendancePredictionRemainingIsEstimate == o.AttendancePredictionRemainingIsEstimate &&
		m.AttendancePredictionMustAttend == o.AttendancePredictionMustAttend &&
		m.AttendancePredictionCanBunk == o.AttendancePredictionCanBunk &&
		m.AttendancePredictionRecoveryClasses == o.AttendancePredictionRecoveryClasses &&
		m.AttendancePredictionStatus == o.AttendancePredictionStatus &&
		m.AttendancePredictionStatusTier4 == o.AttendancePredictionStatusTier4
}
