// file: internals/features/attendance/recompute/model/computation_log_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Trigger string

const (
	TriggerSnapshotConfirm Trigger = "SNAPSHOT_CONFIRM"
	TriggerManualEntry     Trigger = "MANUAL_ENTRY"
	TriggerForceRecompute  Trigger = "FORCE_RECOMPUTE"
	TriggerCalendarUpdate  Trigger = "CALENDAR_UPDATE"
)

func ParseTrigger(s string) (Trigger, bool) {
	switch Trigger(strings.ToUpper(strings.TrimSpace(s))) {
	case TriggerSnapshotConfirm:
		return TriggerSnapshotConfirm, true
	case TriggerManualEntry:
		return TriggerManualEntry, true
	case TriggerForceRecompute:
		return TriggerForceRecompute, true
	case TriggerCalendarUpdate:
		return TriggerCalendarUpdate, true
	}
	return "", false
}

type ComputeStatus string

const (
	ComputeRunning ComputeStatus = "RUNNING" // tidak pernah dipersist
	ComputeSuccess ComputeStatus = "SUCCESS"
	ComputePartial ComputeStatus = "PARTIAL" // dicadangkan
	ComputeFailed  ComputeStatus = "FAILED"
)

// ComputationLogModel: audit trail append-only, satu baris per run.
type ComputationLogModel struct {
	ComputationLogID        uuid.UUID     `json:"computation_log_id"         gorm:"column:computation_log_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	ComputationLogStudentID uuid.UUID     `json:"computation_log_student_id" gorm:"column:computation_log_student_id;type:uuid;not null;index:idx_computation_log_student_created,priority:1"`
	ComputationLogTrigger   Trigger       `json:"computation_log_trigger_type" gorm:"column:computation_log_trigger_type;type:varchar(20);not null"`
	ComputationLogTriggerID *string       `json:"computation_log_trigger_id,omitempty" gorm:"column:computation_log_trigger_id;type:varchar(64)"`
	ComputationLogStatus    ComputeStatus `json:"computation_log_status"     gorm:"column:computation_log_status;type:varchar(10);not null"`

	ComputationLogSubjectsUpdated int       `json:"computation_log_subjects_updated" gorm:"column:computation_log_subjects_updated;not null;default:0"`
	ComputationLogStartedAt       time.Time `json:"computation_log_started_at"       gorm:"column:computation_log_started_at;type:timestamptz;not null"`
	ComputationLogCompletedAt     time.Time `json:"computation_log_completed_at"     gorm:"column:computation_log_completed_at;type:timestamptz;not null"`
	ComputationLogDurationMs      int64     `json:"computation_log_duration_ms"      gorm:"column:computation_log_duration_ms;not null"`

	ComputationLogErrorMessage *string        `json:"computation_log_error_message,omitempty" gorm:"column:computation_log_error_message;type:text"`
	ComputationLogErrorDetails datatypes.JSON `json:"computation_log_error_details,omitempty" gorm:"column:computation_log_error_details;type:jsonb"`

	ComputationLogCreatedAt time.Time `json:"computation_log_created_at" gorm:"column:computation_log_created_at;type:timestamptz;not null;autoCreateTime;index:idx_computation_log_student_created,priority:2,sort:desc"`
}

func (ComputationLogModel) TableName() string { return "engine_computation_log" }
