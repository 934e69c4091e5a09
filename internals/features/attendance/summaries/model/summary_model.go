// file: internals/features/attendance/summaries/model/summary_model.go
package model

import (
	"time"

	"github.com/google/uuid"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
)

// AttendanceSummaryModel ditimpa penuh setiap recompute. Tidak ada penulis lain.
type AttendanceSummaryModel struct {
	AttendanceSummaryID         uuid.UUID              `json:"attendance_summary_id"          gorm:"column:attendance_summary_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	AttendanceSummaryStudentID  uuid.UUID              `json:"attendance_summary_student_id"  gorm:"column:attendance_summary_student_id;type:uuid;not null;uniqueIndex:uq_attendance_summary,priority:1"`
	AttendanceSummarySubjectID  uuid.UUID              `json:"attendance_summary_subject_id"  gorm:"column:attendance_summary_subject_id;type:uuid;not null;uniqueIndex:uq_attendance_summary,priority:2"`
	AttendanceSummaryClassType  subjectModel.ClassType `json:"attendance_summary_class_type"  gorm:"column:attendance_summary_class_type;type:varchar(16);not null;uniqueIndex:uq_attendance_summary,priority:3"`
	AttendanceSummaryBatchID    uuid.UUID              `json:"attendance_summary_batch_id"    gorm:"column:attendance_summary_batch_id;type:uuid;not null"`
	AttendanceSummarySemesterID uuid.UUID              `json:"attendance_summary_semester_id" gorm:"column:attendance_summary_semester_id;type:uuid;not null"`

	AttendanceSummarySnapshotID uuid.UUID `json:"attendance_summary_snapshot_id" gorm:"column:attendance_summary_snapshot_id;type:uuid;not null"`
	AttendanceSummarySnapshotAt time.Time `json:"attendance_summary_snapshot_at" gorm:"column:attendance_summary_snapshot_at;type:timestamptz;not null"`

	AttendanceSummarySnapshotPresent int `json:"attendance_summary_snapshot_present" gorm:"column:attendance_summary_snapshot_present;not null;default:0"`
	AttendanceSummarySnapshotTotal   int `json:"attendance_summary_snapshot_total"   gorm:"column:attendance_summary_snapshot_total;not null;default:0"`
	AttendanceSummaryManualPresent   int `json:"attendance_summary_manual_present"   gorm:"column:attendance_summary_manual_present;not null;default:0"`
	AttendanceSummaryManualAbsent    int `json:"attendance_summary_manual_absent"    gorm:"column:attendance_summary_manual_absent;not null;default:0"`
	AttendanceSummaryManualTotal     int `json:"attendance_summary_manual_total"     gorm:"column:attendance_summary_manual_total;not null;default:0"`

	AttendanceSummaryCurrentPresent    int     `json:"attendance_summary_current_present"    gorm:"column:attendance_summary_current_present;not null;default:0"`
	AttendanceSummaryCurrentTotal      int     `json:"attendance_summary_current_total"      gorm:"column:attendance_summary_current_total;not null;default:0"`
	AttendanceSummaryCurrentPercentage float64 `json:"attendance_summary_current_percentage" gorm:"column:attendance_summary_current_percentage;type:numeric(5,2);not null;default:0"`

	AttendanceSummaryLastRecomputedAt time.Time `json:"attendance_summary_last_recomputed_at" gorm:"column:attendance_summary_last_recomputed_at;type:timestamptz;not null"`
}

func (AttendanceSummaryModel) TableName() string { return "attendance_summary" }

// SameFigures: true kalau semua angka turunan sama (timestamp & id diabaikan).
func (m AttendanceSummaryModel) SameFigures(o AttendanceSummaryModel) bool {
	return m.AttendanceSummaryBatchID == o.AttendanceSummaryBatchID &&
		m.AttendanceSummarySemesterID == o.AttendanceSummarySemesterID &&
		m.AttendanceSummarySnapshotID == o.AttendanceSummarySnapshotID &&
		m.AttendanceSummarySnapshotAt.Equal(o.AttendanceSummarySnapshotAt) &&
		m.AttendanceSummarySnapshotPresent == o.AttendanceSummarySnapshotPresent &&
		m.AttendanceSummarySnapshotTotal == o.AttendanceSummarySnapshotTotal &&
		m.AttendanceSummaryManualPresent == o.AttendanceSummaryManualPresent &&
		m.AttendanceSummaryManualAbsent == o.AttendanceSummaryManualAbsent &&
		m.AttendanceSummaryManualTotal == o.AttendanceSummaryManualTotal &&
		m.AttendanceSummaryCurrentPresent == o.AttendanceSummaryCurrentPresent &&
		m.AttendanceSummaryCurrentTotal == o.AttendanceSummaryCurrentTotal &&
		m.AttendanceSummaryCurrentPercentage == o.AttendanceSummaryCurrentPercentage
}
