// file: internals/features/attendance/manual_entries/model/manual_entry_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
)

type AttendanceStatus string

const (
	StatusPresent   AttendanceStatus = "PRESENT"
	StatusAbsent    AttendanceStatus = "ABSENT"
	StatusCancelled AttendanceStatus = "CANCELLED"
)

func ParseAttendanceStatus(s string) (AttendanceStatus, bool) {
	switch AttendanceStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPresent:
		return StatusPresent, true
	case StatusAbsent:
		return StatusAbsent, true
	case StatusCancelled:
		return StatusCancelled, true
	}
	return "", false
}

// ManualAttendanceModel: satu kejadian kelas yang dicatat mahasiswa setelah snapshot aktif.
// Natural key: (student, subject, event_date, class_type, period_slot); period_slot 0 = tidak diisi.
type ManualAttendanceModel struct {
	ManualAttendanceID         uuid.UUID `json:"manual_attendance_id"          gorm:"column:manual_attendance_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	ManualAttendanceStudentID  uuid.UUID `json:"manual_attendance_student_id"  gorm:"column:manual_attendance_student_id;type:uuid;not null;uniqueIndex:uq_manual_attendance_natural,priority:1"`
	ManualAttendanceSubjectID  uuid.UUID `json:"manual_attendance_subject_id"  gorm:"column:manual_attendance_subject_id;type:uuid;not null;uniqueIndex:uq_manual_attendance_natural,priority:2"`
	ManualAttendanceSnapshotID uuid.UUID `json:"manual_attendance_snapshot_id" gorm:"column:manual_attendance_snapshot_id;type:uuid;not null;index"`

	ManualAttendanceEventDate  time.Time              `json:"manual_attendance_event_date"  gorm:"column:manual_attendance_event_date;type:date;not null;uniqueIndex:uq_manual_attendance_natural,priority:3"`
	ManualAttendanceClassType  subjectModel.ClassType `json:"manual_attendance_class_type"  gorm:"column:manual_attendance_class_type;type:varchar(16);not null;uniqueIndex:uq_manual_attendance_natural,priority:4"`
	ManualAttendancePeriodSlot int                    `json:"manual_attendance_period_slot" gorm:"column:manual_attendance_period_slot;not null;default:0;uniqueIndex:uq_manual_attendance_natural,priority:5"`

	ManualAttendanceStatus AttendanceStatus `json:"manual_attendance_status" gorm:"column:manual_attendance_status;type:varchar(12);not null"`
	ManualAttendanceNote   *string          `json:"manual_attendance_note,omitempty" gorm:"column:manual_attendance_note;type:text"`

	ManualAttendanceCreatedAt time.Time `json:"manual_attendance_created_at" gorm:"column:manual_attendance_created_at;type:timestamptz;not null;autoCreateTime"`
	ManualAttendanceUpdatedAt time.Time `json:"manual_attendance_updated_at" gorm:"column:manual_attendance_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (ManualAttendanceModel) TableName() string { return "manual_attendance" }

// ManualCounts = hasil agregasi entry manual untuk satu subject.
type ManualCounts struct {
	Present int
	Absent  int
}

func (c ManualCounts) Total() int { return c.Present + c.Absent }

// Count menjumlahkan PRESENT/ABSENT; CANCELLED tidak masuk pembilang maupun penyebut.
func Count(entries []ManualAttendanceModel) ManualCounts {
	var c ManualCounts
	for _, e := range entries {
		switch e.ManualAttendanceStatus {
		case StatusPresent:
			c.Present++
		case StatusAbsent:
			c.Absent++
		}
	}
	return c
}
