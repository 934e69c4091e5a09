package model

import (
	"time"

	"github.com/google/uuid"
)

// TimetableSlotModel: jumlah sesi satu subject pada satu hari (ISO weekday 1=Senin .. 7=Minggu)
// dari timetable batch yang sudah dipublikasikan.
type TimetableSlotModel struct {
	TimetableSlotID        uuid.UUID `json:"timetable_slot_id"         gorm:"column:timetable_slot_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	TimetableSlotBatchID   uuid.UUID `json:"timetable_slot_batch_id"   gorm:"column:timetable_slot_batch_id;type:uuid;not null;index"`
	TimetableSlotSubjectID uuid.UUID `json:"timetable_slot_subject_id" gorm:"column:timetable_slot_subject_id;type:uuid;not null;index"`

	TimetableSlotDayOfWeek int `json:"timetable_slot_day_of_week" gorm:"column:timetable_slot_day_of_week;not null;check:timetable_slot_day_of_week BETWEEN 1 AND 7"`
	TimetableSlotCount     int `json:"timetable_slot_count"       gorm:"column:timetable_slot_count;not null;default:1"`

	TimetableSlotIsPublished bool `json:"timetable_slot_is_published" gorm:"column:timetable_slot_is_published;not null;default:false"`

	TimetableSlotCreatedAt time.Time `json:"timetable_slot_created_at" gorm:"column:timetable_slot_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (TimetableSlotModel) TableName() string { return "timetable_slots" }

// SubjectSlots = ringkasan timetable per subject (hasil agregasi slot).
type SubjectSlots struct {
	Subject      SubjectModel
	SlotsPerWeek int
	DaySlots     map[int]int // ISO weekday → jumlah sesi
}

// Konteks akademik aktif mahasiswa (batch + semester berjalan).
type StudentContextModel struct {
	StudentContextStudentID  uuid.UUID `json:"student_context_student_id"  gorm:"column:student_context_student_id;type:uuid;primaryKey"`
	StudentContextBatchID    uuid.UUID `json:"student_context_batch_id"    gorm:"column:student_context_batch_id;type:uuid;not null;index"`
	StudentContextSemesterID uuid.UUID `json:"student_context_semester_id" gorm:"column:student_context_semester_id;type:uuid;not null"`

	StudentContextUpdatedAt time.Time `json:"student_context_updated_at" gorm:"column:student_context_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (StudentContextModel) TableName() string { return "student_contexts" }
