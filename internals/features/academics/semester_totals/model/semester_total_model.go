// file: internals/features/academics/semester_totals/model/semester_total_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
)

// SemesterSubjectTotalModel adalah cache hasil kalkulasi (batch, semester, subject).
// Satu-satunya penulis: semester_totals/service.Persist.
type SemesterSubjectTotalModel struct {
	SemesterSubjectTotalID         uuid.UUID `json:"semester_subject_total_id"          gorm:"column:semester_subject_total_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	SemesterSubjectTotalBatchID    uuid.UUID `json:"semester_subject_total_batch_id"    gorm:"column:semester_subject_total_batch_id;type:uuid;not null;uniqueIndex:uq_semester_subject_total"`
	SemesterSubjectTotalSemesterID uuid.UUID `json:"semester_subject_total_semester_id" gorm:"column:semester_subject_total_semester_id;type:uuid;not null;uniqueIndex:uq_semester_subject_total"`
	SemesterSubjectTotalSubjectID  uuid.UUID `json:"semester_subject_total_subject_id"  gorm:"column:semester_subject_total_subject_id;type:uuid;not null;uniqueIndex:uq_semester_subject_total"`

	SemesterSubjectTotalClassType    subjectModel.ClassType `json:"semester_subject_total_class_type"     gorm:"column:semester_subject_total_class_type;type:varchar(16);not null"`
	SemesterSubjectTotalSlotsPerWeek int                    `json:"semester_subject_total_slots_per_week" gorm:"column:semester_subject_total_slots_per_week;not null"`
	SemesterSubjectTotalClasses      int                    `json:"semester_subject_total_classes"        gorm:"column:semester_subject_total_classes;not null"`

	SemesterSubjectTotalCalculationDetails datatypes.JSON `json:"semester_subject_total_calculation_details" gorm:"column:semester_subject_total_calculation_details;type:jsonb"`

	SemesterSubjectTotalCalculatedAt time.Time `json:"semester_subject_total_calculated_at" gorm:"column:semester_subject_total_calculated_at;type:timestamptz;not null"`
}

func (SemesterSubjectTotalModel) TableName() string { return "semester_subject_totals" }
