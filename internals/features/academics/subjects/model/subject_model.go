// file: internals/features/academics/subjects/model/subject_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ClassType string

const (
	ClassTypeLecture  ClassType = "LECTURE"
	ClassTypeLab      ClassType = "LAB"
	ClassTypeTutorial ClassType = "TUTORIAL"
)

// ParseClassType menerima "lecture"/"LAB"/... ; kosong → LECTURE
func ParseClassType(s string) (ClassType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(ClassTypeLecture):
		return ClassTypeLecture, true
	case string(ClassTypeLab):
		return ClassTypeLab, true
	case string(ClassTypeTutorial):
		return ClassTypeTutorial, true
	default:
		return "", false
	}
}

type SubjectModel struct {
	SubjectID         uuid.UUID `json:"subject_id"          gorm:"column:subject_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	SubjectSemesterID uuid.UUID `json:"subject_semester_id" gorm:"column:subject_semester_id;type:uuid;not null;index"`

	SubjectCode      string    `json:"subject_code"       gorm:"column:subject_code;type:varchar(40);not null"`
	SubjectName      string    `json:"subject_name"       gorm:"column:subject_name;type:varchar(200);not null"`
	SubjectClassType ClassType `json:"subject_class_type" gorm:"column:subject_class_type;type:varchar(16);not null;default:'LECTURE'"`

	SubjectCreatedAt time.Time `json:"subject_created_at" gorm:"column:subject_created_at;type:timestamptz;not null;autoCreateTime"`
	SubjectUpdatedAt time.Time `json:"subject_updated_at" gorm:"column:subject_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (SubjectModel) TableName() string { return "subjects" }

// Mata kuliah yang diikuti satu batch. Arah relasi: offering → subject.
type CourseOfferingModel struct {
	CourseOfferingID        uuid.UUID `json:"course_offering_id"         gorm:"column:course_offering_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseOfferingBatchID   uuid.UUID `json:"course_offering_batch_id"   gorm:"column:course_offering_batch_id;type:uuid;not null;uniqueIndex:uq_course_offering_batch_subject"`
	CourseOfferingSubjectID uuid.UUID `json:"course_offering_subject_id" gorm:"column:course_offering_subject_id;type:uuid;not null;uniqueIndex:uq_course_offering_batch_subject"`

	CourseOfferingCreatedAt time.Time `json:"course_offering_created_at" gorm:"column:course_offering_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (CourseOfferingModel) TableName() string { return "course_offerings" }

// Kode hasil OCR yang tidak sama dengan subject_code di katalog.
type SubjectCodeMappingModel struct {
	SubjectCodeMappingID         uuid.UUID `json:"subject_code_mapping_id"          gorm:"column:subject_code_mapping_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	SubjectCodeMappingBatchID    uuid.UUID `json:"subject_code_mapping_batch_id"    gorm:"column:subject_code_mapping_batch_id;type:uuid;not null;uniqueIndex:uq_subject_code_mapping"`
	SubjectCodeMappingSemesterID uuid.UUID `json:"subject_code_mapping_semester_id" gorm:"column:subject_code_mapping_semester_id;type:uuid;not null;uniqueIndex:uq_subject_code_mapping"`
	SubjectCodeMappingOCRCode    string    `json:"subject_code_mapping_ocr_code"    gorm:"column:subject_code_mapping_ocr_code;type:varchar(60);not null;uniqueIndex:uq_subject_code_mapping"`
	SubjectCodeMappingSubjectID  uuid.UUID `json:"subject_code_mapping_subject_id"  gorm:"column:subject_code_mapping_subject_id;type:uuid;not null"`

	SubjectCodeMappingCreatedAt time.Time `json:"subject_code_mapping_created_at" gorm:"column:subject_code_mapping_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (SubjectCodeMappingModel) TableName() string { return "subject_code_mappings" }
