// file: internals/features/attendance/snapshots/model/snapshot_model.go
package model

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SnapshotEntry = satu baris tabel hasil OCR portal kampus.
type SnapshotEntry struct {
	CourseCode string     `json:"course_code"`
	CourseName *string    `json:"course_name,omitempty"`
	ClassType  *string    `json:"class_type,omitempty"`
	Present    int        `json:"present"`
	Total      int        `json:"total"`
	Percentage float64    `json:"percentage"`
	Confidence *float64   `json:"confidence,omitempty"`
	SubjectID  *uuid.UUID `json:"subject_id,omitempty"` // hasil resolusi kode; nil = orphan
}

// OCRSnapshotModel: baseline immutable. Tidak pernah di-update setelah insert.
type OCRSnapshotModel struct {
	OCRSnapshotID         uuid.UUID `json:"ocr_snapshot_id"          gorm:"column:ocr_snapshot_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	OCRSnapshotStudentID  uuid.UUID `json:"ocr_snapshot_student_id"  gorm:"column:ocr_snapshot_student_id;type:uuid;not null;index:idx_ocr_snapshot_student_confirmed,priority:1"`
	OCRSnapshotBatchID    uuid.UUID `json:"ocr_snapshot_batch_id"    gorm:"column:ocr_snapshot_batch_id;type:uuid;not null"`
	OCRSnapshotSemesterID uuid.UUID `json:"ocr_snapshot_semester_id" gorm:"column:ocr_snapshot_semester_id;type:uuid;not null"`

	OCRSnapshotCapturedAt  time.Time `json:"ocr_snapshot_captured_at"  gorm:"column:ocr_snapshot_captured_at;type:timestamptz;not null"`
	OCRSnapshotConfirmedAt time.Time `json:"ocr_snapshot_confirmed_at" gorm:"column:ocr_snapshot_confirmed_at;type:timestamptz;not null;index:idx_ocr_snapshot_student_confirmed,priority:2,sort:desc"`
	OCRSnapshotSourceType  string    `json:"ocr_snapshot_source_type"  gorm:"column:ocr_snapshot_source_type;type:varchar(30);not null;default:'university_portal'"`

	OCRSnapshotEntries  datatypes.JSON `json:"ocr_snapshot_entries"            gorm:"column:ocr_snapshot_entries;type:jsonb;not null"`
	OCRSnapshotMetadata datatypes.JSON `json:"ocr_snapshot_metadata,omitempty" gorm:"column:ocr_snapshot_metadata;type:jsonb"`
}

func (OCRSnapshotModel) TableName() string { return "ocr_snapshots" }

// DecodeEntries membaca kolom JSON entries. Kolom kosong → slice kosong.
func (m OCRSnapshotModel) DecodeEntries() ([]SnapshotEntry, error) {
	if len(m.OCRSnapshotEntries) == 0 {
		return []SnapshotEntry{}, nil
	}
	var out []SnapshotEntry
	if err := sonic.Unmarshal(m.OCRSnapshotEntries, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func EncodeEntries(entries []SnapshotEntry) (datatypes.JSON, error) {
	if entries == nil {
		entries = []SnapshotEntry{}
	}
	b, err := sonic.Marshal(entries)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// EntryIndex: lookup entry snapshot per subject_id dan per course_code.
type EntryIndex struct {
	bySubject map[uuid.UUID]SnapshotEntry
	byCode    map[string]SnapshotEntry
}

func NewEntryIndex(entries []SnapshotEntry) EntryIndex {
	idx := EntryIndex{
		bySubject: make(map[uuid.UUID]SnapshotEntry, len(entries)),
		byCode:    make(map[string]SnapshotEntry, len(entries)),
	}
	for _, e := range entries {
		if e.SubjectID != nil {
			if _, dup := idx.bySubject[*e.SubjectID]; !dup {
				idx.bySubject[*e.SubjectID] = e
			}
		}
		code := strings.TrimSpace(e.CourseCode)
		if code == "" {
			continue
		}
		if _, dup := idx.byCode[code]; !dup {
			idx.byCode[code] = e
		}
	}
	return idx
}

// Lookup: prioritas subject_id hasil resolusi, lalu kode persis.
func (idx EntryIndex) Lookup(subjectID uuid.UUID, code string) (SnapshotEntry, bool) {
	if e, ok := idx.bySubject[subjectID]; ok {
		return e, true
	}
	e, ok := idx.byCode[strings.TrimSpace(code)]
	return e, ok
}
