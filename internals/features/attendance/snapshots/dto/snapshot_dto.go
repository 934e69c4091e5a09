package dto

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"hajri_backend/internals/features/attendance/snapshots/model"
)

// Satu baris hasil OCR dari aplikasi (belum di-resolve ke subject)
type SnapshotEntryRequest struct {
	CourseCode string   `json:"course_code" validate:"notblank,max=60"`
	CourseName *string  `json:"course_name" validate:"omitempty,max=200"`
	ClassType  *string  `json:"class_type"  validate:"omitempty,max=20"`
	Present    int      `json:"present"     validate:"gte=0"`
	Total      int      `json:"total"       validate:"gte=0"`
	Percentage float64  `json:"percentage"  validate:"gte=0,lte=100"`
	Confidence *float64 `json:"confidence"  validate:"omitempty,gte=0,lte=1"`
}

// POST /api/u/snapshots/confirm
type ConfirmSnapshotRequest struct {
	CapturedAt       time.Time              `json:"captured_at"       validate:"required"`
	Entries          []SnapshotEntryRequest `json:"entries"           validate:"required,min=1,dive"`
	SourceType       string                 `json:"source_type"       validate:"omitempty,max=30"`
	Metadata         map[string]any         `json:"metadata"`
	ConfirmDecreases bool                   `json:"confirm_decreases"`
}

func (r *ConfirmSnapshotRequest) Normalize() {
	r.SourceType = strings.TrimSpace(r.SourceType)
	if r.SourceType == "" {
		r.SourceType = "university_portal"
	}
	for i := range r.Entries {
		r.Entries[i].CourseCode = strings.TrimSpace(r.Entries[i].CourseCode)
		r.Entries[i].Percentage = math.Round(r.Entries[i].Percentage*100) / 100
	}
}

func (r *ConfirmSnapshotRequest) ToEntries() []model.SnapshotEntry {
	out := make([]model.SnapshotEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, model.SnapshotEntry{
			CourseCode: e.CourseCode,
			CourseName: e.CourseName,
			ClassType:  e.ClassType,
			Present:    e.Present,
			Total:      e.Total,
			Percentage: e.Percentage,
			Confidence: e.Confidence,
		})
	}
	return out
}

type ConfirmSnapshotResponse struct {
	SnapshotID         uuid.UUID `json:"snapshot_id"`
	ConfirmedAt        time.Time `json:"confirmed_at"`
	CapturedAt         time.Time `json:"captured_at"`
	EntriesProcessed   int       `json:"entries_processed"`
	SubjectsMatched    int       `json:"subjects_matched"`
	SubjectsUnmatched  []string  `json:"subjects_unmatched"`
	RecomputeTriggered bool      `json:"recompute_triggered"`
	Warnings           []string  `json:"warnings"`
}

type SnapshotResponse struct {
	SnapshotID   uuid.UUID             `json:"snapshot_id"`
	BatchID      uuid.UUID             `json:"batch_id"`
	SemesterID   uuid.UUID             `json:"semester_id"`
	CapturedAt   time.Time             `json:"captured_at"`
	ConfirmedAt  time.Time             `json:"confirmed_at"`
	SourceType   string                `json:"source_type"`
	Entries      []model.SnapshotEntry `json:"entries"`
	EntriesCount int                   `json:"entries_count"`
}

func ToSnapshotResponse(m *model.OCRSnapshotModel, entries []model.SnapshotEntry) SnapshotResponse {
	if entries == nil {
		entries = []model.SnapshotEntry{}
	}
	return SnapshotResponse{
		SnapshotID:   m.OCRSnapshotID,
		BatchID:      m.OCRSnapshotBatchID,
		SemesterID:   m.OCRSnapshotSemesterID,
		CapturedAt:   m.OCRSnapshotCapturedAt,
		ConfirmedAt:  m.OCRSnapshotConfirmedAt,
		SourceType:   m.OCRSnapshotSourceType,
		Entries:      entries,
		EntriesCount: len(entries),
	}
}
