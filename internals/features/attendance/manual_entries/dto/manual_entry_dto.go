package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	"hajri_backend/internals/features/attendance/manual_entries/model"
)

// POST /api/u/attendance/manual (single)
type ManualEntryRequest struct {
	SubjectID  uuid.UUID `json:"subject_id"  validate:"required"`
	EventDate  string    `json:"event_date"  validate:"required,date_ymd"`
	ClassType  string    `json:"class_type"  validate:"omitempty,class_type"`
	Status     string    `json:"status"      validate:"required,attendance_status"`
	PeriodSlot *int      `json:"period_slot" validate:"omitempty,min=1,max=10"`
	Note       *string   `json:"note"        validate:"omitempty,max=500"`
}

// POST /api/u/attendance/manual (bulk, body berisi "entries")
type ManualEntryBulkRequest struct {
	Entries []ManualEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

// PATCH /api/u/attendance/manual/:id
type UpdateManualEntryRequest struct {
	Status string  `json:"status" validate:"required,attendance_status"`
	Note   *string `json:"note"   validate:"omitempty,max=500"`
}

type ManualEntryResponse struct {
	ID                 uuid.UUID              `json:"id"`
	SubjectID          uuid.UUID              `json:"subject_id"`
	SnapshotID         uuid.UUID              `json:"snapshot_id"`
	EventDate          string                 `json:"event_date"`
	ClassType          subjectModel.ClassType `json:"class_type"`
	Status             model.AttendanceStatus `json:"status"`
	PeriodSlot         *int                   `json:"period_slot"`
	Note               *string                `json:"note,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	RecomputeTriggered bool                   `json:"recompute_triggered,omitempty"`
}

func ToManualEntryResponse(m *model.ManualAttendanceModel) ManualEntryResponse {
	var slot *int
	if m.ManualAttendancePeriodSlot > 0 {
		s := m.ManualAttendancePeriodSlot
		slot = &s
	}
	return ManualEntryResponse{
		ID:         m.ManualAttendanceID,
		SubjectID:  m.ManualAttendanceSubjectID,
		SnapshotID: m.ManualAttendanceSnapshotID,
		EventDate:  m.ManualAttendanceEventDate.Format("2006-01-02"),
		ClassType:  m.ManualAttendanceClassType,
		Status:     m.ManualAttendanceStatus,
		PeriodSlot: slot,
		Note:       m.ManualAttendanceNote,
		CreatedAt:  m.ManualAttendanceCreatedAt,
		UpdatedAt:  m.ManualAttendanceUpdatedAt,
	}
}

func ToManualEntryResponses(rows []model.ManualAttendanceModel) []ManualEntryResponse {
	out := make([]ManualEntryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToManualEntryResponse(&rows[i]))
	}
	return out
}

// Query GET /api/u/attendance/manual
type ListManualEntriesQuery struct {
	SubjectID string `json:"subject_id" query:"subject_id" validate:"omitempty,uuid"`
	From      string `json:"from"       query:"from"       validate:"omitempty,date_ymd"`
	To        string `json:"to"         query:"to"         validate:"omitempty,date_ymd"`
}

func (q *ListManualEntriesQuery) Normalize() {
	q.SubjectID = strings.TrimSpace(q.SubjectID)
	q.From = strings.TrimSpace(q.From)
	q.To = strings.TrimSpace(q.To)
}
