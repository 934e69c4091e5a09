package dto

import (
	"time"

	"github.com/google/uuid"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	predModel "hajri_backend/internals/features/attendance/predictions/model"
	"hajri_backend/internals/features/attendance/summaries/service"
)

type SubjectAttendanceResponse struct {
	SubjectID   uuid.UUID              `json:"subject_id"`
	SubjectCode string                 `json:"subject_code"`
	SubjectName string                 `json:"subject_name"`
	ClassType   subjectModel.ClassType `json:"class_type"`

	SnapshotPresent int `json:"snapshot_present"`
	SnapshotTotal   int `json:"snapshot_total"`
	ManualPresent   int `json:"manual_present"`
	ManualAbsent    int `json:"manual_absent"`

	Present    int              `json:"present"`
	Total      int              `json:"total"`
	Percentage float64          `json:"percentage"`
	Status     predModel.Status `json:"status"`

	SnapshotAt       time.Time `json:"snapshot_at"`
	LastRecomputedAt time.Time `json:"last_recomputed_at"`
}

type DashboardResponse struct {
	BatchID           uuid.UUID                   `json:"batch_id"`
	SemesterID        uuid.UUID                   `json:"semester_id"`
	OverallPresent    int                         `json:"overall_present"`
	OverallTotal      int                         `json:"overall_total"`
	OverallPercentage float64                     `json:"overall_percentage"`
	LastUpdated       *time.Time                  `json:"last_updated"`
	Subjects          []SubjectAttendanceResponse `json:"subjects"`
}

func ToDashboardResponse(d *service.Dashboard) DashboardResponse {
	out := DashboardResponse{
		BatchID:           d.BatchID,
		SemesterID:        d.SemesterID,
		OverallPresent:    d.OverallPresent,
		OverallTotal:      d.OverallTotal,
		OverallPercentage: d.OverallPercentage,
		LastUpdated:       d.LastUpdated,
		Subjects:          make([]SubjectAttendanceResponse, 0, len(d.Subjects)),
	}
	for _, s := range d.Subjects {
		m := s.Summary
		out.Subjects = append(out.Subjects, SubjectAttendanceResponse{
			SubjectID:        m.AttendanceSummarySubjectID,
			SubjectCode:      s.SubjectCode,
			SubjectName:      s.SubjectName,
			ClassType:        m.AttendanceSummaryClassType,
			SnapshotPresent:  m.AttendanceSummarySnapshotPresent,
			SnapshotTotal:    m.AttendanceSummarySnapshotTotal,
			ManualPresent:    m.AttendanceSummaryManualPresent,
			ManualAbsent:     m.AttendanceSummaryManualAbsent,
			Present:          m.AttendanceSummaryCurrentPresent,
			Total:            m.AttendanceSummaryCurrentTotal,
			Percentage:       m.AttendanceSummaryCurrentPercentage,
			Status:           s.Status,
			SnapshotAt:       m.AttendanceSummarySnapshotAt,
			LastRecomputedAt: m.AttendanceSummaryLastRecomputedAt,
		})
	}
	return out
}
