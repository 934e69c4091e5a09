// file: internals/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	calModel "hajri_backend/internals/features/academics/calendars/model"
	totalModel "hajri_backend/internals/features/academics/semester_totals/model"
	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	manualModel "hajri_backend/internals/features/attendance/manual_entries/model"
	predModel "hajri_backend/internals/features/attendance/predictions/model"
	logModel "hajri_backend/internals/features/attendance/recompute/model"
	snapModel "hajri_backend/internals/features/attendance/snapshots/model"
	summaryModel "hajri_backend/internals/features/attendance/summaries/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ReferenceStore: data referensi yang dikurasi di luar engine (read-only bagi core).
type ReferenceStore interface {
	GetStudentContext(ctx context.Context, studentID uuid.UUID) (*subjectModel.StudentContextModel, error)
	ListStudentContexts(ctx context.Context) ([]subjectModel.StudentContextModel, error)
	ListStudentsByAcademicYear(ctx context.Context, academicYear string) ([]uuid.UUID, error)

	ListOfferedSubjects(ctx context.Context, batchID uuid.UUID) ([]subjectModel.SubjectModel, error)
	GetSubject(ctx context.Context, subjectID uuid.UUID) (*subjectModel.SubjectModel, error)
	FindSubjectMapping(ctx context.Context, batchID, semesterID uuid.UUID, ocrCode string) (*subjectModel.SubjectCodeMappingModel, error)
	FindSubjectByCode(ctx context.Context, semesterID uuid.UUID, code string, caseInsensitive bool) (*subjectModel.SubjectModel, error)
	ListPublishedSlots(ctx context.Context, batchID uuid.UUID) ([]subjectModel.TimetableSlotModel, error)

	GetTeachingPeriod(ctx context.Context, semesterID uuid.UUID) (*calModel.TeachingPeriodModel, error)
	GetWeeklyOffConfig(ctx context.Context, academicYear string) (*calModel.WeeklyOffConfigModel, error)
	ListCalendarExceptions(ctx context.Context, academicYear string) ([]calModel.CalendarExceptionModel, error)
	CreateCalendarException(ctx context.Context, m *calModel.CalendarExceptionModel) error
	GetCalendarException(ctx context.Context, id uuid.UUID) (*calModel.CalendarExceptionModel, error)
	DeleteCalendarException(ctx context.Context, id uuid.UUID) error
}

type SemesterTotalStore interface {
	UpsertSemesterTotals(ctx context.Context, rows []totalModel.SemesterSubjectTotalModel) (int, error)
	ListSemesterTotals(ctx context.Context, batchID, semesterID uuid.UUID) ([]totalModel.SemesterSubjectTotalModel, error)
	GetSemesterTotal(ctx context.Context, batchID, semesterID, subjectID uuid.UUID) (*totalModel.SemesterSubjectTotalModel, error)
	// DeleteSemesterTotalsExcept hapus baris batch+semester yang subject-nya tidak ada di keep.
	DeleteSemesterTotalsExcept(ctx context.Context, batchID, semesterID uuid.UUID, keep []uuid.UUID) (int, error)
}

type SnapshotStore interface {
	LatestSnapshot(ctx context.Context, studentID, batchID uuid.UUID) (*snapModel.OCRSnapshotModel, error)
	InsertSnapshot(ctx context.Context, m *snapModel.OCRSnapshotModel) error
}

// ManualEntryFilter untuk list entry manual; field nil = tidak difilter.
type ManualEntryFilter struct {
	StudentID  uuid.UUID
	SubjectID  *uuid.UUID
	SnapshotID *uuid.UUID
	From       *time.Time // event_date >= From
	To         *time.Time // event_date <= To
	Limit      int
	Offset     int
}

type ManualEntryKey struct {
	StudentID  uuid.UUID
	SubjectID  uuid.UUID
	EventDate  time.Time
	ClassType  subjectModel.ClassType
	PeriodSlot int
}

type ManualEntryStore interface {
	FindManualEntry(ctx context.Context, key ManualEntryKey) (*manualModel.ManualAttendanceModel, error)
	GetManualEntry(ctx context.Context, id uuid.UUID) (*manualModel.ManualAttendanceModel, error)
	InsertManualEntry(ctx context.Context, m *manualModel.ManualAttendanceModel) error
	// SaveManualEntries: insert + update dalam satu transaksi; gagal satu → tidak ada yang tersimpan.
	SaveManualEntries(ctx context.Context, inserts, updates []*manualModel.ManualAttendanceModel) error
	UpdateManualEntry(ctx context.Context, m *manualModel.ManualAttendanceModel) error
	DeleteManualEntry(ctx context.Context, id uuid.UUID) error
	ListManualEntries(ctx context.Context, f ManualEntryFilter) ([]manualModel.ManualAttendanceModel, int64, error)
}

type DerivedStore interface {
	GetSummary(ctx context.Context, studentID, subjectID uuid.UUID, classType subjectModel.ClassType) (*summaryModel.AttendanceSummaryModel, error)
	// summary terakhir untuk subject, apapun class_type-nya (dipakai sebagai baseline lanjutan)
	FindSummaryForSubject(ctx context.Context, studentID, subjectID uuid.UUID) (*summaryModel.AttendanceSummaryModel, error)
	UpsertSummary(ctx context.Context, m *summaryModel.AttendanceSummaryModel) error
	ListSummaries(ctx context.Context, studentID, batchID uuid.UUID) ([]summaryModel.AttendanceSummaryModel, error)

	GetPrediction(ctx context.Context, studentID, subjectID uuid.UUID) (*predModel.AttendancePredictionModel, error)
	UpsertPrediction(ctx context.Context, m *predModel.AttendancePredictionModel) error
	ListPredictions(ctx context.Context, studentID, batchID uuid.UUID) ([]predModel.AttendancePredictionModel, error)

	InsertComputationLog(ctx context.Context, m *logModel.ComputationLogModel) error
	ListComputationLogs(ctx context.Context, studentID uuid.UUID, limit int) ([]logModel.ComputationLogModel, error)
}

// Store = gabungan semua kontrak; diimplementasikan GormRepository & MemoryRepository.
type Store interface {
	ReferenceStore
	SemesterTotalStore
	SnapshotStore
	ManualEntryStore
	DerivedStore
}

// IsNotFound juga menangkap error yang sudah di-wrap.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }
