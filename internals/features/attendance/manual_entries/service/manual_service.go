// file: internals/features/attendance/manual_entries/service/manual_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	"hajri_backend/internals/features/attendance/manual_entries/model"
	"hajri_backend/internals/features/attendance/policy"
	helper "hajri_backend/internals/helpers"
	"hajri_backend/internals/helpers/dbtime"
	"hajri_backend/internals/repository"
)

const DefaultMaxBulkEntries = 50

type EntryInput struct {
	SubjectID  uuid.UUID
	EventDate  time.Time
	ClassType  subjectModel.ClassType
	Status     model.AttendanceStatus
	PeriodSlot int // 0 = tidak diisi
	Note       *string
}

// Saved: hasil tulis satu entry; Created=false berarti baris lama di-update.
type Saved struct {
	Entry   model.ManualAttendanceModel
	Created bool
}

type Service struct {
	Store  repository.Store
	Guard  *Guard
	Logger log.Logger

	MaxBulkEntries int
}

func NewService(store repository.Store, logger log.Logger) *Service {
	return &Service{
		Store:          store,
		Guard:          NewGuard(store),
		Logger:         log.With(logger, "component", "manual_entries"),
		MaxBulkEntries: DefaultMaxBulkEntries,
	}
}

func naturalKey(studentID uuid.UUID, in EntryInput) repository.ManualEntryKey {
	return repository.ManualEntryKey{
		StudentID:  studentID,
		SubjectID:  in.SubjectID,
		EventDate:  dbtime.DateOnly(in.EventDate),
		ClassType:  in.ClassType,
		PeriodSlot: in.PeriodSlot,
	}
}

func normalizeInput(in EntryInput) EntryInput {
	in.EventDate = dbtime.DateOnly(in.EventDate)
	if in.ClassType == "" {
		in.ClassType = subjectModel.ClassTypeLecture
	}
	return in
}

// upsert per natural key; entry lama dipindah ke snapshot aktif.
func (s *Service) upsert(ctx context.Context, studentID uuid.UUID, adm *Admission, in EntryInput) (*Saved, error) {
	key := naturalKey(studentID, in)
	snapshotID := adm.Snapshot.OCRSnapshotID

	update := func(existing *model.ManualAttendanceModel) (*Saved, error) {
		existing.ManualAttendanceSnapshotID = snapshotID
		existing.ManualAttendanceStatus = in.Status
		existing.ManualAttendanceNote = in.Note
		if err := s.Store.UpdateManualEntry(ctx, existing); err != nil {
			return nil, errors.Wrap(err, "update manual entry")
		}
		return &Saved{Entry: *existing, Created: false}, nil
	}

	existing, err := s.Store.FindManualEntry(ctx, key)
	switch {
	case err == nil:
		return update(existing)
	case !repository.IsNotFound(err):
		return nil, errors.Wrap(err, "find manual entry")
	}

	m := &model.ManualAttendanceModel{
		ManualAttendanceStudentID:  studentID,
		ManualAttendanceSubjectID:  in.SubjectID,
		ManualAttendanceSnapshotID: snapshotID,
		ManualAttendanceEventDate:  key.EventDate,
		ManualAttendanceClassType:  in.ClassType,
		ManualAttendancePeriodSlot: in.PeriodSlot,
		ManualAttendanceStatus:     in.Status,
		ManualAttendanceNote:       in.Note,
	}
	if err := s.Store.InsertManualEntry(ctx, m); err != nil {
		if !repository.IsDuplicate(err) {
			return nil, errors.Wrap(err, "insert manual entry")
		}
		// kalah balapan dengan request lain → update baris pemenang
		existing, ferr := s.Store.FindManualEntry(ctx, key)
		if ferr != nil {
			return nil, errors.Wrap(ferr, "find manual entry after conflict")
		}
		return update(existing)
	}
	return &Saved{Entry: *m, Created: true}, nil
}

// Create mencatat satu entry setelah lolos guard.
func (s *Service) Create(ctx context.Context, studentID uuid.UUID, in EntryInput) (*Saved, error) {
	in = normalizeInput(in)
	adm, err := s.Guard.Load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := adm.Check(in); err != nil {
		return nil, err
	}
	saved, err := s.upsert(ctx, studentID, adm, in)
	if err != nil {
		return nil, err
	}
	level.Debug(s.Logger).Log("msg", "manual entry saved", "student_id", studentID, "entry_id", saved.Entry.ManualAttendanceID, "created", saved.Created)
	return saved, nil
}

// Bulk: semua entry dinilai dulu; satu pelanggaran atau satu gagal tulis → tidak ada yang ditulis.
func (s *Service) Bulk(ctx context.Context, studentID uuid.UUID, inputs []EntryInput) ([]Saved, error) {
	limit := s.MaxBulkEntries
	if limit <= 0 {
		limit = DefaultMaxBulkEntries
	}
	if len(inputs) == 0 || len(inputs) > limit {
		ve := &helper.ValidationErrors{}
		ve.Add("entries", fmt.Sprintf("entries must contain between 1 and %d items", limit))
		return nil, ve
	}

	adm, err := s.Guard.Load(ctx, studentID)
	if err != nil {
		return nil, err
	}

	seen := map[repository.ManualEntryKey]int{}
	for i := range inputs {
		inputs[i] = normalizeInput(inputs[i])
		if err := adm.Check(inputs[i]); err != nil {
			if v, ok := policy.As(err); ok {
				if v.Details == nil {
					v.Details = map[string]any{}
				}
				v.Details["index"] = i
			}
			return nil, err
		}
		k := naturalKey(studentID, inputs[i])
		if j, dup := seen[k]; dup {
			ve := &helper.ValidationErrors{}
			ve.Add(fmt.Sprintf("entries[%d]", i), fmt.Sprintf("duplicates entries[%d]", j))
			return nil, ve
		}
		seen[k] = i
	}

	// rencana tulis dulu, lalu satu transaksi: gagal di tengah → tidak ada yang tersimpan
	snapshotID := adm.Snapshot.OCRSnapshotID
	rows := make([]*model.ManualAttendanceModel, len(inputs))
	created := make([]bool, len(inputs))
	var inserts, updates []*model.ManualAttendanceModel
	for i, in := range inputs {
		existing, err := s.Store.FindManualEntry(ctx, naturalKey(studentID, in))
		switch {
		case err == nil:
			existing.ManualAttendanceSnapshotID = snapshotID
			existing.ManualAttendanceStatus = in.Status
			existing.ManualAttendanceNote = in.Note
			rows[i] = existing
			updates = append(updates, existing)
		case repository.IsNotFound(err):
			rows[i] = &model.ManualAttendanceModel{
				ManualAttendanceStudentID:  studentID,
				ManualAttendanceSubjectID:  in.SubjectID,
				ManualAttendanceSnapshotID: snapshotID,
				ManualAttendanceEventDate:  in.EventDate,
				ManualAttendanceClassType:  in.ClassType,
				ManualAttendancePeriodSlot: in.PeriodSlot,
				ManualAttendanceStatus:     in.Status,
				ManualAttendanceNote:       in.Note,
			}
			created[i] = true
			inserts = append(inserts, rows[i])
		default:
			return nil, errors.Wrapf(err, "entries[%d]: find manual entry", i)
		}
	}
	if err := s.Store.SaveManualEntries(ctx, inserts, updates); err != nil {
		return nil, errors.Wrap(err, "save manual entries")
	}

	out := make([]Saved, 0, len(inputs))
	for i, m := range rows {
		out = append(out, Saved{Entry: *m, Created: created[i]})
	}
	level.Debug(s.Logger).Log("msg", "manual entries saved", "student_id", studentID, "count", len(out))
	return out, nil
}

// owned: entry milik mahasiswa lain diperlakukan tidak ada.
func (s *Service) owned(ctx context.Context, studentID, id uuid.UUID) (*model.ManualAttendanceModel, error) {
	m, err := s.Store.GetManualEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.ManualAttendanceStudentID != studentID {
		return nil, errors.Wrap(repository.ErrNotFound, "manual entry")
	}
	return m, nil
}

// UpdateStatus: tanggal entry tetap harus setelah snapshot aktif.
func (s *Service) UpdateStatus(ctx context.Context, studentID, id uuid.UUID, status model.AttendanceStatus, note *string) (*model.ManualAttendanceModel, error) {
	m, err := s.owned(ctx, studentID, id)
	if err != nil {
		return nil, err
	}
	adm, err := s.Guard.Load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !dbtime.DateOnly(m.ManualAttendanceEventDate).After(adm.SnapshotDate) {
		return nil, policy.SnapshotLock(dbtime.FormatDate(m.ManualAttendanceEventDate), dbtime.FormatDate(adm.SnapshotDate))
	}

	m.ManualAttendanceSnapshotID = adm.Snapshot.OCRSnapshotID
	m.ManualAttendanceStatus = status
	if note != nil {
		m.ManualAttendanceNote = note
	}
	if err := s.Store.UpdateManualEntry(ctx, m); err != nil {
		return nil, errors.Wrap(err, "update manual entry")
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, studentID, id uuid.UUID) (*model.ManualAttendanceModel, error) {
	m, err := s.owned(ctx, studentID, id)
	if err != nil {
		return nil, err
	}
	if err := s.Store.DeleteManualEntry(ctx, id); err != nil {
		return nil, errors.Wrap(err, "delete manual entry")
	}
	level.Debug(s.Logger).Log("msg", "manual entry deleted", "student_id", studentID, "entry_id", id)
	return m, nil
}

type ListFilter struct {
	SubjectID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

func (s *Service) List(ctx context.Context, studentID uuid.UUID, f ListFilter) ([]model.ManualAttendanceModel, int64, error) {
	rows, total, err := s.Store.ListManualEntries(ctx, repository.ManualEntryFilter{
		StudentID: studentID,
		SubjectID: f.SubjectID,
		From:      f.From,
		To:        f.To,
		Limit:     f.Limit,
		Offset:    f.Offset,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "list manual entries")
	}
	if rows == nil {
		rows = []model.ManualAttendanceModel{}
	}
	return rows, total, nil
}
