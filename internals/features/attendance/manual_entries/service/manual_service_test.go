package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calModel "hajri_backend/internals/features/academics/calendars/model"
	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	"hajri_backend/internals/features/attendance/manual_entries/model"
	"hajri_backend/internals/features/attendance/policy"
	snapModel "hajri_backend/internals/features/attendance/snapshots/model"
	helper "hajri_backend/internals/helpers"
	"hajri_backend/internals/helpers/dbtime"
	"hajri_backend/internals/repository"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type fixture struct {
	repo     *repository.MemoryRepository
	svc      *Service
	student  uuid.UUID
	batch    uuid.UUID
	semester uuid.UUID
	subject  uuid.UUID
	snapshot uuid.UUID
}

func day(s string) time.Time {
	t, err := dbtime.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		repo:     repository.NewMemoryRepository(),
		student:  uuid.New(),
		batch:    uuid.New(),
		semester: uuid.New(),
		subject:  uuid.New(),
	}
	f.svc = NewService(f.repo, log.NewNopLogger())
	f.svc.Guard.Location = func() *time.Location { return ist }

	f.repo.PutStudentContext(subjectModel.StudentContextModel{StudentContextStudentID: f.student, StudentContextBatchID: f.batch, StudentContextSemesterID: f.semester})
	f.repo.PutSubject(subjectModel.SubjectModel{SubjectID: f.subject, SubjectSemesterID: f.semester, SubjectCode: "MA201", SubjectName: "Probability"})
	f.repo.PutOffering(f.batch, f.subject)
	f.repo.PutTeachingPeriod(calModel.TeachingPeriodModel{
		TeachingPeriodSemesterID:   f.semester,
		TeachingPeriodAcademicYear: "2024-25",
		TeachingPeriodStartDate:    day("2025-01-06"),
		TeachingPeriodEndDate:      day("2025-04-30"),
	})
	require.NoError(t, f.repo.CreateCalendarException(ctx, &calModel.CalendarExceptionModel{
		CalendarExceptionAcademicYear: "2024-25",
		CalendarExceptionKind:         calModel.ExceptionHoliday,
		CalendarExceptionName:         "Pongal",
		CalendarExceptionStartDate:    day("2025-01-14"),
	}))

	// 20:00 UTC tanggal 10 = 01:30 IST tanggal 11
	f.snapshot = f.confirmSnapshot(t, time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC))
	return f
}

func (f *fixture) confirmSnapshot(t *testing.T, at time.Time) uuid.UUID {
	t.Helper()
	snap := &snapModel.OCRSnapshotModel{
		OCRSnapshotStudentID:   f.student,
		OCRSnapshotBatchID:     f.batch,
		OCRSnapshotSemesterID:  f.semester,
		OCRSnapshotCapturedAt:  at,
		OCRSnapshotConfirmedAt: at,
	}
	require.NoError(t, f.repo.InsertSnapshot(context.Background(), snap))
	return snap.OCRSnapshotID
}

func (f *fixture) input(date string, status model.AttendanceStatus) EntryInput {
	return EntryInput{SubjectID: f.subject, EventDate: day(date), Status: status}
}

func TestAdmission_SnapshotDateUsesAppTimezone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	adm, err := f.svc.Guard.Load(ctx, f.student)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-11", dbtime.FormatDate(adm.SnapshotDate))

	f.svc.Guard.Location = func() *time.Location { return time.UTC }
	adm, err = f.svc.Guard.Load(ctx, f.student)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", dbtime.FormatDate(adm.SnapshotDate))
}

func TestCreate_Guard(t *testing.T) {
	f := newFixture(t)
	other := uuid.New()

	tests := []struct {
		name string
		in   EntryInput
		rule policy.Rule
	}{
		{"same day as snapshot", f.input("2025-01-11", model.StatusPresent), policy.RuleSnapshotLock},
		{"before snapshot", f.input("2025-01-09", model.StatusPresent), policy.RuleSnapshotLock},
		{"holiday", f.input("2025-01-14", model.StatusPresent), policy.RuleValidTeachingDay},
		{"sunday", f.input("2025-01-12", model.StatusAbsent), policy.RuleValidTeachingDay},
		{"after teaching period", f.input("2025-05-05", model.StatusPresent), policy.RuleSemesterReadonly},
		{"subject not offered", EntryInput{SubjectID: other, EventDate: day("2025-01-13"), Status: model.StatusPresent}, policy.RuleSubjectMapping},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.student, tt.in)
			require.Error(t, err)
			v, ok := policy.As(err)
			require.True(t, ok, "expected policy violation, got %v", err)
			assert.Equal(t, tt.rule, v.Rule)
		})
	}

	rows, total, err := f.svc.List(context.Background(), f.student, ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}

func TestCreate_UpsertsOnNaturalKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.student, f.input("2025-01-13", model.StatusPresent))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, f.snapshot, first.Entry.ManualAttendanceSnapshotID)
	assert.Equal(t, subjectModel.ClassTypeLecture, first.Entry.ManualAttendanceClassType)

	second, err := f.svc.Create(ctx, f.student, f.input("2025-01-13", model.StatusAbsent))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Entry.ManualAttendanceID, second.Entry.ManualAttendanceID)
	assert.Equal(t, model.StatusAbsent, second.Entry.ManualAttendanceStatus)

	// slot berbeda = baris berbeda
	in := f.input("2025-01-13", model.StatusPresent)
	in.PeriodSlot = 2
	third, err := f.svc.Create(ctx, f.student, in)
	require.NoError(t, err)
	assert.True(t, third.Created)

	_, total, err := f.svc.List(ctx, f.student, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestCreate_NoSnapshot(t *testing.T) {
	f := newFixture(t)
	stranger := uuid.New()
	f.repo.PutStudentContext(subjectModel.StudentContextModel{StudentContextStudentID: stranger, StudentContextBatchID: f.batch, StudentContextSemesterID: f.semester})

	_, err := f.svc.Create(context.Background(), stranger, f.input("2025-01-13", model.StatusPresent))
	assert.True(t, policy.Is(err, policy.RuleSnapshotRequired))

	_, err = f.svc.Create(context.Background(), uuid.New(), f.input("2025-01-13", model.StatusPresent))
	assert.True(t, policy.Is(err, policy.RuleContextRequired))
}

func TestBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("all or nothing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Bulk(ctx, f.student, []EntryInput{
			f.input("2025-01-13", model.StatusPresent),
			f.input("2025-01-14", model.StatusPresent),
		})
		v, ok := policy.As(err)
		require.True(t, ok)
		assert.Equal(t, policy.RuleValidTeachingDay, v.Rule)
		assert.Equal(t, 1, v.Details["index"])

		_, total, err := f.svc.List(ctx, f.student, ListFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("too many", func(t *testing.T) {
		f := newFixture(t)
		f.svc.MaxBulkEntries = 2
		_, err := f.svc.Bulk(ctx, f.student, []EntryInput{
			f.input("2025-01-13", model.StatusPresent),
			f.input("2025-01-15", model.StatusPresent),
			f.input("2025-01-16", model.StatusPresent),
		})
		var ve *helper.ValidationErrors
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Fields, "entries")
	})

	t.Run("duplicate inside request", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Bulk(ctx, f.student, []EntryInput{
			f.input("2025-01-13", model.StatusPresent),
			f.input("2025-01-13", model.StatusAbsent),
		})
		var ve *helper.ValidationErrors
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Fields, "entries[1]")
	})

	t.Run("store failure writes nothing", func(t *testing.T) {
		f := newFixture(t)
		first, err := f.svc.Create(ctx, f.student, f.input("2025-01-13", model.StatusPresent))
		require.NoError(t, err)

		boom := errors.New("connection reset")
		f.repo.FailOn = func(op string) error {
			if op == "save manual entries" {
				return boom
			}
			return nil
		}
		_, err = f.svc.Bulk(ctx, f.student, []EntryInput{
			f.input("2025-01-13", model.StatusAbsent),
			f.input("2025-01-15", model.StatusPresent),
		})
		require.Error(t, err)
		assert.Equal(t, boom, errors.Cause(err))

		f.repo.FailOn = nil
		rows, total, err := f.svc.List(ctx, f.student, ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, first.Entry.ManualAttendanceID, rows[0].ManualAttendanceID)
		assert.Equal(t, model.StatusPresent, rows[0].ManualAttendanceStatus)
	})

	t.Run("mixes updates and inserts", func(t *testing.T) {
		f := newFixture(t)
		first, err := f.svc.Create(ctx, f.student, f.input("2025-01-13", model.StatusPresent))
		require.NoError(t, err)

		saved, err := f.svc.Bulk(ctx, f.student, []EntryInput{
			f.input("2025-01-13", model.StatusAbsent),
			f.input("2025-01-15", model.StatusPresent),
		})
		require.NoError(t, err)
		require.Len(t, saved, 2)
		assert.False(t, saved[0].Created)
		assert.Equal(t, first.Entry.ManualAttendanceID, saved[0].Entry.ManualAttendanceID)
		assert.Equal(t, model.StatusAbsent, saved[0].Entry.ManualAttendanceStatus)
		assert.True(t, saved[1].Created)
		assert.NotEqual(t, uuid.Nil, saved[1].Entry.ManualAttendanceID)

		_, total, err := f.svc.List(ctx, f.student, ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("ok", func(t *testing.T) {
		f := newFixture(t)
		saved, err := f.svc.Bulk(ctx, f.student, []EntryInput{
			f.input("2025-01-13", model.StatusPresent),
			f.input("2025-01-15", model.StatusCancelled),
		})
		require.NoError(t, err)
		require.Len(t, saved, 2)

		from := day("2025-01-14")
		rows, total, err := f.svc.List(ctx, f.student, ListFilter{From: &from})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, model.StatusCancelled, rows[0].ManualAttendanceStatus)
	})
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Create(ctx, f.student, f.input("2025-01-15", model.StatusPresent))
	require.NoError(t, err)
	id := saved.Entry.ManualAttendanceID

	note := "lab ditunda"
	m, err := f.svc.UpdateStatus(ctx, f.student, id, model.StatusCancelled, &note)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, m.ManualAttendanceStatus)
	assert.Equal(t, note, *m.ManualAttendanceNote)

	_, err = f.svc.UpdateStatus(ctx, uuid.New(), id, model.StatusAbsent, nil)
	assert.True(t, repository.IsNotFound(err), "other student's entry")

	// snapshot baru melewati tanggal entry → terkunci
	f.confirmSnapshot(t, time.Date(2025, 1, 16, 10, 0, 0, 0, time.UTC))
	_, err = f.svc.UpdateStatus(ctx, f.student, id, model.StatusAbsent, nil)
	assert.True(t, policy.Is(err, policy.RuleSnapshotLock))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved, err := f.svc.Create(ctx, f.student, f.input("2025-01-13", model.StatusAbsent))
	require.NoError(t, err)
	id := saved.Entry.ManualAttendanceID

	_, err = f.svc.Delete(ctx, uuid.New(), id)
	assert.True(t, repository.IsNotFound(err))

	deleted, err := f.svc.Delete(ctx, f.student, id)
	require.NoError(t, err)
	assert.Equal(t, id, deleted.ManualAttendanceID)

	_, err = f.svc.Delete(ctx, f.student, id)
	assert.True(t, repository.IsNotFound(err))
}
