package service

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calModel "hajri_backend/internals/features/academics/calendars/model"
	calService "hajri_backend/internals/features/academics/calendars/service"
	totalModel "hajri_backend/internals/features/academics/semester_totals/model"
	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	"hajri_backend/internals/helpers/dbtime"
	"hajri_backend/internals/repository"
)

type fixture struct {
	repo     *repository.MemoryRepository
	calc     *Calculator
	batch    uuid.UUID
	semester uuid.UUID
	subjectA uuid.UUID
	subjectB uuid.UUID
	calcTime time.Time
}

func mustDate(s string) time.Time {
	t, err := dbtime.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     repository.NewMemoryRepository(),
		batch:    uuid.New(),
		semester: uuid.New(),
		subjectA: uuid.New(),
		subjectB: uuid.New(),
		calcTime: time.Date(2025, 1, 5, 20, 0, 0, 0, time.UTC),
	}
	f.calc = NewCalculator(f.repo, log.NewNopLogger())
	f.calc.nowFunc = func() time.Time { return f.calcTime }

	f.repo.PutSubject(subjectModel.SubjectModel{SubjectID: f.subjectA, SubjectSemesterID: f.semester, SubjectCode: "CS101", SubjectName: "Algorithms", SubjectClassType: subjectModel.ClassTypeLecture})
	f.repo.PutSubject(subjectModel.SubjectModel{SubjectID: f.subjectB, SubjectSemesterID: f.semester, SubjectCode: "CS101L", SubjectName: "Algorithms Lab", SubjectClassType: subjectModel.ClassTypeLab})

	slot := func(subject uuid.UUID, dow, count int, published bool) {
		f.repo.PutSlot(subjectModel.TimetableSlotModel{
			TimetableSlotBatchID:     f.batch,
			TimetableSlotSubjectID:   subject,
			TimetableSlotDayOfWeek:   dow,
			TimetableSlotCount:       count,
			TimetableSlotIsPublished: published,
		})
	}
	slot(f.subjectA, 1, 1, true)  // Senin
	slot(f.subjectA, 3, 2, true)  // Rabu, 2 sesi
	slot(f.subjectA, 5, 3, false) // draft, tidak dihitung
	slot(f.subjectB, 6, 1, true)  // Sabtu (libur semua)

	f.repo.PutTeachingPeriod(calModel.TeachingPeriodModel{
		TeachingPeriodSemesterID:   f.semester,
		TeachingPeriodAcademicYear: "2024-25",
		TeachingPeriodStartDate:    mustDate("2025-01-06"),
		TeachingPeriodEndDate:      mustDate("2025-01-19"),
	})
	require.NoError(t, f.repo.CreateCalendarException(context.Background(), &calModel.CalendarExceptionModel{
		CalendarExceptionAcademicYear: "2024-25",
		CalendarExceptionKind:         calModel.ExceptionHoliday,
		CalendarExceptionName:         "Pongal",
		CalendarExceptionStartDate:    mustDate("2025-01-15"),
	}))
	return f
}

func TestCalculateTotals(t *testing.T) {
	f := newFixture(t)

	totals, err := f.calc.CalculateTotals(context.Background(), f.batch, f.semester)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	a := totals[f.subjectA]
	assert.Equal(t, 3, a.SlotsPerWeek)
	// Senin 6,13 = 2; Rabu 8 (15 libur) = 2 sesi
	assert.Equal(t, 4, a.TotalClassesInSemester)
	assert.Equal(t, 2, a.Details.TeachingDaysByWeekday[1])
	assert.Equal(t, 1, a.Details.TeachingDaysByWeekday[3])
	assert.Equal(t, 14, a.Details.TotalCalendarDays)
	assert.Equal(t, 2, a.Details.TeachingWeeks)
	assert.Equal(t, 5, a.Details.NonTeachingDaysExcluded)
	assert.Equal(t, "2025-01-06", a.Details.SemesterStart)
	assert.Equal(t, 2, a.Details.NonTeachingBreakdown.SundaysCount)
	assert.Equal(t, 2, a.Details.NonTeachingBreakdown.SaturdaysCount)
	require.Len(t, a.Details.NonTeachingBreakdown.Holidays, 1)
	assert.Equal(t, "all", a.Details.NonTeachingBreakdown.SaturdayPattern)
	assert.Equal(t, "3 slots/week across 2 weeks, excluding 5 non-teaching days", a.Details.Formula)

	b := totals[f.subjectB]
	assert.Equal(t, 0, b.TotalClassesInSemester, "saturday-only subject never meets under pattern all")
}

func TestCalculateTotals_NoTeachingPeriod(t *testing.T) {
	f := newFixture(t)
	_, err := f.calc.CalculateTotals(context.Background(), f.batch, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, calService.ErrNoTeachingPeriod)
}

func TestCalculateTotals_NoSlotsIsEmpty(t *testing.T) {
	f := newFixture(t)
	totals, err := f.calc.CalculateTotals(context.Background(), uuid.New(), f.semester)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestPersist_IsDeterministic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, n, err := f.calc.CalculateAndPersist(ctx, f.batch, f.semester)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	first, err := f.repo.GetSemesterTotal(ctx, f.batch, f.semester, f.subjectA)
	require.NoError(t, err)

	_, _, err = f.calc.CalculateAndPersist(ctx, f.batch, f.semester)
	require.NoError(t, err)
	second, err := f.repo.GetSemesterTotal(ctx, f.batch, f.semester, f.subjectA)
	require.NoError(t, err)

	assert.Equal(t, first.SemesterSubjectTotalID, second.SemesterSubjectTotalID)
	assert.Equal(t, string(first.SemesterSubjectTotalCalculationDetails), string(second.SemesterSubjectTotalCalculationDetails))
	assert.Equal(t, 4, second.SemesterSubjectTotalClasses)

	var details CalculationDetails
	require.NoError(t, sonic.Unmarshal(second.SemesterSubjectTotalCalculationDetails, &details))
	assert.Equal(t, 5, details.NonTeachingDaysExcluded)
}

func TestRecalculateAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.PutStudentContext(subjectModel.StudentContextModel{StudentContextStudentID: uuid.New(), StudentContextBatchID: f.batch, StudentContextSemesterID: f.semester})
	f.repo.PutStudentContext(subjectModel.StudentContextModel{StudentContextStudentID: uuid.New(), StudentContextBatchID: f.batch, StudentContextSemesterID: f.semester})
	// semester tanpa period: dilewati, bukan error
	f.repo.PutStudentContext(subjectModel.StudentContextModel{StudentContextStudentID: uuid.New(), StudentContextBatchID: f.batch, StudentContextSemesterID: uuid.New()})

	n, err := f.calc.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := f.repo.ListSemesterTotals(ctx, f.batch, f.semester)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestPersist_DropsSubjectsWithoutSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale := uuid.New()
	_, err := f.repo.UpsertSemesterTotals(ctx, []totalModel.SemesterSubjectTotalModel{{
		SemesterSubjectTotalBatchID:    f.batch,
		SemesterSubjectTotalSemesterID: f.semester,
		SemesterSubjectTotalSubjectID:  stale,
		SemesterSubjectTotalClasses:    40,
	}})
	require.NoError(t, err)

	totals, n, err := f.calc.CalculateAndPersist(ctx, f.batch, f.semester)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotContains(t, totals, stale)

	_, err = f.repo.GetSemesterTotal(ctx, f.batch, f.semester, stale)
	assert.True(t, repository.IsNotFound(err), "subject without slots must leave the cache")

	rows, err := f.repo.ListSemesterTotals(ctx, f.batch, f.semester)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestPersist_EmptyTotalsClearsBatchSemester(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	otherBatch := uuid.New()
	_, err := f.repo.UpsertSemesterTotals(ctx, []totalModel.SemesterSubjectTotalModel{
		{SemesterSubjectTotalBatchID: otherBatch, SemesterSubjectTotalSemesterID: f.semester, SemesterSubjectTotalSubjectID: f.subjectA, SemesterSubjectTotalClasses: 12},
		{SemesterSubjectTotalBatchID: f.batch, SemesterSubjectTotalSemesterID: f.semester, SemesterSubjectTotalSubjectID: f.subjectA, SemesterSubjectTotalClasses: 4},
	})
	require.NoError(t, err)

	// otherBatch tidak punya slot sama sekali
	totals, n, err := f.calc.CalculateAndPersist(ctx, otherBatch, f.semester)
	require.NoError(t, err)
	assert.Empty(t, totals)
	assert.Zero(t, n)

	rows, err := f.repo.ListSemesterTotals(ctx, otherBatch, f.semester)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// batch lain tidak tersentuh
	kept, err := f.repo.GetSemesterTotal(ctx, f.batch, f.semester, f.subjectA)
	require.NoError(t, err)
	assert.Equal(t, 4, kept.SemesterSubjectTotalClasses)
}
