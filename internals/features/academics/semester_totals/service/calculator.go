// file: internals/features/academics/semester_totals/service/calculator.go
package service

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	calService "hajri_backend/internals/features/academics/calendars/service"
	totalModel "hajri_backend/internals/features/academics/semester_totals/model"
	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	"hajri_backend/internals/helpers/dbtime"
	"hajri_backend/internals/repository"
)

/* =========================
   Types
   ========================= */

type BreakdownSummary struct {
	SundaysCount         int                     `json:"sundays_count"`
	SaturdaysCount       int                     `json:"saturdays_count"`
	OtherWeeklyOffsCount int                     `json:"other_weekly_offs_count"`
	Holidays             []calService.RangeEntry `json:"holidays"`
	Vacations            []calService.RangeEntry `json:"vacations"`
	Exams                []calService.RangeEntry `json:"exams"`
	SaturdayPattern      string                  `json:"saturday_pattern"`
}

// CalculationDetails disimpan apa adanya di kolom calculation_details (jsonb).
type CalculationDetails struct {
	SemesterStart           string           `json:"semester_start"`
	SemesterEnd             string           `json:"semester_end"`
	TotalCalendarDays       int              `json:"total_calendar_days"`
	TeachingWeeks           int              `json:"teaching_weeks"`
	NonTeachingDaysExcluded int              `json:"non_teaching_days_excluded"`
	TeachingDaysByWeekday   map[int]int      `json:"teaching_days_by_weekday"` // ISO weekday → hari efektif
	Formula                 string           `json:"formula"`
	NonTeachingBreakdown    BreakdownSummary `json:"non_teaching_breakdown"`
}

type Total struct {
	Subject                subjectModel.SubjectModel `json:"-"`
	SubjectID              uuid.UUID                 `json:"subject_id"`
	SubjectCode            string                    `json:"subject_code"`
	SubjectName            string                    `json:"subject_name"`
	ClassType              subjectModel.ClassType    `json:"class_type"`
	SlotsPerWeek           int                       `json:"slots_per_week"`
	DaySlots               map[int]int               `json:"day_slots"`
	TotalClassesInSemester int                       `json:"total_classes_in_semester"`
	Details                CalculationDetails        `json:"calculation_details"`
}

/* =========================
   Calculator
   ========================= */

type Calculator struct {
	Store     repository.Store
	Calendars *calService.Loader
	Logger    log.Logger

	// jumlah pasangan (batch, semester) yang dihitung paralel di RecalculateAll
	Concurrency int

	nowFunc func() time.Time
}

func NewCalculator(store repository.Store, logger log.Logger) *Calculator {
	return &Calculator{
		Store:       store,
		Calendars:   calService.NewLoader(store),
		Logger:      log.With(logger, "component", "semester_totals"),
		Concurrency: 4,
		nowFunc:     time.Now,
	}
}

// SubjectSlots mengagregasi slot timetable yang sudah publish per subject.
// Arah lookup satu arah: slot → subject.
func (c *Calculator) SubjectSlots(ctx context.Context, batchID uuid.UUID) ([]subjectModel.SubjectSlots, error) {
	slots, err := c.Store.ListPublishedSlots(ctx, batchID)
	if err != nil {
		return nil, errors.Wrap(err, "list published slots")
	}

	bySubject := map[uuid.UUID]*subjectModel.SubjectSlots{}
	for _, s := range slots {
		if s.TimetableSlotDayOfWeek < 1 || s.TimetableSlotDayOfWeek > 7 || s.TimetableSlotCount <= 0 {
			continue
		}
		agg, ok := bySubject[s.TimetableSlotSubjectID]
		if !ok {
			subj, err := c.Store.GetSubject(ctx, s.TimetableSlotSubjectID)
			if err != nil {
				if repository.IsNotFound(err) {
					level.Warn(c.Logger).Log("msg", "timetable slot references unknown subject", "subject_id", s.TimetableSlotSubjectID)
					continue
				}
				return nil, errors.Wrap(err, "get subject")
			}
			agg = &subjectModel.SubjectSlots{Subject: *subj, DaySlots: map[int]int{}}
			bySubject[s.TimetableSlotSubjectID] = agg
		}
		agg.SlotsPerWeek += s.TimetableSlotCount
		agg.DaySlots[s.TimetableSlotDayOfWeek] += s.TimetableSlotCount
	}

	out := make([]subjectModel.SubjectSlots, 0, len(bySubject))
	for _, v := range bySubject {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject.SubjectCode < out[j].Subject.SubjectCode })
	return out, nil
}

// CalculateTotals: jumlah sesi tiap subject selama teaching period batch+semester.
// Subject tanpa slot tidak ikut. Teaching period tidak ada → ErrNoTeachingPeriod.
func (c *Calculator) CalculateTotals(ctx context.Context, batchID, semesterID uuid.UUID) (map[uuid.UUID]Total, error) {
	subjects, err := c.SubjectSlots(ctx, batchID)
	if err != nil {
		return nil, err
	}
	out := map[uuid.UUID]Total{}
	if len(subjects) == 0 {
		return out, nil
	}

	cal, err := c.Calendars.ForSemester(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	return Compute(*cal, subjects), nil
}

// Compute murni (tanpa store): dipakai CalculateTotals & test.
func Compute(cal calService.Calendar, subjects []subjectModel.SubjectSlots) map[uuid.UUID]Total {
	res := cal.Resolve()
	start, end := res.Start, res.End
	totalDays := dbtime.DaysInclusive(start, end)
	weeks := totalDays / 7
	excluded := len(res.Dates)

	summary := BreakdownSummary{
		SundaysCount:         len(res.Breakdown.Sundays),
		SaturdaysCount:       len(res.Breakdown.Saturdays),
		OtherWeeklyOffsCount: len(res.Breakdown.OtherWeeklyOffs),
		Holidays:             res.Breakdown.Holidays,
		Vacations:            res.Breakdown.Vacations,
		Exams:                res.Breakdown.Exams,
		SaturdayPattern:      string(cal.WeeklyOff.SaturdayPattern),
	}

	out := map[uuid.UUID]Total{}
	for _, s := range subjects {
		if s.SlotsPerWeek <= 0 {
			continue
		}
		classes := 0
		byWeekday := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0, 6: 0, 7: 0}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if res.IsNonTeaching(d) {
				continue
			}
			wd := dbtime.ISOWeekday(d)
			if n := s.DaySlots[wd]; n > 0 {
				classes += n
				byWeekday[wd]++
			}
		}

		out[s.Subject.SubjectID] = Total{
			Subject:                s.Subject,
			SubjectID:              s.Subject.SubjectID,
			SubjectCode:            s.Subject.SubjectCode,
			SubjectName:            s.Subject.SubjectName,
			ClassType:              s.Subject.SubjectClassType,
			SlotsPerWeek:           s.SlotsPerWeek,
			DaySlots:               s.DaySlots,
			TotalClassesInSemester: classes,
			Details: CalculationDetails{
				SemesterStart:           dbtime.FormatDate(start),
				SemesterEnd:             dbtime.FormatDate(end),
				TotalCalendarDays:       totalDays,
				TeachingWeeks:           weeks,
				NonTeachingDaysExcluded: excluded,
				TeachingDaysByWeekday:   byWeekday,
				Formula: fmt.Sprintf("%d slots/week across %d weeks, excluding %d non-teaching days",
					s.SlotsPerWeek, weeks, excluded),
				NonTeachingBreakdown: summary,
			},
		}
	}
	return out
}

// Persist mengganti set totals (batch, semester): upsert per subject, lalu hapus subject
// yang sudah tidak punya slot. Return jumlah baris yang di-upsert.
func (c *Calculator) Persist(ctx context.Context, batchID, semesterID uuid.UUID, totals map[uuid.UUID]Total) (int, error) {
	now := c.nowFunc().UTC()

	rows := make([]totalModel.SemesterSubjectTotalModel, 0, len(totals))
	for subjectID, t := range totals {
		// SortMapKeys → JSON deterministik
		b, err := sonic.ConfigStd.Marshal(t.Details)
		if err != nil {
			return 0, errors.Wrap(err, "encode calculation details")
		}
		rows = append(rows, totalModel.SemesterSubjectTotalModel{
			SemesterSubjectTotalBatchID:            batchID,
			SemesterSubjectTotalSemesterID:         semesterID,
			SemesterSubjectTotalSubjectID:          subjectID,
			SemesterSubjectTotalClassType:          t.ClassType,
			SemesterSubjectTotalSlotsPerWeek:       t.SlotsPerWeek,
			SemesterSubjectTotalClasses:            t.TotalClassesInSemester,
			SemesterSubjectTotalCalculationDetails: datatypes.JSON(b),
			SemesterSubjectTotalCalculatedAt:       now,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].SemesterSubjectTotalSubjectID.String() < rows[j].SemesterSubjectTotalSubjectID.String()
	})

	n, err := c.Store.UpsertSemesterTotals(ctx, rows)
	if err != nil {
		return 0, errors.Wrap(err, "upsert semester totals")
	}

	keep := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		keep = append(keep, r.SemesterSubjectTotalSubjectID)
	}
	removed, err := c.Store.DeleteSemesterTotalsExcept(ctx, batchID, semesterID, keep)
	if err != nil {
		return n, errors.Wrap(err, "delete stale semester totals")
	}
	if removed > 0 {
		level.Info(c.Logger).Log("msg", "stale semester totals removed", "batch_id", batchID, "semester_id", semesterID, "rows", removed)
	}
	return n, nil
}

// CalculateAndPersist = CalculateTotals + Persist.
func (c *Calculator) CalculateAndPersist(ctx context.Context, batchID, semesterID uuid.UUID) (map[uuid.UUID]Total, int, error) {
	totals, err := c.CalculateTotals(ctx, batchID, semesterID)
	if err != nil {
		return nil, 0, err
	}
	n, err := c.Persist(ctx, batchID, semesterID, totals)
	if err != nil {
		return totals, 0, err
	}
	return totals, n, nil
}

type batchSemester struct {
	BatchID    uuid.UUID
	SemesterID uuid.UUID
}

// RecalculateAll: semua pasangan (batch, semester) aktif dari student context.
// Semester tanpa teaching period dilewati (warn), error lain menghentikan run.
func (c *Calculator) RecalculateAll(ctx context.Context) (int, error) {
	contexts, err := c.Store.ListStudentContexts(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "list student contexts")
	}

	seen := map[batchSemester]bool{}
	var pairs []batchSemester
	for _, sc := range contexts {
		k := batchSemester{sc.StudentContextBatchID, sc.StudentContextSemesterID}
		if !seen[k] {
			seen[k] = true
			pairs = append(pairs, k)
		}
	}

	var rows int64
	g, gctx := errgroup.WithContext(ctx)
	limit := c.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for _, p := range pairs {
		p := p
		g.Go(func() error {
			_, n, err := c.CalculateAndPersist(gctx, p.BatchID, p.SemesterID)
			if err != nil {
				if errors.Is(err, calService.ErrNoTeachingPeriod) {
					level.Warn(c.Logger).Log("msg", "skip: no teaching period", "batch_id", p.BatchID, "semester_id", p.SemesterID)
					return nil
				}
				return errors.Wrapf(err, "batch %s semester %s", p.BatchID, p.SemesterID)
			}
			atomic.AddInt64(&rows, int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(atomic.LoadInt64(&rows)), err
	}
	level.Info(c.Logger).Log("msg", "semester totals recalculated", "pairs", len(pairs), "rows", rows)
	return int(rows), nil
}
