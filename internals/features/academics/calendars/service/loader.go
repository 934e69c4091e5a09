package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	calModel "hajri_backend/internals/features/academics/calendars/model"
	"hajri_backend/internals/repository"
)

// ErrNoTeachingPeriod: semester belum punya teaching period (operasional, bukan policy).
var ErrNoTeachingPeriod = errors.New("no teaching period for semester")

// Calendar = semua input kalender untuk satu semester.
type Calendar struct {
	Period     calModel.TeachingPeriodModel
	WeeklyOff  WeeklyOff
	Exceptions []calModel.CalendarExceptionModel
}

func (c Calendar) Resolve() Resolution {
	return NonTeachingDates(c.Period.TeachingPeriodStartDate, c.Period.TeachingPeriodEndDate, c.WeeklyOff, c.Exceptions)
}

func (c Calendar) InPeriod(d time.Time) bool {
	s, e := c.Period.TeachingPeriodStartDate, c.Period.TeachingPeriodEndDate
	return !d.Before(s) && !d.After(e)
}

func (c Calendar) IsTeachingDay(d time.Time) (bool, []string) {
	return IsTeachingDay(d, c.WeeklyOff, c.Exceptions)
}

// Loader membaca period + weekly off + exception dari store.
type Loader struct {
	Store repository.ReferenceStore
}

func NewLoader(store repository.ReferenceStore) *Loader {
	return &Loader{Store: store}
}

func (l *Loader) ForSemester(ctx context.Context, semesterID uuid.UUID) (*Calendar, error) {
	period, err := l.Store.GetTeachingPeriod(ctx, semesterID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.Wrapf(ErrNoTeachingPeriod, "semester %s", semesterID)
		}
		return nil, errors.Wrap(err, "load teaching period")
	}
	wo, exceptions, err := l.ForAcademicYear(ctx, period.TeachingPeriodAcademicYear)
	if err != nil {
		return nil, err
	}
	return &Calendar{Period: *period, WeeklyOff: wo, Exceptions: exceptions}, nil
}

// ForAcademicYear: config weekly off yang belum ada → default.
func (l *Loader) ForAcademicYear(ctx context.Context, academicYear string) (WeeklyOff, []calModel.CalendarExceptionModel, error) {
	cfg, err := l.Store.GetWeeklyOffConfig(ctx, academicYear)
	if err != nil && !repository.IsNotFound(err) {
		return WeeklyOff{}, nil, errors.Wrap(err, "load weekly off config")
	}
	exceptions, err := l.Store.ListCalendarExceptions(ctx, academicYear)
	if err != nil {
		return WeeklyOff{}, nil, errors.Wrap(err, "load calendar exceptions")
	}
	return WeeklyOffFromModel(cfg), exceptions, nil
}
