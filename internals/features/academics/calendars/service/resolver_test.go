package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calModel "hajri_backend/internals/features/academics/calendars/model"
	"hajri_backend/internals/helpers/dbtime"
)

func d(s string) time.Time {
	t, err := dbtime.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func dates(ts []time.Time) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, dbtime.FormatDate(t))
	}
	return out
}

func exception(kind calModel.ExceptionKind, name, start, end string) calModel.CalendarExceptionModel {
	e := calModel.CalendarExceptionModel{
		CalendarExceptionKind:      kind,
		CalendarExceptionName:      name,
		CalendarExceptionStartDate: d(start),
	}
	if end != "" {
		e.CalendarExceptionEndDate = d(end)
	}
	return e
}

func TestSaturdayOrdinal(t *testing.T) {
	// Januari 2025: Sabtu jatuh di 4, 11, 18, 25
	tests := []struct {
		date string
		want int
	}{
		{"2025-01-04", 1},
		{"2025-01-11", 2},
		{"2025-01-18", 3},
		{"2025-01-25", 4},
		{"2025-03-01", 1},
		{"2025-03-29", 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SaturdayOrdinal(d(tt.date)), tt.date)
	}
}

func TestIsSaturdayOff(t *testing.T) {
	sats := []string{"2025-03-01", "2025-03-08", "2025-03-15", "2025-03-22", "2025-03-29"}
	tests := []struct {
		pattern calModel.SaturdayPattern
		want    []bool
	}{
		{calModel.SaturdayAll, []bool{true, true, true, true, true}},
		{calModel.SaturdayNone, []bool{false, false, false, false, false}},
		{calModel.Saturday1st3rd, []bool{true, false, true, false, false}},
		{calModel.Saturday2nd4th, []bool{false, true, false, true, false}},
		{calModel.SaturdayEven, []bool{false, true, false, true, false}},
		{calModel.SaturdayOdd, []bool{true, false, true, false, true}},
		{calModel.SaturdayPattern("fortnightly"), []bool{true, true, true, true, true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.pattern), func(t *testing.T) {
			for i, s := range sats {
				assert.Equal(t, tt.want[i], IsSaturdayOff(d(s), tt.pattern), s)
			}
		})
	}

	assert.False(t, IsSaturdayOff(d("2025-03-03"), calModel.SaturdayAll), "monday is never a saturday off")
}

func TestNonTeachingDates_SecondFourthSaturdays(t *testing.T) {
	wo := WeeklyOff{SaturdayPattern: calModel.Saturday2nd4th}
	res := NonTeachingDates(d("2025-01-01"), d("2025-01-31"), wo, nil)

	assert.Equal(t, []string{"2025-01-11", "2025-01-25"}, dates(res.Dates))
	assert.Equal(t, []string{"2025-01-11", "2025-01-25"}, res.Breakdown.Saturdays)
	assert.Empty(t, res.Breakdown.Sundays)
}

func TestNonTeachingDates_Defaults(t *testing.T) {
	res := NonTeachingDates(d("2025-01-06"), d("2025-01-19"), DefaultWeeklyOff(), nil)

	assert.Equal(t, []string{"2025-01-11", "2025-01-12", "2025-01-18", "2025-01-19"}, dates(res.Dates))
	assert.Equal(t, []string{"2025-01-12", "2025-01-19"}, res.Breakdown.Sundays)
	assert.Equal(t, 10, res.TeachingDays())
}

func TestNonTeachingDates_ExceptionsAreClippedAndUnioned(t *testing.T) {
	exc := []calModel.CalendarExceptionModel{
		exception(calModel.ExceptionHoliday, "Republic Day", "2025-01-26", ""), // Minggu, juga weekly off
		exception(calModel.ExceptionVacation, "Winter Break", "2024-12-25", "2025-01-03"),
		exception(calModel.ExceptionExam, "Mid Sem", "2025-01-27", "2025-02-05"),
		exception(calModel.ExceptionHoliday, "Outside", "2025-03-01", "2025-03-02"),
	}
	res := NonTeachingDates(d("2025-01-01"), d("2025-01-31"), DefaultWeeklyOff(), exc)

	require.Len(t, res.Breakdown.Vacations, 1)
	assert.Equal(t, RangeEntry{Name: "Winter Break", StartDate: "2025-01-01", EndDate: "2025-01-03", Days: 3}, res.Breakdown.Vacations[0])

	require.Len(t, res.Breakdown.Exams, 1)
	assert.Equal(t, RangeEntry{Name: "Mid Sem", StartDate: "2025-01-27", EndDate: "2025-01-31", Days: 5}, res.Breakdown.Exams[0])

	require.Len(t, res.Breakdown.Holidays, 1)
	assert.Equal(t, "2025-01-26", res.Breakdown.Holidays[0].StartDate)
	assert.Equal(t, "2025-01-26", res.Breakdown.Holidays[0].EndDate)
	assert.Contains(t, res.Breakdown.Sundays, "2025-01-26")

	// tanggal unik + terurut
	seen := map[string]bool{}
	for i, dt := range res.Dates {
		k := dbtime.FormatDate(dt)
		assert.False(t, seen[k], "duplicate %s", k)
		seen[k] = true
		if i > 0 {
			assert.True(t, res.Dates[i-1].Before(dt))
		}
	}
	assert.True(t, res.IsNonTeaching(d("2025-01-02")))
	assert.False(t, res.IsNonTeaching(d("2025-01-06")))
}

func TestNonTeachingDates_OtherWeeklyOffs(t *testing.T) {
	wo := DefaultWeeklyOff()
	wo.Off[3] = true // Rabu
	res := NonTeachingDates(d("2025-01-06"), d("2025-01-12"), wo, nil)

	require.Len(t, res.Breakdown.OtherWeeklyOffs, 1)
	assert.Equal(t, WeeklyOffDay{Date: "2025-01-08", Day: "Wednesday"}, res.Breakdown.OtherWeeklyOffs[0])
}

func TestNonTeachingDates_EmptyRange(t *testing.T) {
	res := NonTeachingDates(d("2025-02-01"), d("2025-01-01"), DefaultWeeklyOff(), nil)
	assert.Empty(t, res.Dates)
	assert.Equal(t, 0, res.TeachingDays())
}

func TestWeeklyOffFromModel(t *testing.T) {
	assert.Equal(t, DefaultWeeklyOff(), WeeklyOffFromModel(nil))

	wo := WeeklyOffFromModel(&calModel.WeeklyOffConfigModel{
		WeeklyOffConfigFridayOff: true,
	})
	assert.True(t, wo.Off[5])
	assert.False(t, wo.Off[7])
	assert.Equal(t, calModel.SaturdayAll, wo.SaturdayPattern)
}

func TestIsTeachingDay(t *testing.T) {
	exc := []calModel.CalendarExceptionModel{
		exception(calModel.ExceptionHoliday, "Pongal", "2025-01-14", ""),
	}
	wo := DefaultWeeklyOff()

	ok, reasons := IsTeachingDay(d("2025-01-13"), wo, exc)
	assert.True(t, ok)
	assert.Empty(t, reasons)

	ok, reasons = IsTeachingDay(d("2025-01-14"), wo, exc)
	assert.False(t, ok)
	assert.Equal(t, []string{"holiday: Pongal"}, reasons)

	ok, _ = IsTeachingDay(d("2025-01-12"), wo, exc)
	assert.False(t, ok, "sunday")

	ok, _ = IsTeachingDay(d("2025-01-11"), wo, exc)
	assert.False(t, ok, "saturday under pattern all")
}
