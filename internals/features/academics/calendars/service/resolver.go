// file: internals/features/academics/calendars/service/resolver.go
package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	calModel "hajri_backend/internals/features/academics/calendars/model"
	"hajri_backend/internals/helpers/dbtime"
)

/* =========================
   Weekly off
   ========================= */

// WeeklyOff: flag libur per ISO weekday (1..7). Sabtu (6) diatur SaturdayPattern, bukan flag.
type WeeklyOff struct {
	Off             [8]bool
	SaturdayPattern calModel.SaturdayPattern
}

// DefaultWeeklyOff: Minggu libur, Senin–Jumat masuk, semua Sabtu libur.
func DefaultWeeklyOff() WeeklyOff {
	var wo WeeklyOff
	wo.Off[7] = true
	wo.SaturdayPattern = calModel.SaturdayAll
	return wo
}

// WeeklyOffFromModel: nil (belum dikonfigurasi) → default.
func WeeklyOffFromModel(m *calModel.WeeklyOffConfigModel) WeeklyOff {
	if m == nil {
		return DefaultWeeklyOff()
	}
	var wo WeeklyOff
	wo.Off[1] = m.WeeklyOffConfigMondayOff
	wo.Off[2] = m.WeeklyOffConfigTuesdayOff
	wo.Off[3] = m.WeeklyOffConfigWednesdayOff
	wo.Off[4] = m.WeeklyOffConfigThursdayOff
	wo.Off[5] = m.WeeklyOffConfigFridayOff
	wo.Off[7] = m.WeeklyOffConfigSundayOff
	wo.SaturdayPattern = m.WeeklyOffConfigSaturdayPattern
	if strings.TrimSpace(string(wo.SaturdayPattern)) == "" {
		wo.SaturdayPattern = calModel.SaturdayAll
	}
	return wo
}

var dayNames = [8]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// SaturdayOrdinal: Sabtu ke berapa dalam bulan (1..5).
func SaturdayOrdinal(d time.Time) int {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Saturday) - int(first.Weekday()) + 7) % 7
	firstSat := first.AddDate(0, 0, offset)
	return int(dbtime.DateOnly(d).Sub(firstSat).Hours()/24)/7 + 1
}

// IsSaturdayOff: hari non-Sabtu selalu false. Pola tidak dikenal = "all".
func IsSaturdayOff(d time.Time, pattern calModel.SaturdayPattern) bool {
	if d.Weekday() != time.Saturday {
		return false
	}
	switch pattern {
	case calModel.SaturdayNone:
		return false
	case calModel.Saturday1st3rd:
		n := SaturdayOrdinal(d)
		return n == 1 || n == 3
	case calModel.Saturday2nd4th, calModel.SaturdayEven:
		n := SaturdayOrdinal(d)
		return n == 2 || n == 4
	case calModel.SaturdayOdd:
		n := SaturdayOrdinal(d)
		return n == 1 || n == 3 || n == 5
	default:
		return true
	}
}

/* =========================
   Resolution
   ========================= */

type WeeklyOffDay struct {
	Date string `json:"date"`
	Day  string `json:"day"`
}

type RangeEntry struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

type Breakdown struct {
	Sundays         []string       `json:"sundays"`
	Saturdays       []string       `json:"saturdays"`
	OtherWeeklyOffs []WeeklyOffDay `json:"other_weekly_offs"`
	Holidays        []RangeEntry   `json:"holidays"`
	Vacations       []RangeEntry   `json:"vacations"`
	Exams           []RangeEntry   `json:"exams"`
}

func newBreakdown() Breakdown {
	return Breakdown{
		Sundays:         []string{},
		Saturdays:       []string{},
		OtherWeeklyOffs: []WeeklyOffDay{},
		Holidays:        []RangeEntry{},
		Vacations:       []RangeEntry{},
		Exams:           []RangeEntry{},
	}
}

// Resolution: himpunan tanggal non-teaching (unik, terurut) + rincian per kategori.
// Satu tanggal bisa muncul di beberapa bucket breakdown, tapi sekali saja di Dates.
type Resolution struct {
	Start     time.Time
	End       time.Time
	Dates     []time.Time
	Breakdown Breakdown

	set map[string]struct{}
}

func (r Resolution) IsNonTeaching(d time.Time) bool {
	_, ok := r.set[dbtime.FormatDate(d)]
	return ok
}

// TeachingDays = jumlah hari di [Start, End] yang bukan non-teaching.
func (r Resolution) TeachingDays() int {
	return dbtime.DaysInclusive(r.Start, r.End) - len(r.Dates)
}

// exceptionRange: end kosong / sebelum start → satu hari.
func exceptionRange(e calModel.CalendarExceptionModel) (time.Time, time.Time) {
	s := dbtime.DateOnly(e.CalendarExceptionStartDate)
	en := dbtime.DateOnly(e.CalendarExceptionEndDate)
	if e.CalendarExceptionEndDate.IsZero() || en.Before(s) {
		en = s
	}
	return s, en
}

// NonTeachingDates menelusuri setiap hari di [start, end].
// Tidak ada state error: input kosong → resolusi kosong.
func NonTeachingDates(start, end time.Time, wo WeeklyOff, exceptions []calModel.CalendarExceptionModel) Resolution {
	start, end = dbtime.DateOnly(start), dbtime.DateOnly(end)
	res := Resolution{
		Start:     start,
		End:       end,
		Dates:     []time.Time{},
		Breakdown: newBreakdown(),
		set:       map[string]struct{}{},
	}
	if end.Before(start) {
		return res
	}

	mark := func(d time.Time) {
		k := dbtime.FormatDate(d)
		if _, ok := res.set[k]; ok {
			return
		}
		res.set[k] = struct{}{}
		res.Dates = append(res.Dates, d)
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := dbtime.ISOWeekday(d)
		switch {
		case wd == 7:
			if wo.Off[7] {
				mark(d)
				res.Breakdown.Sundays = append(res.Breakdown.Sundays, dbtime.FormatDate(d))
			}
		case wd == 6:
			if IsSaturdayOff(d, wo.SaturdayPattern) {
				mark(d)
				res.Breakdown.Saturdays = append(res.Breakdown.Saturdays, dbtime.FormatDate(d))
			}
		case wo.Off[wd]:
			mark(d)
			res.Breakdown.OtherWeeklyOffs = append(res.Breakdown.OtherWeeklyOffs, WeeklyOffDay{
				Date: dbtime.FormatDate(d),
				Day:  dayNames[wd],
			})
		}
	}

	for _, e := range exceptions {
		s, en := exceptionRange(e)
		// clip ke [start, end]
		s, en = dbtime.MaxDate(s, start), dbtime.MinDate(en, end)
		if en.Before(s) {
			continue
		}
		entry := RangeEntry{
			Name:      e.CalendarExceptionName,
			StartDate: dbtime.FormatDate(s),
			EndDate:   dbtime.FormatDate(en),
			Days:      dbtime.DaysInclusive(s, en),
		}
		switch e.CalendarExceptionKind {
		case calModel.ExceptionVacation:
			res.Breakdown.Vacations = append(res.Breakdown.Vacations, entry)
		case calModel.ExceptionExam:
			res.Breakdown.Exams = append(res.Breakdown.Exams, entry)
		default:
			res.Breakdown.Holidays = append(res.Breakdown.Holidays, entry)
		}
		for d := s; !d.After(en); d = d.AddDate(0, 0, 1) {
			mark(d)
		}
	}

	sort.Slice(res.Dates, func(i, j int) bool { return res.Dates[i].Before(res.Dates[j]) })
	return res
}

// IsTeachingDay: cek satu tanggal + alasan kalau bukan hari kuliah.
func IsTeachingDay(d time.Time, wo WeeklyOff, exceptions []calModel.CalendarExceptionModel) (bool, []string) {
	d = dbtime.DateOnly(d)
	var reasons []string

	wd := dbtime.ISOWeekday(d)
	switch {
	case wd == 6:
		if IsSaturdayOff(d, wo.SaturdayPattern) {
			reasons = append(reasons, fmt.Sprintf("Saturday off (pattern %s)", wo.SaturdayPattern))
		}
	case wo.Off[wd]:
		reasons = append(reasons, fmt.Sprintf("%s is a weekly off", dayNames[wd]))
	}

	for _, e := range exceptions {
		s, en := exceptionRange(e)
		if d.Before(s) || d.After(en) {
			continue
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", strings.ToLower(string(e.CalendarExceptionKind)), e.CalendarExceptionName))
	}
	return len(reasons) == 0, reasons
}
