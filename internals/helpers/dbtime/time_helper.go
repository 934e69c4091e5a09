// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Tanggal kalender direpresentasikan sebagai time.Time UTC tengah malam.
// Kolom DATE di postgres dibaca gorm dengan bentuk yang sama.

const LayoutDate = "2006-01-02"

var (
	locMu  sync.RWMutex
	appLoc = time.UTC
)

// SetAppLocation dipanggil sekali saat bootstrap (APP_TIMEZONE).
func SetAppLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	locMu.Lock()
	appLoc = loc
	locMu.Unlock()
}

func AppLocation() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()
	return appLoc
}

// DateOnly membuang jam; tanggal diambil dari zona t sendiri.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateIn: tanggal kalender dari instant t menurut zona loc.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = AppLocation()
	}
	return DateOnly(t.In(loc))
}

// Today = tanggal hari ini di zona aplikasi.
func Today(now time.Time) time.Time {
	return DateIn(now, AppLocation())
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(LayoutDate, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q", s)
	}
	return t, nil
}

func FormatDate(t time.Time) string { return t.Format(LayoutDate) }

// Weekday ISO: 1=Senin .. 7=Minggu
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// DaysInclusive: jumlah hari [start, end]; 0 jika end < start.
func DaysInclusive(start, end time.Time) int {
	s, e := DateOnly(start), DateOnly(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}
