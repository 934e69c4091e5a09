// file: internals/features/academics/calendars/model/calendar_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ExceptionKind string

const (
	ExceptionHoliday  ExceptionKind = "HOLIDAY"
	ExceptionVacation ExceptionKind = "VACATION"
	ExceptionExam     ExceptionKind = "EXAM"
)

func ParseExceptionKind(s string) (ExceptionKind, bool) {
	switch ExceptionKind(strings.ToUpper(strings.TrimSpace(s))) {
	case ExceptionHoliday:
		return ExceptionHoliday, true
	case ExceptionVacation:
		return ExceptionVacation, true
	case ExceptionExam:
		return ExceptionExam, true
	}
	return "", false
}

// CalendarExceptionModel: libur / masa liburan / masa ujian (rentang tanggal, inklusif).
type CalendarExceptionModel struct {
	CalendarExceptionID           uuid.UUID     `json:"calendar_exception_id"            gorm:"column:calendar_exception_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CalendarExceptionAcademicYear string        `json:"calendar_exception_academic_year" gorm:"column:calendar_exception_academic_year;type:varchar(20);not null;index"`
	CalendarExceptionKind         ExceptionKind `json:"calendar_exception_kind"          gorm:"column:calendar_exception_kind;type:varchar(16);not null"`
	CalendarExceptionName         string        `json:"calendar_exception_name"          gorm:"column:calendar_exception_name;type:varchar(200);not null"`

	CalendarExceptionStartDate time.Time `json:"calendar_exception_start_date" gorm:"column:calendar_exception_start_date;type:date;not null"`
	CalendarExceptionEndDate   time.Time `json:"calendar_exception_end_date"   gorm:"column:calendar_exception_end_date;type:date;not null"`

	CalendarExceptionCreatedAt time.Time `json:"calendar_exception_created_at" gorm:"column:calendar_exception_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (CalendarExceptionModel) TableName() string { return "calendar_exceptions" }

type SaturdayPattern string

const (
	SaturdayAll    SaturdayPattern = "all"
	SaturdayNone   SaturdayPattern = "none"
	Saturday1st3rd SaturdayPattern = "1st_3rd"
	Saturday2nd4th SaturdayPattern = "2nd_4th"
	SaturdayOdd    SaturdayPattern = "odd"
	SaturdayEven   SaturdayPattern = "even"
)

// WeeklyOffConfigModel: flag libur mingguan per tahun akademik.
type WeeklyOffConfigModel struct {
	WeeklyOffConfigID           uuid.UUID `json:"weekly_off_config_id"            gorm:"column:weekly_off_config_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	WeeklyOffConfigAcademicYear string    `json:"weekly_off_config_academic_year" gorm:"column:weekly_off_config_academic_year;type:varchar(20);not null;uniqueIndex"`

	WeeklyOffConfigMondayOff    bool `json:"weekly_off_config_monday_off"    gorm:"column:weekly_off_config_monday_off;not null;default:false"`
	WeeklyOffConfigTuesdayOff   bool `json:"weekly_off_config_tuesday_off"   gorm:"column:weekly_off_config_tuesday_off;not null;default:false"`
	WeeklyOffConfigWednesdayOff bool `json:"weekly_off_config_wednesday_off" gorm:"column:weekly_off_config_wednesday_off;not null;default:false"`
	WeeklyOffConfigThursdayOff  bool `json:"weekly_off_config_thursday_off"  gorm:"column:weekly_off_config_thursday_off;not null;default:false"`
	WeeklyOffConfigFridayOff    bool `json:"weekly_off_config_friday_off"    gorm:"column:weekly_off_config_friday_off;not null;default:false"`
	WeeklyOffConfigSundayOff    bool `json:"weekly_off_config_sunday_off"    gorm:"column:weekly_off_config_sunday_off;not null;default:true"`

	WeeklyOffConfigSaturdayPattern SaturdayPattern `json:"weekly_off_config_saturday_pattern" gorm:"column:weekly_off_config_saturday_pattern;type:varchar(10);not null;default:'all'"`

	WeeklyOffConfigUpdatedAt time.Time `json:"weekly_off_config_updated_at" gorm:"column:weekly_off_config_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (WeeklyOffConfigModel) TableName() string { return "weekly_off_configs" }

// TeachingPeriodModel: batas walk kalender untuk satu semester.
type TeachingPeriodModel struct {
	TeachingPeriodID           uuid.UUID `json:"teaching_period_id"            gorm:"column:teaching_period_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	TeachingPeriodSemesterID   uuid.UUID `json:"teaching_period_semester_id"   gorm:"column:teaching_period_semester_id;type:uuid;not null;uniqueIndex"`
	TeachingPeriodAcademicYear string    `json:"teaching_period_academic_year" gorm:"column:teaching_period_academic_year;type:varchar(20);not null"`

	TeachingPeriodStartDate time.Time `json:"teaching_period_start_date" gorm:"column:teaching_period_start_date;type:date;not null"`
	TeachingPeriodEndDate   time.Time `json:"teaching_period_end_date"   gorm:"column:teaching_period_end_date;type:date;not null"`
}

func (TeachingPeriodModel) TableName() string { return "teaching_periods" }
