package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"hajri_backend/internals/features/academics/calendars/model"
	"hajri_backend/internals/features/academics/calendars/service"
	"hajri_backend/internals/helpers/dbtime"
)

// POST /api/a/calendar/exceptions
type CreateExceptionRequest struct {
	AcademicYear string  `json:"academic_year" validate:"required,notblank,max=20"`
	Kind         string  `json:"kind"          validate:"required,oneof=HOLIDAY VACATION EXAM holiday vacation exam"`
	Name         string  `json:"name"          validate:"required,notblank,max=200"`
	StartDate    string  `json:"start_date"    validate:"required,date_ymd"`
	EndDate      *string `json:"end_date"      validate:"omitempty,date_ymd"`
}

func (r *CreateExceptionRequest) Normalize() {
	r.AcademicYear = strings.TrimSpace(r.AcademicYear)
	r.Name = strings.TrimSpace(r.Name)
	r.Kind = strings.ToUpper(strings.TrimSpace(r.Kind))
}

// ToModel: dipanggil setelah lolos validator. end_date kosong = satu hari.
func (r CreateExceptionRequest) ToModel() model.CalendarExceptionModel {
	kind, _ := model.ParseExceptionKind(r.Kind)
	start, _ := dbtime.ParseDate(r.StartDate)
	end := start
	if r.EndDate != nil {
		if d, err := dbtime.ParseDate(*r.EndDate); err == nil {
			end = d
		}
	}
	return model.CalendarExceptionModel{
		CalendarExceptionAcademicYear: r.AcademicYear,
		CalendarExceptionKind:         kind,
		CalendarExceptionName:         r.Name,
		CalendarExceptionStartDate:    start,
		CalendarExceptionEndDate:      end,
	}
}

type ExceptionResponse struct {
	ID           uuid.UUID           `json:"id"`
	AcademicYear string              `json:"academic_year"`
	Kind         model.ExceptionKind `json:"kind"`
	Name         string              `json:"name"`
	StartDate    string              `json:"start_date"`
	EndDate      string              `json:"end_date"`
	CreatedAt    time.Time           `json:"created_at"`
}

func ToExceptionResponse(m model.CalendarExceptionModel) ExceptionResponse {
	return ExceptionResponse{
		ID:           m.CalendarExceptionID,
		AcademicYear: m.CalendarExceptionAcademicYear,
		Kind:         m.CalendarExceptionKind,
		Name:         m.CalendarExceptionName,
		StartDate:    dbtime.FormatDate(m.CalendarExceptionStartDate),
		EndDate:      dbtime.FormatDate(m.CalendarExceptionEndDate),
		CreatedAt:    m.CalendarExceptionCreatedAt,
	}
}

type TeachingDayResponse struct {
	Date          string   `json:"date"`
	IsTeachingDay bool     `json:"is_teaching_day"`
	InPeriod      bool     `json:"in_teaching_period"`
	Reasons       []string `json:"reasons"`
}

type NonTeachingResponse struct {
	From                 string            `json:"from"`
	To                   string            `json:"to"`
	TotalDays            int               `json:"total_days"`
	TeachingDays         int               `json:"teaching_days"`
	NonTeachingDaysCount int               `json:"non_teaching_days_count"`
	NonTeachingDates     []string          `json:"non_teaching_dates"`
	Breakdown            service.Breakdown `json:"breakdown"`
}

func ToNonTeachingResponse(r service.Resolution) NonTeachingResponse {
	dates := make([]string, 0, len(r.Dates))
	for _, d := range r.Dates {
		dates = append(dates, dbtime.FormatDate(d))
	}
	return NonTeachingResponse{
		From:                 dbtime.FormatDate(r.Start),
		To:                   dbtime.FormatDate(r.End),
		TotalDays:            dbtime.DaysInclusive(r.Start, r.End),
		TeachingDays:         r.TeachingDays(),
		NonTeachingDaysCount: len(dates),
		NonTeachingDates:     dates,
		Breakdown:            r.Breakdown,
	}
}
