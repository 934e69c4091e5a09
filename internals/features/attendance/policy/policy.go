// file: internals/features/attendance/policy/policy.go
package policy

import (
	"errors"
	"fmt"
	"net/http"
)

type Rule string

const (
	RuleSnapshotLock            Rule = "SNAPSHOT_LOCK"
	RuleSnapshotRequired        Rule = "SNAPSHOT_REQUIRED"
	RuleContextRequired         Rule = "CONTEXT_REQUIRED"
	RuleSemesterReadonly        Rule = "SEMESTER_READONLY"
	RuleValidTeachingDay        Rule = "VALID_TEACHING_DAY"
	RuleSubjectMapping          Rule = "SUBJECT_MAPPING"
	RuleNoDuplicate             Rule = "NO_DUPLICATE"
	RuleSnapshotDecreaseConfirm Rule = "SNAPSHOT_DECREASE_CONFIRM"
)

// Violation adalah penolakan aturan bisnis yang bisa dijelaskan ke user.
// Bukan kegagalan operasional: caller menampilkannya, tidak me-retry.
type Violation struct {
	Rule       Rule           `json:"rule"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

func (v *Violation) Error() string {
	return fmt.Sprintf("policy violation [%s]: %s", v.Rule, v.Message)
}

// HTTPStatus: 409 untuk konfirmasi ulang, 400 untuk prasyarat akun, 422 sisanya.
func (v *Violation) HTTPStatus() int {
	switch v.Rule {
	case RuleSnapshotDecreaseConfirm, RuleNoDuplicate:
		return http.StatusConflict
	case RuleContextRequired, RuleSnapshotRequired:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

// As mengambil *Violation dari rantai error (termasuk yang di-wrap).
func As(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Is: true kalau err adalah violation dengan rule tertentu.
func Is(err error, rule Rule) bool {
	v, ok := As(err)
	return ok && v.Rule == rule
}

/* =========================
   Constructors
   ========================= */

func ContextRequired(studentID string) *Violation {
	return &Violation{
		Rule:       RuleContextRequired,
		Message:    "No active academic context (batch/semester) for this student",
		Suggestion: "Select your current batch and semester before tracking attendance",
		Details:    map[string]any{"student_id": studentID},
	}
}

func SnapshotRequired(studentID string) *Violation {
	return &Violation{
		Rule:       RuleSnapshotRequired,
		Message:    "No confirmed attendance snapshot found",
		Suggestion: "Upload and confirm a screenshot of your university attendance first",
		Details:    map[string]any{"student_id": studentID},
	}
}

func SnapshotLock(eventDate, snapshotDate string) *Violation {
	return &Violation{
		Rule:       RuleSnapshotLock,
		Message:    fmt.Sprintf("Cannot log attendance for %s: it is on or before the snapshot date %s", eventDate, snapshotDate),
		Suggestion: "Attendance up to the snapshot date is already part of the baseline; upload a newer snapshot instead",
		Details: map[string]any{
			"event_date":    eventDate,
			"snapshot_date": snapshotDate,
		},
	}
}

func NotTeachingDay(eventDate string, reasons []string) *Violation {
	return &Violation{
		Rule:       RuleValidTeachingDay,
		Message:    fmt.Sprintf("%s is not a teaching day", eventDate),
		Suggestion: "Pick a date on which classes are held",
		Details: map[string]any{
			"event_date": eventDate,
			"reasons":    reasons,
		},
	}
}

func SubjectNotOffered(subjectID string) *Violation {
	return &Violation{
		Rule:       RuleSubjectMapping,
		Message:    "Subject is not offered to your batch",
		Suggestion: "Choose one of the subjects listed in your timetable",
		Details:    map[string]any{"subject_id": subjectID},
	}
}

func Duplicate(what string) *Violation {
	return &Violation{
		Rule:       RuleNoDuplicate,
		Message:    fmt.Sprintf("%s already exists", what),
		Suggestion: "Update the existing record instead of creating a new one",
	}
}

func SemesterReadonly(semesterID string) *Violation {
	return &Violation{
		Rule:       RuleSemesterReadonly,
		Message:    "The semester is closed for attendance changes",
		Suggestion: "Attendance can only be logged within the current teaching period",
		Details:    map[string]any{"semester_id": semesterID},
	}
}

// Decrease = satu subject yang total-nya turun dibanding snapshot sebelumnya.
type Decrease struct {
	CourseCode string `json:"course_code"`
	OldTotal   int    `json:"old_total"`
	NewTotal   int    `json:"new_total"`
	OldPresent int    `json:"old_present"`
	NewPresent int    `json:"new_present"`
}

func SnapshotDecrease(decreases []Decrease) *Violation {
	return &Violation{
		Rule:       RuleSnapshotDecreaseConfirm,
		Message:    fmt.Sprintf("%d subject(s) show fewer total classes than your previous snapshot", len(decreases)),
		Suggestion: "Check the screenshot; resubmit with confirm_decreases=true if the numbers are correct",
		Details:    map[string]any{"decreases": decreases},
	}
}
