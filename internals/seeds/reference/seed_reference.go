package reference

import (
	"context"
	"os"

	"github.com/bytedance/sonic"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	calModel "hajri_backend/internals/features/academics/calendars/model"
	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	"hajri_backend/internals/repository"
)

// Data referensi yang biasanya dikurasi admin di luar engine.
// Field JSON mengikuti tag model masing-masing.
type ReferenceData struct {
	Subjects         []subjectModel.SubjectModel            `json:"subjects"`
	Offerings        []subjectModel.CourseOfferingModel     `json:"course_offerings"`
	Mappings         []subjectModel.SubjectCodeMappingModel `json:"subject_code_mappings"`
	Slots            []subjectModel.TimetableSlotModel      `json:"timetable_slots"`
	StudentContexts  []subjectModel.StudentContextModel     `json:"student_contexts"`
	TeachingPeriods  []calModel.TeachingPeriodModel         `json:"teaching_periods"`
	WeeklyOffConfigs []calModel.WeeklyOffConfigModel        `json:"weekly_off_configs"`
	Exceptions       []calModel.CalendarExceptionModel      `json:"calendar_exceptions"`
}

func (d ReferenceData) Rows() int {
	return len(d.Subjects) + len(d.Offerings) + len(d.Mappings) + len(d.Slots) +
		len(d.StudentContexts) + len(d.TeachingPeriods) + len(d.WeeklyOffConfigs) + len(d.Exceptions)
}

type Sink interface {
	Apply(ctx context.Context, d ReferenceData) error
}

func LoadReferenceJSON(filePath string) (ReferenceData, error) {
	var d ReferenceData
	file, err := os.ReadFile(filePath)
	if err != nil {
		return d, errors.Wrapf(err, "baca file seed %s", filePath)
	}
	if err := sonic.Unmarshal(file, &d); err != nil {
		return d, errors.Wrapf(err, "decode seed %s", filePath)
	}
	return d, nil
}

func SeedReferenceFromJSON(ctx context.Context, sink Sink, filePath string, logger log.Logger) error {
	level.Info(logger).Log("msg", "membaca file seed", "path", filePath)
	d, err := LoadReferenceJSON(filePath)
	if err != nil {
		return err
	}
	if err := sink.Apply(ctx, d); err != nil {
		return errors.Wrap(err, "apply seed")
	}
	level.Info(logger).Log("msg", "seed selesai", "rows", d.Rows(), "subjects", len(d.Subjects), "students", len(d.StudentContexts))
	return nil
}

/* =========================
   Sinks
   ========================= */

// GormSink: insert, baris yang sudah ada dilewati (ON CONFLICT DO NOTHING).
type GormSink struct {
	DB *gorm.DB
}

func (s GormSink) Apply(ctx context.Context, d ReferenceData) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx = tx.Clauses(clause.OnConflict{DoNothing: true})
		batches := []struct {
			name string
			rows any
			n    int
		}{
			{"subjects", &d.Subjects, len(d.Subjects)},
			{"course_offerings", &d.Offerings, len(d.Offerings)},
			{"subject_code_mappings", &d.Mappings, len(d.Mappings)},
			{"timetable_slots", &d.Slots, len(d.Slots)},
			{"student_contexts", &d.StudentContexts, len(d.StudentContexts)},
			{"teaching_periods", &d.TeachingPeriods, len(d.TeachingPeriods)},
			{"weekly_off_configs", &d.WeeklyOffConfigs, len(d.WeeklyOffConfigs)},
			{"calendar_exceptions", &d.Exceptions, len(d.Exceptions)},
		}
		for _, b := range batches {
			if b.n == 0 {
				continue
			}
			if err := tx.Create(b.rows).Error; err != nil {
				return errors.Wrapf(err, "insert %s", b.name)
			}
		}
		return nil
	})
}

// MemorySink untuk STORE_BACKEND=memory.
type MemorySink struct {
	Repo *repository.MemoryRepository
}

func (s MemorySink) Apply(ctx context.Context, d ReferenceData) error {
	for _, m := range d.Subjects {
		if m.SubjectID == uuid.Nil {
			return errors.Errorf("subject %q tanpa subject_id", m.SubjectCode)
		}
		s.Repo.PutSubject(m)
	}
	for _, o := range d.Offerings {
		s.Repo.PutOffering(o.CourseOfferingBatchID, o.CourseOfferingSubjectID)
	}
	for _, m := range d.Mappings {
		s.Repo.PutMapping(m)
	}
	for _, m := range d.Slots {
		s.Repo.PutSlot(m)
	}
	for _, m := range d.StudentContexts {
		s.Repo.PutStudentContext(m)
	}
	for _, m := range d.TeachingPeriods {
		s.Repo.PutTeachingPeriod(m)
	}
	for _, m := range d.WeeklyOffConfigs {
		s.Repo.PutWeeklyOffConfig(m)
	}
	for i := range d.Exceptions {
		if err := s.Repo.CreateCalendarException(ctx, &d.Exceptions[i]); err != nil {
			return errors.Wrap(err, "create calendar exception")
		}
	}
	return nil
}
