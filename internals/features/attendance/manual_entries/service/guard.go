// file: internals/features/attendance/manual_entries/service/guard.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	calService "hajri_backend/internals/features/academics/calendars/service"
	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	"hajri_backend/internals/features/attendance/policy"
	snapModel "hajri_backend/internals/features/attendance/snapshots/model"
	snapService "hajri_backend/internals/features/attendance/snapshots/service"
	"hajri_backend/internals/helpers/dbtime"
	"hajri_backend/internals/repository"
)

// Admission = semua yang dibutuhkan untuk menilai entry manual satu mahasiswa.
// Dimuat sekali per request (bulk memakai admission yang sama).
type Admission struct {
	Context      subjectModel.StudentContextModel
	Snapshot     snapModel.OCRSnapshotModel
	SnapshotDate time.Time // tanggal konfirmasi di zona waktu aplikasi
	Offered      map[uuid.UUID]subjectModel.SubjectModel

	// nil kalau semester belum punya teaching period
	Calendar *calService.Calendar
}

type Guard struct {
	Store     repository.Store
	Calendars *calService.Loader
	Location  func() *time.Location
}

func NewGuard(store repository.Store) *Guard {
	return &Guard{
		Store:     store,
		Calendars: calService.NewLoader(store),
		Location:  dbtime.AppLocation,
	}
}

func (g *Guard) Load(ctx context.Context, studentID uuid.UUID) (*Admission, error) {
	sc, err := snapService.StudentContext(ctx, g.Store, studentID)
	if err != nil {
		return nil, err
	}

	snap, err := g.Store.LatestSnapshot(ctx, studentID, sc.StudentContextBatchID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, policy.SnapshotRequired(studentID.String())
		}
		return nil, errors.Wrap(err, "latest snapshot")
	}

	subjects, err := g.Store.ListOfferedSubjects(ctx, sc.StudentContextBatchID)
	if err != nil {
		return nil, errors.Wrap(err, "list offered subjects")
	}
	offered := make(map[uuid.UUID]subjectModel.SubjectModel, len(subjects))
	for _, s := range subjects {
		offered[s.SubjectID] = s
	}

	cal, err := g.Calendars.ForSemester(ctx, sc.StudentContextSemesterID)
	if err != nil && !errors.Is(err, calService.ErrNoTeachingPeriod) {
		return nil, err
	}

	return &Admission{
		Context:      *sc,
		Snapshot:     *snap,
		SnapshotDate: dbtime.DateIn(snap.OCRSnapshotConfirmedAt, g.Location()),
		Offered:      offered,
		Calendar:     cal,
	}, nil
}

// CheckDate: SNAPSHOT_LOCK → SEMESTER_READONLY → VALID_TEACHING_DAY.
func (a *Admission) CheckDate(eventDate time.Time) error {
	day := dbtime.DateOnly(eventDate)
	ds := dbtime.FormatDate(day)

	if !day.After(a.SnapshotDate) {
		return policy.SnapshotLock(ds, dbtime.FormatDate(a.SnapshotDate))
	}

	if a.Calendar == nil {
		// tanpa period: hanya weekly off default
		if ok, reasons := calService.IsTeachingDay(day, calService.DefaultWeeklyOff(), nil); !ok {
			return policy.NotTeachingDay(ds, reasons)
		}
		return nil
	}
	if !a.Calendar.InPeriod(day) {
		return policy.SemesterReadonly(a.Context.StudentContextSemesterID.String())
	}
	if ok, reasons := a.Calendar.IsTeachingDay(day); !ok {
		return policy.NotTeachingDay(ds, reasons)
	}
	return nil
}

// Check = CheckDate + subject harus ditawarkan ke batch.
func (a *Admission) Check(in EntryInput) error {
	if err := a.CheckDate(in.EventDate); err != nil {
		return err
	}
	if _, ok := a.Offered[in.SubjectID]; !ok {
		return policy.SubjectNotOffered(in.SubjectID.String())
	}
	return nil
}
