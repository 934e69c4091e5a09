package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	predModel "hajri_backend/internals/features/attendance/predictions/model"
	predService "hajri_backend/internals/features/attendance/predictions/service"
	snapService "hajri_backend/internals/features/attendance/snapshots/service"
	"hajri_backend/internals/features/attendance/summaries/model"
	"hajri_backend/internals/repository"
)

type SubjectAttendance struct {
	Summary     model.AttendanceSummaryModel
	SubjectCode string
	SubjectName string
	Status      predModel.Status
}

// Dashboard = tampilan ala portal kampus: present / total = persen per subject + overall.
type Dashboard struct {
	BatchID           uuid.UUID
	SemesterID        uuid.UUID
	Subjects          []SubjectAttendance
	OverallPresent    int
	OverallTotal      int
	OverallPercentage float64
	LastUpdated       *time.Time
}

type Reader struct {
	Store       repository.Store
	StatusTiers int
}

func NewReader(store repository.Store, statusTiers int) *Reader {
	return &Reader{Store: store, StatusTiers: statusTiers}
}

// subjectNames: cache kecil per request supaya subject yang sama tidak di-query dua kali.
func subjectNames(ctx context.Context, store repository.ReferenceStore, ids []uuid.UUID) (map[uuid.UUID]subjectModel.SubjectModel, error) {
	out := make(map[uuid.UUID]subjectModel.SubjectModel, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		s, err := store.GetSubject(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				continue
			}
			return nil, errors.Wrap(err, "get subject")
		}
		out[id] = *s
	}
	return out, nil
}

func (r *Reader) Dashboard(ctx context.Context, studentID uuid.UUID) (*Dashboard, error) {
	sc, err := snapService.StudentContext(ctx, r.Store, studentID)
	if err != nil {
		return nil, err
	}
	rows, err := r.Store.ListSummaries(ctx, studentID, sc.StudentContextBatchID)
	if err != nil {
		return nil, errors.Wrap(err, "list summaries")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, s := range rows {
		ids = append(ids, s.AttendanceSummarySubjectID)
	}
	subjects, err := subjectNames(ctx, r.Store, ids)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		BatchID:    sc.StudentContextBatchID,
		SemesterID: sc.StudentContextSemesterID,
		Subjects:   make([]SubjectAttendance, 0, len(rows)),
	}
	for _, s := range rows {
		subj := subjects[s.AttendanceSummarySubjectID]
		d.Subjects = append(d.Subjects, SubjectAttendance{
			Summary:     s,
			SubjectCode: subj.SubjectCode,
			SubjectName: subj.SubjectName,
			Status:      predService.StatusForCounts(s.AttendanceSummaryCurrentPresent, s.AttendanceSummaryCurrentTotal, r.StatusTiers),
		})
		d.OverallPresent += s.AttendanceSummaryCurrentPresent
		d.OverallTotal += s.AttendanceSummaryCurrentTotal

		at := s.AttendanceSummaryLastRecomputedAt
		if d.LastUpdated == nil || at.After(*d.LastUpdated) {
			d.LastUpdated = &at
		}
	}
	d.OverallPercentage = predService.ComputePercentage(d.OverallPresent, d.OverallTotal)

	sort.SliceStable(d.Subjects, func(i, j int) bool {
		a, b := d.Subjects[i], d.Subjects[j]
		if a.SubjectCode != b.SubjectCode {
			return a.SubjectCode < b.SubjectCode
		}
		return a.Summary.AttendanceSummaryClassType < b.Summary.AttendanceSummaryClassType
	})
	return d, nil
}
