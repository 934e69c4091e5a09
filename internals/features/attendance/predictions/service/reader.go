package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	predModel "hajri_backend/internals/features/attendance/predictions/model"
	snapService "hajri_backend/internals/features/attendance/snapshots/service"
	"hajri_backend/internals/repository"
)

type SubjectPrediction struct {
	Prediction  predModel.AttendancePredictionModel
	SubjectCode string
	SubjectName string
	Status      predModel.Status // sesuai STATUS_TIERS
	AtRisk      bool
}

type Overview struct {
	BatchID          uuid.UUID
	Subjects         []SubjectPrediction
	TotalCanBunk     int
	TotalMustAttend  int
	SubjectsAtRisk   int
	ClassesRemaining int
	HasEstimates     bool
	ByStatus         map[predModel.Status]int
}

type Reader struct {
	Store       repository.Store
	StatusTiers int
}

func NewReader(store repository.Store, statusTiers int) *Reader {
	return &Reader{Store: store, StatusTiers: statusTiers}
}

// Overview membaca prediction tersimpan; tidak menghitung ulang apa pun.
func (r *Reader) Overview(ctx context.Context, studentID uuid.UUID) (*Overview, error) {
	sc, err := snapService.StudentContext(ctx, r.Store, studentID)
	if err != nil {
		return nil, err
	}
	rows, err := r.Store.ListPredictions(ctx, studentID, sc.StudentContextBatchID)
	if err != nil {
		return nil, errors.Wrap(err, "list predictions")
	}

	out := &Overview{
		BatchID:  sc.StudentContextBatchID,
		Subjects: make([]SubjectPrediction, 0, len(rows)),
		ByStatus: map[predModel.Status]int{},
	}
	for _, p := range rows {
		sp := SubjectPrediction{
			Prediction: p,
			Status:     PrimaryStatus(p, r.StatusTiers),
			AtRisk:     p.AttendancePredictionCurrentTotal > 0 && p.AttendancePredictionCurrentPercentage < p.AttendancePredictionRequired,
		}
		subj, err := r.Store.GetSubject(ctx, p.AttendancePredictionSubjectID)
		switch {
		case err == nil:
			sp.SubjectCode = subj.SubjectCode
			sp.SubjectName = subj.SubjectName
		case !repository.IsNotFound(err):
			return nil, errors.Wrap(err, "get subject")
		}

		out.Subjects = append(out.Subjects, sp)
		out.TotalCanBunk += p.AttendancePredictionCanBunk
		out.TotalMustAttend += p.AttendancePredictionMustAttend
		out.ClassesRemaining += p.AttendancePredictionRemainingClasses
		out.ByStatus[sp.Status]++
		if sp.AtRisk {
			out.SubjectsAtRisk++
		}
		if p.AttendancePredictionRemainingIsEstimate {
			out.HasEstimates = true
		}
	}

	sort.SliceStable(out.Subjects, func(i, j int) bool {
		return out.Subjects[i].SubjectCode < out.Subjects[j].SubjectCode
	})
	return out, nil
}
