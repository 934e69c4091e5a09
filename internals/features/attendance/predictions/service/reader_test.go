package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	"hajri_backend/internals/features/attendance/policy"
	predModel "hajri_backend/internals/features/attendance/predictions/model"
	"hajri_backend/internals/repository"
)

func seedPrediction(t *testing.T, repo *repository.MemoryRepository, student, batch uuid.UUID, code string, present, total, remaining int, estimate bool) {
	t.Helper()
	subj := subjectModel.SubjectModel{SubjectID: uuid.New(), SubjectCode: code, SubjectName: code + " name"}
	repo.PutSubject(subj)
	p := Predict(present, total, remaining, 75)
	require.NoError(t, repo.UpsertPrediction(context.Background(), &predModel.AttendancePredictionModel{
		AttendancePredictionStudentID:           student,
		AttendancePredictionSubjectID:           subj.SubjectID,
		AttendancePredictionBatchID:             batch,
		AttendancePredictionCurrentPresent:      present,
		AttendancePredictionCurrentTotal:        total,
		AttendancePredictionCurrentPercentage:   ComputePercentage(present, total),
		AttendancePredictionRequired:            75,
		AttendancePredictionRemainingClasses:    remaining,
		AttendancePredictionRemainingIsEstimate: estimate,
		AttendancePredictionMustAttend:          p.MustAttend,
		AttendancePredictionCanBunk:             p.CanBunk,
		AttendancePredictionRecoveryClasses:     p.Recovery,
		AttendancePredictionStatus:              p.Status,
		AttendancePredictionStatusTier4:         p.StatusTier4,
	}))
}

func TestReader_Overview(t *testing.T) {
	repo := repository.NewMemoryRepository()
	student, batch := uuid.New(), uuid.New()
	repo.PutStudentContext(subjectModel.StudentContextModel{StudentContextStudentID: student, StudentContextBatchID: batch, StudentContextSemesterID: uuid.New()})

	seedPrediction(t, repo, student, batch, "CS102", 20, 25, 25, false) // 80%
	seedPrediction(t, repo, student, batch, "CS101", 31, 42, 18, false) // 73.81%
	seedPrediction(t, repo, student, batch, "CS103", 0, 0, 16, true)
	seedPrediction(t, repo, uuid.New(), batch, "XX999", 1, 10, 5, false) // mahasiswa lain

	tests := []struct {
		name       string
		tiers      int
		wantStatus map[predModel.Status]int
	}{
		{"three tiers", 3, map[predModel.Status]int{predModel.StatusSafe: 2, predModel.StatusLow: 1}},
		{"four tiers", 4, map[predModel.Status]int{predModel.StatusSafe: 2, predModel.StatusDanger: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewReader(repo, tt.tiers).Overview(context.Background(), student)
			require.NoError(t, err)
			require.Len(t, out.Subjects, 3)
			assert.Equal(t, "CS101", out.Subjects[0].SubjectCode)
			assert.Equal(t, tt.wantStatus, out.ByStatus)
			assert.Equal(t, 1, out.SubjectsAtRisk)
			assert.Equal(t, 59, out.ClassesRemaining)
			assert.True(t, out.HasEstimates)
			assert.Equal(t, 15, out.TotalCanBunk)
			assert.Equal(t, 44, out.TotalMustAttend)
		})
	}

	_, err := NewReader(repo, 3).Overview(context.Background(), uuid.New())
	assert.True(t, policy.Is(err, policy.RuleContextRequired))
}
