package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	"hajri_backend/internals/features/attendance/policy"
	"hajri_backend/internals/features/attendance/snapshots/model"
	helper "hajri_backend/internals/helpers"
	"hajri_backend/internals/repository"
)

type fixture struct {
	repo     *repository.MemoryRepository
	svc      *Service
	student  uuid.UUID
	batch    uuid.UUID
	semester uuid.UUID
	algo     uuid.UUID
	dbms     uuid.UUID
	os       uuid.UUID
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     repository.NewMemoryRepository(),
		student:  uuid.New(),
		batch:    uuid.New(),
		semester: uuid.New(),
		algo:     uuid.New(),
		dbms:     uuid.New(),
		os:       uuid.New(),
		now:      time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, log.NewNopLogger())
	f.svc.nowFunc = func() time.Time { return f.now }

	f.repo.PutStudentContext(subjectModel.StudentContextModel{StudentContextStudentID: f.student, StudentContextBatchID: f.batch, StudentContextSemesterID: f.semester})
	f.repo.PutSubject(subjectModel.SubjectModel{SubjectID: f.algo, SubjectSemesterID: f.semester, SubjectCode: "CS201", SubjectName: "Algorithms"})
	f.repo.PutSubject(subjectModel.SubjectModel{SubjectID: f.dbms, SubjectSemesterID: f.semester, SubjectCode: "CS305", SubjectName: "Databases"})
	f.repo.PutSubject(subjectModel.SubjectModel{SubjectID: f.os, SubjectSemesterID: f.semester, SubjectCode: "CS310", SubjectName: "Operating Systems"})
	f.repo.PutMapping(subjectModel.SubjectCodeMappingModel{
		SubjectCodeMappingBatchID:    f.batch,
		SubjectCodeMappingSemesterID: f.semester,
		SubjectCodeMappingOCRCode:    "OS-LEC",
		SubjectCodeMappingSubjectID:  f.os,
	})
	return f
}

func entry(code string, present, total int) model.SnapshotEntry {
	pct := 0.0
	if total > 0 {
		pct = float64(present) / float64(total) * 100
	}
	return model.SnapshotEntry{CourseCode: code, Present: present, Total: total, Percentage: pct}
}

func (f *fixture) confirm(t *testing.T, confirmDecreases bool, entries ...model.SnapshotEntry) (*ConfirmResult, error) {
	t.Helper()
	return f.svc.Confirm(context.Background(), ConfirmInput{
		StudentID:        f.student,
		CapturedAt:       f.now.Add(-time.Hour),
		Entries:          entries,
		ConfirmDecreases: confirmDecreases,
	})
}

func TestConfirm_ResolvesCodesThroughChain(t *testing.T) {
	f := newFixture(t)

	res, err := f.confirm(t, false,
		entry("CS201", 8, 10),
		entry("cs305", 5, 6),
		entry("OS-LEC", 3, 4),
		entry("ＣＳ２０１", 1, 1), // full-width dari OCR
		entry("XX999", 2, 2),
	)
	require.NoError(t, err)

	assert.Equal(t, 4, res.MatchedCount)
	assert.Equal(t, []string{"XX999"}, res.UnmatchedCodes)
	require.Len(t, res.Entries, 5)
	assert.Equal(t, f.algo, *res.Entries[0].SubjectID)
	assert.Equal(t, f.dbms, *res.Entries[1].SubjectID)
	assert.Equal(t, f.os, *res.Entries[2].SubjectID)
	assert.Equal(t, "CS201", res.Entries[3].CourseCode)
	assert.Equal(t, f.algo, *res.Entries[3].SubjectID)
	assert.Nil(t, res.Entries[4].SubjectID)
	assert.Equal(t, []string{"Unmatched subject codes: XX999"}, res.Warnings())

	assert.Equal(t, f.now, res.Snapshot.OCRSnapshotConfirmedAt)
	assert.Equal(t, "university_portal", res.Snapshot.OCRSnapshotSourceType)

	stored, entries, err := f.svc.Latest(context.Background(), f.student)
	require.NoError(t, err)
	assert.Equal(t, res.Snapshot.OCRSnapshotID, stored.OCRSnapshotID)
	assert.Len(t, entries, 5)
}

func TestConfirm_MappingWinsOverCatalog(t *testing.T) {
	f := newFixture(t)
	// kode CS201 dipetakan ke subject lain
	f.repo.PutMapping(subjectModel.SubjectCodeMappingModel{
		SubjectCodeMappingBatchID:    f.batch,
		SubjectCodeMappingSemesterID: f.semester,
		SubjectCodeMappingOCRCode:    "CS201",
		SubjectCodeMappingSubjectID:  f.dbms,
	})

	res, err := f.confirm(t, false, entry("CS201", 1, 1))
	require.NoError(t, err)
	assert.Equal(t, f.dbms, *res.Entries[0].SubjectID)
}

func TestConfirm_DecreaseNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	_, err := f.confirm(t, false, entry("CS201", 8, 10), entry("CS305", 5, 6))
	require.NoError(t, err)

	f.now = f.now.Add(24 * time.Hour)
	_, err = f.confirm(t, false, entry("CS201", 7, 9), entry("CS305", 6, 7))
	require.Error(t, err)

	v, ok := policy.As(err)
	require.True(t, ok)
	assert.Equal(t, policy.RuleSnapshotDecreaseConfirm, v.Rule)
	decreases, _ := v.Details["decreases"].([]policy.Decrease)
	require.Len(t, decreases, 1)
	assert.Equal(t, policy.Decrease{CourseCode: "CS201", OldTotal: 10, NewTotal: 9, OldPresent: 8, NewPresent: 7}, decreases[0])

	res, err := f.confirm(t, true, entry("CS201", 7, 9), entry("CS305", 6, 7))
	require.NoError(t, err)
	assert.Len(t, res.Decreases, 1)
	assert.Len(t, res.Warnings(), 1)

	latest, _, err := f.svc.Latest(context.Background(), f.student)
	require.NoError(t, err)
	assert.Equal(t, res.Snapshot.OCRSnapshotID, latest.OCRSnapshotID)
}

func TestConfirm_DecreaseMatchesNormalizedCodes(t *testing.T) {
	f := newFixture(t)
	_, err := f.confirm(t, false, entry("CS201", 8, 10))
	require.NoError(t, err)

	f.now = f.now.Add(24 * time.Hour)
	for _, code := range []string{"cs201", "ＣＳ２０１"} {
		_, err = f.confirm(t, false, entry(code, 7, 9))
		require.Error(t, err, code)
		assert.True(t, policy.Is(err, policy.RuleSnapshotDecreaseConfirm), code)
	}
}

func TestConfirm_InvalidEntries(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		entry model.SnapshotEntry
		field string
	}{
		{"present above total", entry("CS201", 11, 10), "entries[0].present"},
		{"negative total", model.SnapshotEntry{CourseCode: "CS201", Present: 0, Total: -1}, "entries[0].total"},
		{"percentage out of range", model.SnapshotEntry{CourseCode: "CS201", Present: 1, Total: 1, Percentage: 101}, "entries[0].percentage"},
		{"blank code", entry("  ", 1, 1), "entries[0].course_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.confirm(t, false, tt.entry)
			var ve *helper.ValidationErrors
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	_, _, err := f.svc.Latest(context.Background(), f.student)
	assert.True(t, policy.Is(err, policy.RuleSnapshotRequired), "nothing stored after validation failures")
}

func TestConfirm_WithoutContext(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Confirm(context.Background(), ConfirmInput{StudentID: uuid.New(), Entries: []model.SnapshotEntry{entry("CS201", 1, 1)}})
	assert.True(t, policy.Is(err, policy.RuleContextRequired))
}

func TestConfirm_StoreFailureIsOperational(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection reset")
	f.repo.FailOn = func(op string) error {
		if op == "insert snapshot" {
			return boom
		}
		return nil
	}
	_, err := f.confirm(t, false, entry("CS201", 1, 1))
	require.Error(t, err)
	_, isPolicy := policy.As(err)
	assert.False(t, isPolicy)
	assert.Equal(t, boom, errors.Cause(err))
}

func TestDecreases(t *testing.T) {
	prev := []model.SnapshotEntry{entry("A", 5, 10), entry("B", 3, 3)}
	tests := []struct {
		name string
		next []model.SnapshotEntry
		want int
	}{
		{"same totals", []model.SnapshotEntry{entry("A", 5, 10), entry("B", 3, 3)}, 0},
		{"increase", []model.SnapshotEntry{entry("A", 6, 11)}, 0},
		{"new code", []model.SnapshotEntry{entry("C", 0, 1)}, 0},
		{"one decrease", []model.SnapshotEntry{entry("A", 4, 9), entry("B", 3, 4)}, 1},
		{"two decreases", []model.SnapshotEntry{entry("A", 4, 9), entry("B", 1, 2)}, 2},
		{"lower case code", []model.SnapshotEntry{entry("a", 4, 9)}, 1},
		{"full-width code", []model.SnapshotEntry{entry("Ａ", 4, 9)}, 1},
		{"padded code", []model.SnapshotEntry{entry("  b ", 1, 2)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Decreases(prev, tt.next), tt.want)
		})
	}
}
