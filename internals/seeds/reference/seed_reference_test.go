package reference

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hajri_backend/internals/repository"
)

func TestSeedReferenceFromJSON_Memory(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()

	err := SeedReferenceFromJSON(ctx, MemorySink{Repo: repo}, filepath.Join("testdata", "data_reference.json"), log.NewNopLogger())
	require.NoError(t, err)

	student := uuid.MustParse("c3e1b2a4-1d2e-4f5a-9b8c-7d6e5f4a3b01")
	batch := uuid.MustParse("5a0e9c31-8d8e-4d7b-a1b6-2e0c3f8d9a20")
	semester := uuid.MustParse("7d1f0c7a-2b9e-4f35-8f49-3f0c2a6d0b10")

	sc, err := repo.GetStudentContext(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, batch, sc.StudentContextBatchID)

	subjects, err := repo.ListOfferedSubjects(ctx, batch)
	require.NoError(t, err)
	assert.Len(t, subjects, 2)

	slots, err := repo.ListPublishedSlots(ctx, batch)
	require.NoError(t, err)
	assert.Len(t, slots, 3)

	period, err := repo.GetTeachingPeriod(ctx, semester)
	require.NoError(t, err)
	assert.Equal(t, "2024-25", period.TeachingPeriodAcademicYear)

	ex, err := repo.ListCalendarExceptions(ctx, "2024-25")
	require.NoError(t, err)
	require.Len(t, ex, 1)
	assert.Equal(t, "Republic Day", ex[0].CalendarExceptionName)

	ids, err := repo.ListStudentsByAcademicYear(ctx, "2024-25")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{student}, ids)
}

func TestSeedReferenceFromJSON_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"subjects": [`), 0o600))
	noID := filepath.Join(dir, "noid.json")
	require.NoError(t, os.WriteFile(noID, []byte(`{"subjects": [{"subject_code": "X1"}]}`), 0o600))

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.json")},
		{"broken json", bad},
		{"subject without id", noID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SeedReferenceFromJSON(ctx, MemorySink{Repo: repository.NewMemoryRepository()}, tt.path, log.NewNopLogger())
			assert.Error(t, err)
		})
	}
}
