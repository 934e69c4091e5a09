package seeds

import (
	"context"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gorm.io/gorm"

	"hajri_backend/internals/repository"
	"hajri_backend/internals/seeds/reference"
)

// RunAllSeeds: path kosong → tidak melakukan apa-apa.
// db nil → store diisi lewat MemoryRepository.
func RunAllSeeds(ctx context.Context, db *gorm.DB, store repository.Store, path string, logger log.Logger) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	var sink reference.Sink
	switch {
	case db != nil:
		sink = reference.GormSink{DB: db}
	default:
		mem, ok := store.(*repository.MemoryRepository)
		if !ok {
			level.Warn(logger).Log("msg", "seed dilewati: store tidak mendukung seeding", "path", path)
			return nil
		}
		sink = reference.MemorySink{Repo: mem}
	}

	//* Reference data (subject, timetable, kalender, student context)
	return reference.SeedReferenceFromJSON(ctx, sink, path, logger)
}
