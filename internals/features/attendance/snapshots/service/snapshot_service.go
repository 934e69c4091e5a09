// file: internals/features/attendance/snapshots/service/snapshot_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"

	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	"hajri_backend/internals/features/attendance/policy"
	"hajri_backend/internals/features/attendance/snapshots/model"
	helper "hajri_backend/internals/helpers"
	"hajri_backend/internals/repository"
)

type ConfirmInput struct {
	StudentID        uuid.UUID
	CapturedAt       time.Time
	Entries          []model.SnapshotEntry
	SourceType       string
	Metadata         map[string]any
	ConfirmDecreases bool
}

type ConfirmResult struct {
	Snapshot       *model.OCRSnapshotModel
	Entries        []model.SnapshotEntry
	MatchedCount   int
	UnmatchedCodes []string
	// Decreases terisi kalau user sudah konfirmasi penurunan total
	Decreases []policy.Decrease
}

func (r ConfirmResult) Warnings() []string {
	out := []string{}
	if len(r.UnmatchedCodes) > 0 {
		out = append(out, "Unmatched subject codes: "+strings.Join(r.UnmatchedCodes, ", "))
	}
	if len(r.Decreases) > 0 {
		out = append(out, fmt.Sprintf("%d subject(s) confirmed with decreased totals", len(r.Decreases)))
	}
	return out
}

type Service struct {
	Store     repository.Store
	Resolvers []CodeResolver
	Logger    log.Logger

	nowFunc func() time.Time
}

func NewService(store repository.Store, logger log.Logger) *Service {
	return &Service{
		Store:     store,
		Resolvers: DefaultChain(store),
		Logger:    log.With(logger, "component", "snapshots"),
		nowFunc:   time.Now,
	}
}

// StudentContext: context tidak ada → CONTEXT_REQUIRED.
func StudentContext(ctx context.Context, store repository.ReferenceStore, studentID uuid.UUID) (*subjectModel.StudentContextModel, error) {
	sc, err := store.GetStudentContext(ctx, studentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, policy.ContextRequired(studentID.String())
		}
		return nil, errors.Wrap(err, "get student context")
	}
	return sc, nil
}

// ValidateEntries: aturan domain di luar tag validator (present ≤ total, dst).
func ValidateEntries(entries []model.SnapshotEntry) error {
	ve := &helper.ValidationErrors{}
	if len(entries) == 0 {
		ve.Add("entries", "entries must contain at least 1 item")
	}
	for i, e := range entries {
		p := fmt.Sprintf("entries[%d]", i)
		if NormalizeCode(e.CourseCode) == "" {
			ve.Add(p+".course_code", "course_code cannot be blank")
		}
		if e.Present < 0 {
			ve.Add(p+".present", "present must be 0 or greater")
		}
		if e.Total < 0 {
			ve.Add(p+".total", "total must be 0 or greater")
		}
		if e.Present > e.Total {
			ve.Add(p+".present", "present cannot exceed total")
		}
		if e.Percentage < 0 || e.Percentage > 100 {
			ve.Add(p+".percentage", "percentage must be between 0 and 100")
		}
		if e.Confidence != nil && (*e.Confidence < 0 || *e.Confidence > 1) {
			ve.Add(p+".confidence", "confidence must be between 0 and 1")
		}
	}
	return ve.OrNil()
}

// decreaseKey: kode dinormalisasi + case-fold, sama seperti resolver katalog terakhir.
func decreaseKey(code string) string {
	return strings.ToUpper(NormalizeCode(code))
}

// Decreases membandingkan per course_code dengan snapshot sebelumnya.
func Decreases(previous, next []model.SnapshotEntry) []policy.Decrease {
	prevByCode := make(map[string]model.SnapshotEntry, len(previous))
	for _, e := range previous {
		k := decreaseKey(e.CourseCode)
		if k == "" {
			continue
		}
		if _, dup := prevByCode[k]; !dup {
			prevByCode[k] = e
		}
	}

	out := []policy.Decrease{}
	for _, e := range next {
		prev, ok := prevByCode[decreaseKey(e.CourseCode)]
		if !ok || e.Total >= prev.Total {
			continue
		}
		out = append(out, policy.Decrease{
			CourseCode: NormalizeCode(e.CourseCode),
			OldTotal:   prev.Total,
			NewTotal:   e.Total,
			OldPresent: prev.Present,
			NewPresent: e.Present,
		})
	}
	return out
}

func (s *Service) latest(ctx context.Context, studentID, batchID uuid.UUID) (*model.OCRSnapshotModel, error) {
	snap, err := s.Store.LatestSnapshot(ctx, studentID, batchID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "latest snapshot")
	}
	return snap, nil
}

// Confirm menyimpan snapshot baru sebagai baseline. Snapshot lama tidak pernah diubah.
func (s *Service) Confirm(ctx context.Context, in ConfirmInput) (*ConfirmResult, error) {
	sc, err := StudentContext(ctx, s.Store, in.StudentID)
	if err != nil {
		return nil, err
	}
	if err := ValidateEntries(in.Entries); err != nil {
		return nil, err
	}

	prev, err := s.latest(ctx, in.StudentID, sc.StudentContextBatchID)
	if err != nil {
		return nil, err
	}
	var decreases []policy.Decrease
	if prev != nil {
		prevEntries, err := prev.DecodeEntries()
		if err != nil {
			return nil, errors.Wrapf(err, "decode snapshot %s", prev.OCRSnapshotID)
		}
		decreases = Decreases(prevEntries, in.Entries)
		if len(decreases) > 0 && !in.ConfirmDecreases {
			return nil, policy.SnapshotDecrease(decreases)
		}
	}

	scope := Scope{BatchID: sc.StudentContextBatchID, SemesterID: sc.StudentContextSemesterID}
	entries := make([]model.SnapshotEntry, len(in.Entries))
	unmatched := []string{}
	matched := 0
	for i, e := range in.Entries {
		e.CourseCode = NormalizeCode(e.CourseCode)
		id, via, ok, err := ResolveCode(ctx, s.Resolvers, scope, e.CourseCode)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve %q via %s", e.CourseCode, via)
		}
		if ok {
			subjectID := id
			e.SubjectID = &subjectID
			matched++
		} else {
			e.SubjectID = nil
			unmatched = append(unmatched, e.CourseCode)
		}
		entries[i] = e
	}

	entriesJSON, err := model.EncodeEntries(entries)
	if err != nil {
		return nil, errors.Wrap(err, "encode entries")
	}
	var metaJSON datatypes.JSON
	if len(in.Metadata) > 0 {
		b, err := sonic.ConfigStd.Marshal(in.Metadata)
		if err != nil {
			return nil, errors.Wrap(err, "encode metadata")
		}
		metaJSON = datatypes.JSON(b)
	}

	source := strings.TrimSpace(in.SourceType)
	if source == "" {
		source = "university_portal"
	}
	snap := &model.OCRSnapshotModel{
		OCRSnapshotStudentID:   in.StudentID,
		OCRSnapshotBatchID:     sc.StudentContextBatchID,
		OCRSnapshotSemesterID:  sc.StudentContextSemesterID,
		OCRSnapshotCapturedAt:  in.CapturedAt.UTC(),
		OCRSnapshotConfirmedAt: s.nowFunc().UTC(),
		OCRSnapshotSourceType:  source,
		OCRSnapshotEntries:     entriesJSON,
		OCRSnapshotMetadata:    metaJSON,
	}
	if err := s.Store.InsertSnapshot(ctx, snap); err != nil {
		return nil, errors.Wrap(err, "insert snapshot")
	}

	if len(unmatched) > 0 {
		level.Warn(s.Logger).Log("msg", "snapshot has unmatched codes", "student_id", in.StudentID, "snapshot_id", snap.OCRSnapshotID, "codes", strings.Join(unmatched, ","))
	}
	level.Info(s.Logger).Log("msg", "snapshot confirmed", "student_id", in.StudentID, "snapshot_id", snap.OCRSnapshotID, "entries", len(entries), "matched", matched)

	if decreases == nil {
		decreases = []policy.Decrease{}
	}
	return &ConfirmResult{
		Snapshot:       snap,
		Entries:        entries,
		MatchedCount:   matched,
		UnmatchedCodes: unmatched,
		Decreases:      decreases,
	}, nil
}

// Latest: snapshot aktif (confirmed_at terbaru) untuk batch berjalan.
func (s *Service) Latest(ctx context.Context, studentID uuid.UUID) (*model.OCRSnapshotModel, []model.SnapshotEntry, error) {
	sc, err := StudentContext(ctx, s.Store, studentID)
	if err != nil {
		return nil, nil, err
	}
	snap, err := s.latest(ctx, studentID, sc.StudentContextBatchID)
	if err != nil {
		return nil, nil, err
	}
	if snap == nil {
		return nil, nil, policy.SnapshotRequired(studentID.String())
	}
	entries, err := snap.DecodeEntries()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "decode snapshot %s", snap.OCRSnapshotID)
	}
	return snap, entries, nil
}
