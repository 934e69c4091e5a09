// file: internals/repository/memory_repository.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	calModel "hajri_backend/internals/features/academics/calendars/model"
	totalModel "hajri_backend/internals/features/academics/semester_totals/model"
	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	manualModel "hajri_backend/internals/features/attendance/manual_entries/model"
	predModel "hajri_backend/internals/features/attendance/predictions/model"
	logModel "hajri_backend/internals/features/attendance/recompute/model"
	snapModel "hajri_backend/internals/features/attendance/snapshots/model"
	summaryModel "hajri_backend/internals/features/attendance/summaries/model"
)

// MemoryRepository adalah Store in-process (tanpa postgres) untuk test & mode lokal.
// Semua method aman dipanggil paralel.
type MemoryRepository struct {
	mu sync.RWMutex

	subjects  map[uuid.UUID]subjectModel.SubjectModel
	offerings []subjectModel.CourseOfferingModel
	mappings  []subjectModel.SubjectCodeMappingModel
	slots     []subjectModel.TimetableSlotModel
	contexts  map[uuid.UUID]subjectModel.StudentContextModel

	periods    map[uuid.UUID]calModel.TeachingPeriodModel
	weeklyOffs map[string]calModel.WeeklyOffConfigModel
	exceptions map[uuid.UUID]calModel.CalendarExceptionModel

	totals      map[string]totalModel.SemesterSubjectTotalModel
	snapshots   []snapModel.OCRSnapshotModel
	manual      map[uuid.UUID]manualModel.ManualAttendanceModel
	summaries   map[string]summaryModel.AttendanceSummaryModel
	predictions map[string]predModel.AttendancePredictionModel
	logs        []logModel.ComputationLogModel

	// FailOn: hook test untuk mensimulasikan kegagalan store per operasi.
	FailOn func(op string) error
}

var _ Store = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		subjects:    map[uuid.UUID]subjectModel.SubjectModel{},
		contexts:    map[uuid.UUID]subjectModel.StudentContextModel{},
		periods:     map[uuid.UUID]calModel.TeachingPeriodModel{},
		weeklyOffs:  map[string]calModel.WeeklyOffConfigModel{},
		exceptions:  map[uuid.UUID]calModel.CalendarExceptionModel{},
		totals:      map[string]totalModel.SemesterSubjectTotalModel{},
		manual:      map[uuid.UUID]manualModel.ManualAttendanceModel{},
		summaries:   map[string]summaryModel.AttendanceSummaryModel{},
		predictions: map[string]predModel.AttendancePredictionModel{},
	}
}

func (r *MemoryRepository) fail(op string) error {
	if r.FailOn == nil {
		return nil
	}
	if err := r.FailOn(op); err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}

func key(parts ...string) string { return strings.Join(parts, "|") }

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

/* =========================
   Seeding (reference data)
   ========================= */

func (r *MemoryRepository) PutSubject(m subjectModel.SubjectModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects[m.SubjectID] = m
}

func (r *MemoryRepository) PutOffering(batchID, subjectID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offerings = append(r.offerings, subjectModel.CourseOfferingModel{
		CourseOfferingID:        uuid.New(),
		CourseOfferingBatchID:   batchID,
		CourseOfferingSubjectID: subjectID,
	})
}

func (r *MemoryRepository) PutMapping(m subjectModel.SubjectCodeMappingModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings = append(r.mappings, m)
}

func (r *MemoryRepository) PutSlot(m subjectModel.TimetableSlotModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.TimetableSlotID == uuid.Nil {
		m.TimetableSlotID = uuid.New()
	}
	r.slots = append(r.slots, m)
}

func (r *MemoryRepository) PutStudentContext(m subjectModel.StudentContextModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts[m.StudentContextStudentID] = m
}

func (r *MemoryRepository) PutTeachingPeriod(m calModel.TeachingPeriodModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.periods[m.TeachingPeriodSemesterID] = m
}

func (r *MemoryRepository) PutWeeklyOffConfig(m calModel.WeeklyOffConfigModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weeklyOffs[m.WeeklyOffConfigAcademicYear] = m
}

/* =========================
   Reference data
   ========================= */

func (r *MemoryRepository) GetStudentContext(_ context.Context, studentID uuid.UUID) (*subjectModel.StudentContextModel, error) {
	if err := r.fail("get student context"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.contexts[studentID]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "get student context")
	}
	return &m, nil
}

func (r *MemoryRepository) ListStudentContexts(_ context.Context) ([]subjectModel.StudentContextModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]subjectModel.StudentContextModel, 0, len(r.contexts))
	for _, m := range r.contexts {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StudentContextStudentID.String() < out[j].StudentContextStudentID.String()
	})
	return out, nil
}

func (r *MemoryRepository) ListStudentsByAcademicYear(_ context.Context, academicYear string) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []uuid.UUID
	for _, c := range r.contexts {
		if p, ok := r.periods[c.StudentContextSemesterID]; ok && p.TeachingPeriodAcademicYear == academicYear {
			out = append(out, c.StudentContextStudentID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (r *MemoryRepository) ListOfferedSubjects(_ context.Context, batchID uuid.UUID) ([]subjectModel.SubjectModel, error) {
	if err := r.fail("list offered subjects"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[uuid.UUID]bool{}
	var out []subjectModel.SubjectModel
	for _, o := range r.offerings {
		if o.CourseOfferingBatchID != batchID || seen[o.CourseOfferingSubjectID] {
			continue
		}
		if s, ok := r.subjects[o.CourseOfferingSubjectID]; ok {
			seen[s.SubjectID] = true
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubjectCode != out[j].SubjectCode {
			return out[i].SubjectCode < out[j].SubjectCode
		}
		return out[i].SubjectID.String() < out[j].SubjectID.String()
	})
	return out, nil
}

func (r *MemoryRepository) GetSubject(_ context.Context, subjectID uuid.UUID) (*subjectModel.SubjectModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.subjects[subjectID]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "get subject")
	}
	return &m, nil
}

func (r *MemoryRepository) FindSubjectMapping(_ context.Context, batchID, semesterID uuid.UUID, ocrCode string) (*subjectModel.SubjectCodeMappingModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code := strings.TrimSpace(ocrCode)
	for _, m := range r.mappings {
		if m.SubjectCodeMappingBatchID == batchID &&
			m.SubjectCodeMappingSemesterID == semesterID &&
			m.SubjectCodeMappingOCRCode == code {
			out := m
			return &out, nil
		}
	}
	return nil, errors.Wrap(ErrNotFound, "find subject mapping")
}

func (r *MemoryRepository) FindSubjectByCode(_ context.Context, semesterID uuid.UUID, code string, caseInsensitive bool) (*subjectModel.SubjectModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code = strings.TrimSpace(code)
	var hits []subjectModel.SubjectModel
	for _, s := range r.subjects {
		if s.SubjectSemesterID != semesterID {
			continue
		}
		if s.SubjectCode == code || (caseInsensitive && strings.EqualFold(s.SubjectCode, code)) {
			hits = append(hits, s)
		}
	}
	if len(hits) == 0 {
		return nil, errors.Wrap(ErrNotFound, "find subject by code")
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].SubjectCode < hits[j].SubjectCode })
	return &hits[0], nil
}

func (r *MemoryRepository) ListPublishedSlots(_ context.Context, batchID uuid.UUID) ([]subjectModel.TimetableSlotModel, error) {
	if err := r.fail("list published slots"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []subjectModel.TimetableSlotModel
	for _, s := range r.slots {
		if s.TimetableSlotBatchID == batchID && s.TimetableSlotIsPublished {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *MemoryRepository) GetTeachingPeriod(_ context.Context, semesterID uuid.UUID) (*calModel.TeachingPeriodModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.periods[semesterID]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "get teaching period")
	}
	return &m, nil
}

func (r *MemoryRepository) GetWeeklyOffConfig(_ context.Context, academicYear string) (*calModel.WeeklyOffConfigModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.weeklyOffs[academicYear]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "get weekly off config")
	}
	return &m, nil
}

func (r *MemoryRepository) ListCalendarExceptions(_ context.Context, academicYear string) ([]calModel.CalendarExceptionModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []calModel.CalendarExceptionModel
	for _, e := range r.exceptions {
		if e.CalendarExceptionAcademicYear == academicYear {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CalendarExceptionStartDate.Equal(out[j].CalendarExceptionStartDate) {
			return out[i].CalendarExceptionStartDate.Before(out[j].CalendarExceptionStartDate)
		}
		return out[i].CalendarExceptionID.String() < out[j].CalendarExceptionID.String()
	})
	return out, nil
}

func (r *MemoryRepository) CreateCalendarException(_ context.Context, m *calModel.CalendarExceptionModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.CalendarExceptionID == uuid.Nil {
		m.CalendarExceptionID = uuid.New()
	}
	if m.CalendarExceptionCreatedAt.IsZero() {
		m.CalendarExceptionCreatedAt = time.Now().UTC()
	}
	r.exceptions[m.CalendarExceptionID] = *m
	return nil
}

func (r *MemoryRepository) GetCalendarException(_ context.Context, id uuid.UUID) (*calModel.CalendarExceptionModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.exceptions[id]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "get calendar exception")
	}
	return &m, nil
}

func (r *MemoryRepository) DeleteCalendarException(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exceptions[id]; !ok {
		return errors.Wrap(ErrNotFound, "delete calendar exception")
	}
	delete(r.exceptions, id)
	return nil
}

/* =========================
   Semester totals
   ========================= */

func totalKey(batchID, semesterID, subjectID uuid.UUID) string {
	return key(batchID.String(), semesterID.String(), subjectID.String())
}

func (r *MemoryRepository) UpsertSemesterTotals(_ context.Context, rows []totalModel.SemesterSubjectTotalModel) (int, error) {
	if err := r.fail("upsert semester totals"); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		k := totalKey(row.SemesterSubjectTotalBatchID, row.SemesterSubjectTotalSemesterID, row.SemesterSubjectTotalSubjectID)
		if prev, ok := r.totals[k]; ok {
			row.SemesterSubjectTotalID = prev.SemesterSubjectTotalID
		} else if row.SemesterSubjectTotalID == uuid.Nil {
			row.SemesterSubjectTotalID = uuid.New()
		}
		r.totals[k] = row
	}
	return len(rows), nil
}

func (r *MemoryRepository) DeleteSemesterTotalsExcept(_ context.Context, batchID, semesterID uuid.UUID, keep []uuid.UUID) (int, error) {
	if err := r.fail("delete semester totals"); err != nil {
		return 0, err
	}
	keepSet := make(map[uuid.UUID]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, t := range r.totals {
		if t.SemesterSubjectTotalBatchID != batchID || t.SemesterSubjectTotalSemesterID != semesterID {
			continue
		}
		if _, ok := keepSet[t.SemesterSubjectTotalSubjectID]; ok {
			continue
		}
		delete(r.totals, k)
		n++
	}
	return n, nil
}

func (r *MemoryRepository) ListSemesterTotals(_ context.Context, batchID, semesterID uuid.UUID) ([]totalModel.SemesterSubjectTotalModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []totalModel.SemesterSubjectTotalModel
	for _, t := range r.totals {
		if t.SemesterSubjectTotalBatchID == batchID && t.SemesterSubjectTotalSemesterID == semesterID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SemesterSubjectTotalSubjectID.String() < out[j].SemesterSubjectTotalSubjectID.String()
	})
	return out, nil
}

func (r *MemoryRepository) GetSemesterTotal(_ context.Context, batchID, semesterID, subjectID uuid.UUID) (*totalModel.SemesterSubjectTotalModel, error) {
	if err := r.fail("get semester total"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.totals[totalKey(batchID, semesterID, subjectID)]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "get semester total")
	}
	return &m, nil
}

/* =========================
   Snapshots
   ========================= */

func (r *MemoryRepository) LatestSnapshot(_ context.Context, studentID, batchID uuid.UUID) (*snapModel.OCRSnapshotModel, error) {
	if err := r.fail("latest snapshot"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *snapModel.OCRSnapshotModel
	for i := range r.snapshots {
		s := r.snapshots[i]
		if s.OCRSnapshotStudentID != studentID || s.OCRSnapshotBatchID != batchID {
			continue
		}
		if best == nil ||
			s.OCRSnapshotConfirmedAt.After(best.OCRSnapshotConfirmedAt) ||
			(s.OCRSnapshotConfirmedAt.Equal(best.OCRSnapshotConfirmedAt) && s.OCRSnapshotID.String() > best.OCRSnapshotID.String()) {
			cp := s
			best = &cp
		}
	}
	if best == nil {
		return nil, errors.Wrap(ErrNotFound, "latest snapshot")
	}
	return best, nil
}

func (r *MemoryRepository) InsertSnapshot(_ context.Context, m *snapModel.OCRSnapshotModel) error {
	if err := r.fail("insert snapshot"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.OCRSnapshotID == uuid.Nil {
		m.OCRSnapshotID = uuid.New()
	}
	r.snapshots = append(r.snapshots, *m)
	return nil
}

/* =========================
   Manual entries
   ========================= */

func sameKey(a, b ManualEntryKey) bool {
	return a.StudentID == b.StudentID &&
		a.SubjectID == b.SubjectID &&
		dateKey(a.EventDate) == dateKey(b.EventDate) &&
		a.ClassType == b.ClassType &&
		a.PeriodSlot == b.PeriodSlot
}

func sameManualKey(m manualModel.ManualAttendanceModel, k ManualEntryKey) bool {
	return sameKey(manualKeyOf(&m), k)
}

func (r *MemoryRepository) FindManualEntry(_ context.Context, k ManualEntryKey) (*manualModel.ManualAttendanceModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.manual {
		if sameManualKey(m, k) {
			out := m
			return &out, nil
		}
	}
	return nil, errors.Wrap(ErrNotFound, "find manual entry")
}

func (r *MemoryRepository) GetManualEntry(_ context.Context, id uuid.UUID) (*manualModel.ManualAttendanceModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.manual[id]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "get manual entry")
	}
	return &m, nil
}

func manualKeyOf(m *manualModel.ManualAttendanceModel) ManualEntryKey {
	return ManualEntryKey{
		StudentID:  m.ManualAttendanceStudentID,
		SubjectID:  m.ManualAttendanceSubjectID,
		EventDate:  m.ManualAttendanceEventDate,
		ClassType:  m.ManualAttendanceClassType,
		PeriodSlot: m.ManualAttendancePeriodSlot,
	}
}

func (r *MemoryRepository) manualKeyTakenLocked(k ManualEntryKey) bool {
	for _, existing := range r.manual {
		if sameManualKey(existing, k) {
			return true
		}
	}
	return false
}

// caller pegang r.mu
func (r *MemoryRepository) insertManualLocked(m *manualModel.ManualAttendanceModel, now time.Time) {
	if m.ManualAttendanceID == uuid.Nil {
		m.ManualAttendanceID = uuid.New()
	}
	m.ManualAttendanceCreatedAt = now
	m.ManualAttendanceUpdatedAt = now
	r.manual[m.ManualAttendanceID] = *m
}

// caller pegang r.mu; baris harus sudah ada
func (r *MemoryRepository) updateManualLocked(m *manualModel.ManualAttendanceModel, now time.Time) {
	prev := r.manual[m.ManualAttendanceID]
	if m.ManualAttendanceSnapshotID != uuid.Nil {
		prev.ManualAttendanceSnapshotID = m.ManualAttendanceSnapshotID
	}
	prev.ManualAttendanceStatus = m.ManualAttendanceStatus
	prev.ManualAttendanceNote = m.ManualAttendanceNote
	prev.ManualAttendancePeriodSlot = m.ManualAttendancePeriodSlot
	prev.ManualAttendanceUpdatedAt = now
	r.manual[m.ManualAttendanceID] = prev
	*m = prev
}

func (r *MemoryRepository) InsertManualEntry(_ context.Context, m *manualModel.ManualAttendanceModel) error {
	if err := r.fail("insert manual entry"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.manualKeyTakenLocked(manualKeyOf(m)) {
		return errors.Wrap(ErrDuplicate, "insert manual entry")
	}
	r.insertManualLocked(m, time.Now().UTC())
	return nil
}

// SaveManualEntries: semua dicek dulu di bawah satu lock, baru ditulis.
func (r *MemoryRepository) SaveManualEntries(_ context.Context, inserts, updates []*manualModel.ManualAttendanceModel) error {
	if err := r.fail("save manual entries"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make([]ManualEntryKey, 0, len(inserts))
	for _, m := range inserts {
		k := manualKeyOf(m)
		if r.manualKeyTakenLocked(k) {
			return errors.Wrap(ErrDuplicate, "save manual entries")
		}
		for _, p := range pending {
			if sameKey(p, k) {
				return errors.Wrap(ErrDuplicate, "save manual entries")
			}
		}
		pending = append(pending, k)
	}
	for _, m := range updates {
		if _, ok := r.manual[m.ManualAttendanceID]; !ok {
			return errors.Wrap(ErrNotFound, "save manual entries")
		}
	}

	now := time.Now().UTC()
	for _, m := range inserts {
		r.insertManualLocked(m, now)
	}
	for _, m := range updates {
		r.updateManualLocked(m, now)
	}
	return nil
}

func (r *MemoryRepository) UpdateManualEntry(_ context.Context, m *manualModel.ManualAttendanceModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.manual[m.ManualAttendanceID]; !ok {
		return errors.Wrap(ErrNotFound, "update manual entry")
	}
	r.updateManualLocked(m, time.Now().UTC())
	return nil
}

func (r *MemoryRepository) DeleteManualEntry(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.manual[id]; !ok {
		return errors.Wrap(ErrNotFound, "delete manual entry")
	}
	delete(r.manual, id)
	return nil
}

func (r *MemoryRepository) ListManualEntries(_ context.Context, f ManualEntryFilter) ([]manualModel.ManualAttendanceModel, int64, error) {
	if err := r.fail("list manual entries"); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var rows []manualModel.ManualAttendanceModel
	for _, m := range r.manual {
		if m.ManualAttendanceStudentID != f.StudentID {
			continue
		}
		if f.SubjectID != nil && m.ManualAttendanceSubjectID != *f.SubjectID {
			continue
		}
		if f.SnapshotID != nil && m.ManualAttendanceSnapshotID != *f.SnapshotID {
			continue
		}
		if f.From != nil && dateKey(m.ManualAttendanceEventDate) < dateKey(*f.From) {
			continue
		}
		if f.To != nil && dateKey(m.ManualAttendanceEventDate) > dateKey(*f.To) {
			continue
		}
		rows = append(rows, m)
	}
	sort.Slice(rows, func(i, j int) bool {
		di, dj := dateKey(rows[i].ManualAttendanceEventDate), dateKey(rows[j].ManualAttendanceEventDate)
		if di != dj {
			return di > dj
		}
		if rows[i].ManualAttendancePeriodSlot != rows[j].ManualAttendancePeriodSlot {
			return rows[i].ManualAttendancePeriodSlot < rows[j].ManualAttendancePeriodSlot
		}
		return rows[i].ManualAttendanceID.String() < rows[j].ManualAttendanceID.String()
	})
	total := int64(len(rows))
	if f.Offset > 0 {
		if f.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[f.Offset:]
		}
	}
	if f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}
	return rows, total, nil
}

/* =========================
   Derived rows
   ========================= */

func summaryKey(studentID, subjectID uuid.UUID, ct subjectModel.ClassType) string {
	return key(studentID.String(), subjectID.String(), string(ct))
}

func (r *MemoryRepository) GetSummary(_ context.Context, studentID, subjectID uuid.UUID, classType subjectModel.ClassType) (*summaryModel.AttendanceSummaryModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.summaries[summaryKey(studentID, subjectID, classType)]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "get summary")
	}
	return &m, nil
}

func (r *MemoryRepository) FindSummaryForSubject(_ context.Context, studentID, subjectID uuid.UUID) (*summaryModel.AttendanceSummaryModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *summaryModel.AttendanceSummaryModel
	for _, m := range r.summaries {
		if m.AttendanceSummaryStudentID != studentID || m.AttendanceSummarySubjectID != subjectID {
			continue
		}
		if best == nil || m.AttendanceSummaryLastRecomputedAt.After(best.AttendanceSummaryLastRecomputedAt) {
			cp := m
			best = &cp
		}
	}
	if best == nil {
		return nil, errors.Wrap(ErrNotFound, "find summary for subject")
	}
	return best, nil
}

func (r *MemoryRepository) UpsertSummary(_ context.Context, m *summaryModel.AttendanceSummaryModel) error {
	if err := r.fail("upsert summary"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := summaryKey(m.AttendanceSummaryStudentID, m.AttendanceSummarySubjectID, m.AttendanceSummaryClassType)
	if prev, ok := r.summaries[k]; ok {
		m.AttendanceSummaryID = prev.AttendanceSummaryID
	} else if m.AttendanceSummaryID == uuid.Nil {
		m.AttendanceSummaryID = uuid.New()
	}
	r.summaries[k] = *m
	return nil
}

func (r *MemoryRepository) ListSummaries(_ context.Context, studentID, batchID uuid.UUID) ([]summaryModel.AttendanceSummaryModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []summaryModel.AttendanceSummaryModel
	for _, m := range r.summaries {
		if m.AttendanceSummaryStudentID == studentID && m.AttendanceSummaryBatchID == batchID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AttendanceSummarySubjectID != b.AttendanceSummarySubjectID {
			return a.AttendanceSummarySubjectID.String() < b.AttendanceSummarySubjectID.String()
		}
		return a.AttendanceSummaryClassType < b.AttendanceSummaryClassType
	})
	return out, nil
}

func predictionKey(studentID, subjectID uuid.UUID) string {
	return key(studentID.String(), subjectID.String())
}

func (r *MemoryRepository) GetPrediction(_ context.Context, studentID, subjectID uuid.UUID) (*predModel.AttendancePredictionModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.predictions[predictionKey(studentID, subjectID)]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "get prediction")
	}
	return &m, nil
}

func (r *MemoryRepository) UpsertPrediction(_ context.Context, m *predModel.AttendancePredictionModel) error {
	if err := r.fail("upsert prediction"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := predictionKey(m.AttendancePredictionStudentID, m.AttendancePredictionSubjectID)
	if prev, ok := r.predictions[k]; ok {
		m.AttendancePredictionID = prev.AttendancePredictionID
	} else if m.AttendancePredictionID == uuid.Nil {
		m.AttendancePredictionID = uuid.New()
	}
	r.predictions[k] = *m
	return nil
}

func (r *MemoryRepository) ListPredictions(_ context.Context, studentID, batchID uuid.UUID) ([]predModel.AttendancePredictionModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []predModel.AttendancePredictionModel
	for _, m := range r.predictions {
		if m.AttendancePredictionStudentID == studentID && m.AttendancePredictionBatchID == batchID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AttendancePredictionSubjectID.String() < out[j].AttendancePredictionSubjectID.String()
	})
	return out, nil
}

func (r *MemoryRepository) InsertComputationLog(_ context.Context, m *logModel.ComputationLogModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ComputationLogID == uuid.Nil {
		m.ComputationLogID = uuid.New()
	}
	if m.ComputationLogCreatedAt.IsZero() {
		m.ComputationLogCreatedAt = m.ComputationLogCompletedAt
	}
	r.logs = append(r.logs, *m)
	return nil
}

func (r *MemoryRepository) ListComputationLogs(_ context.Context, studentID uuid.UUID, limit int) ([]logModel.ComputationLogModel, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []logModel.ComputationLogModel
	// terbaru dulu; append order = urutan waktu insert
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.logs[i].ComputationLogStudentID == studentID {
			out = append(out, r.logs[i])
		}
	}
	return out, nil
}
