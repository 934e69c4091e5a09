// file: internals/features/attendance/recompute/service/orchestrator.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"

	calService "hajri_backend/internals/features/academics/calendars/service"
	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	manualModel "hajri_backend/internals/features/attendance/manual_entries/model"
	"hajri_backend/internals/features/attendance/policy"
	predModel "hajri_backend/internals/features/attendance/predictions/model"
	predService "hajri_backend/internals/features/attendance/predictions/service"
	logModel "hajri_backend/internals/features/attendance/recompute/model"
	snapModel "hajri_backend/internals/features/attendance/snapshots/model"
	snapService "hajri_backend/internals/features/attendance/snapshots/service"
	summaryModel "hajri_backend/internals/features/attendance/summaries/model"
	"hajri_backend/internals/helpers/dbtime"
	"hajri_backend/internals/repository"
)

type Config struct {
	RequiredPercentage     float64
	FallbackRemainingWeeks int
}

func DefaultConfig() Config {
	return Config{RequiredPercentage: 75, FallbackRemainingWeeks: 8}
}

type Orchestrator struct {
	Store     repository.Store
	Calendars *calService.Loader
	Metrics   *Metrics
	Logger    log.Logger
	Config    Config
	Location  func() *time.Location

	nowFunc func() time.Time
}

func NewOrchestrator(store repository.Store, cfg Config, metrics *Metrics, logger log.Logger) *Orchestrator {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Orchestrator{
		Store:     store,
		Calendars: calService.NewLoader(store),
		Metrics:   metrics,
		Logger:    log.With(logger, "component", "recompute"),
		Config:    cfg,
		Location:  dbtime.AppLocation,
		nowFunc:   time.Now,
	}
}

// runState: konteks satu run (pengganti counter global).
type runState struct {
	studentID  uuid.UUID
	sc         subjectModel.StudentContextModel
	snapshot   snapModel.OCRSnapshotModel
	snapDate   time.Time
	today      time.Time
	now        time.Time
	entries    snapModel.EntryIndex
	totals     map[uuid.UUID]int
	weekly     map[uuid.UUID]int
	calendar   *calService.Calendar
	subjectsOK int
}

// Recompute membangun ulang summary + prediction semua subject batch mahasiswa.
// Selalu menulis satu baris computation log (SUCCESS / FAILED).
func (o *Orchestrator) Recompute(ctx context.Context, studentID uuid.UUID, trigger logModel.Trigger, triggerID string) (int, logModel.ComputeStatus, error) {
	started := o.nowFunc().UTC()
	o.Metrics.InFlight.Inc()
	defer o.Metrics.InFlight.Dec()

	st := &runState{studentID: studentID}
	runErr := o.run(ctx, st)

	completed := o.nowFunc().UTC()
	status := logModel.ComputeSuccess
	updated := st.subjectsOK
	if runErr != nil {
		status = logModel.ComputeFailed
		updated = 0
	}

	entry := &logModel.ComputationLogModel{
		ComputationLogStudentID:       studentID,
		ComputationLogTrigger:         trigger,
		ComputationLogStatus:          status,
		ComputationLogSubjectsUpdated: updated,
		ComputationLogStartedAt:       started,
		ComputationLogCompletedAt:     completed,
		ComputationLogDurationMs:      completed.Sub(started).Milliseconds(),
	}
	if triggerID != "" {
		tid := triggerID
		entry.ComputationLogTriggerID = &tid
	}
	if runErr != nil {
		msg := runErr.Error()
		entry.ComputationLogErrorMessage = &msg
		if b, err := sonic.ConfigStd.Marshal(errorDetails(runErr, st.subjectsOK)); err == nil {
			entry.ComputationLogErrorDetails = datatypes.JSON(b)
		}
	}
	if err := o.Store.InsertComputationLog(ctx, entry); err != nil {
		level.Error(o.Logger).Log("msg", "write computation log failed", "student_id", studentID, "err", err)
	}

	o.Metrics.Runs.WithLabelValues(string(trigger), string(status)).Inc()
	o.Metrics.Duration.WithLabelValues(string(trigger)).Observe(completed.Sub(started).Seconds())
	o.Metrics.SubjectsUpdated.Add(float64(updated))

	if runErr != nil {
		if v, ok := policy.As(runErr); ok {
			level.Info(o.Logger).Log("msg", "recompute rejected", "student_id", studentID, "trigger", trigger, "rule", v.Rule)
		} else {
			level.Error(o.Logger).Log("msg", "recompute failed", "student_id", studentID, "trigger", trigger, "subjects_completed", st.subjectsOK, "err", runErr)
		}
		return 0, status, runErr
	}
	level.Info(o.Logger).Log("msg", "recompute done", "student_id", studentID, "trigger", trigger, "subjects", updated, "duration_ms", entry.ComputationLogDurationMs)
	return updated, status, nil
}

func errorDetails(err error, completed int) map[string]any {
	d := map[string]any{"subjects_completed": completed}
	if v, ok := policy.As(err); ok {
		d["type"] = "policy_violation"
		d["rule"] = string(v.Rule)
		return d
	}
	d["type"] = fmt.Sprintf("%T", errors.Cause(err))
	return d
}

func (o *Orchestrator) run(ctx context.Context, st *runState) error {
	sc, err := snapService.StudentContext(ctx, o.Store, st.studentID)
	if err != nil {
		return err
	}
	st.sc = *sc

	snap, err := o.Store.LatestSnapshot(ctx, st.studentID, sc.StudentContextBatchID)
	if err != nil {
		if repository.IsNotFound(err) {
			return policy.SnapshotRequired(st.studentID.String())
		}
		return errors.Wrap(err, "latest snapshot")
	}
	st.snapshot = *snap

	entries, err := snap.DecodeEntries()
	if err != nil {
		return errors.Wrapf(err, "decode snapshot %s", snap.OCRSnapshotID)
	}
	st.entries = snapModel.NewEntryIndex(entries)

	loc := o.Location()
	st.now = o.nowFunc().UTC()
	st.snapDate = dbtime.DateIn(snap.OCRSnapshotConfirmedAt, loc)
	st.today = dbtime.DateIn(st.now, loc)

	if err := o.loadExpectations(ctx, st); err != nil {
		return err
	}

	subjects, err := o.Store.ListOfferedSubjects(ctx, sc.StudentContextBatchID)
	if err != nil {
		return errors.Wrap(err, "list offered subjects")
	}
	for _, subj := range subjects {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "recompute interrupted")
		}
		if err := o.subject(ctx, st, subj); err != nil {
			return errors.Wrapf(err, "subject %s", subj.SubjectCode)
		}
		st.subjectsOK++
	}
	return nil
}

// loadExpectations: semester total per subject, slot mingguan, dan kalender untuk fallback.
func (o *Orchestrator) loadExpectations(ctx context.Context, st *runState) error {
	rows, err := o.Store.ListSemesterTotals(ctx, st.sc.StudentContextBatchID, st.sc.StudentContextSemesterID)
	if err != nil {
		return errors.Wrap(err, "list semester totals")
	}
	st.totals = make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		st.totals[r.SemesterSubjectTotalSubjectID] = r.SemesterSubjectTotalClasses
	}

	slots, err := o.Store.ListPublishedSlots(ctx, st.sc.StudentContextBatchID)
	if err != nil {
		return errors.Wrap(err, "list published slots")
	}
	st.weekly = map[uuid.UUID]int{}
	for _, s := range slots {
		if s.TimetableSlotCount > 0 {
			st.weekly[s.TimetableSlotSubjectID] += s.TimetableSlotCount
		}
	}

	cal, err := o.Calendars.ForSemester(ctx, st.sc.StudentContextSemesterID)
	if err != nil && !errors.Is(err, calService.ErrNoTeachingPeriod) {
		return err
	}
	st.calendar = cal
	return nil
}

// baseline: entry snapshot aktif → summary sebelumnya → 0/0.
func (o *Orchestrator) baseline(ctx context.Context, st *runState, subj subjectModel.SubjectModel) (int, int, error) {
	if e, ok := st.entries.Lookup(subj.SubjectID, subj.SubjectCode); ok {
		return e.Present, e.Total, nil
	}
	prev, err := o.Store.FindSummaryForSubject(ctx, st.studentID, subj.SubjectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return 0, 0, nil
		}
		return 0, 0, errors.Wrap(err, "previous summary")
	}
	return prev.AttendanceSummarySnapshotPresent, prev.AttendanceSummarySnapshotTotal, nil
}

// remaining: dari semester total kalau ada, selain itu estimasi slot mingguan × minggu tersisa.
func (o *Orchestrator) remaining(st *runState, subj subjectModel.SubjectModel, currentTotal int) (int, bool) {
	if expected, ok := st.totals[subj.SubjectID]; ok {
		if r := expected - currentTotal; r > 0 {
			return r, false
		}
		return 0, false
	}

	weeks := o.Config.FallbackRemainingWeeks
	if st.calendar != nil {
		end := st.calendar.Period.TeachingPeriodEndDate
		weeks = 0
		if end.After(st.today) {
			weeks = int(end.Sub(st.today).Hours()/24) / 7
		}
	}
	est := st.weekly[subj.SubjectID] * weeks

	o.Metrics.FallbackEstimates.Inc()
	level.Warn(o.Logger).Log("msg", "no semester total, remaining classes estimated",
		"student_id", st.studentID, "subject_id", subj.SubjectID, "weekly_slots", st.weekly[subj.SubjectID], "weeks", weeks, "remaining", est)
	return est, true
}

func (o *Orchestrator) subject(ctx context.Context, st *runState, subj subjectModel.SubjectModel) error {
	bp, bt, err := o.baseline(ctx, st, subj)
	if err != nil {
		return err
	}

	snapshotID := st.snapshot.OCRSnapshotID
	from := st.snapDate
	rows, _, err := o.Store.ListManualEntries(ctx, repository.ManualEntryFilter{
		StudentID:  st.studentID,
		SubjectID:  &subj.SubjectID,
		SnapshotID: &snapshotID,
		From:       &from,
	})
	if err != nil {
		return errors.Wrap(err, "list manual entries")
	}
	manual := manualModel.Count(rows)

	present := bp + manual.Present
	total := bt + manual.Total()
	remaining, estimate := o.remaining(st, subj, total)
	pred := predService.Predict(present, total, remaining, o.Config.RequiredPercentage)

	classType := subj.SubjectClassType
	if classType == "" {
		classType = subjectModel.ClassTypeLecture
	}

	summary := summaryModel.AttendanceSummaryModel{
		AttendanceSummaryStudentID:         st.studentID,
		AttendanceSummarySubjectID:         subj.SubjectID,
		AttendanceSummaryClassType:         classType,
		AttendanceSummaryBatchID:           st.sc.StudentContextBatchID,
		AttendanceSummarySemesterID:        st.sc.StudentContextSemesterID,
		AttendanceSummarySnapshotID:        snapshotID,
		AttendanceSummarySnapshotAt:        st.snapshot.OCRSnapshotConfirmedAt.UTC(),
		AttendanceSummarySnapshotPresent:   bp,
		AttendanceSummarySnapshotTotal:     bt,
		AttendanceSummaryManualPresent:     manual.Present,
		AttendanceSummaryManualAbsent:      manual.Absent,
		AttendanceSummaryManualTotal:       manual.Total(),
		AttendanceSummaryCurrentPresent:    present,
		AttendanceSummaryCurrentTotal:      total,
		AttendanceSummaryCurrentPercentage: predService.ComputePercentage(present, total),
		AttendanceSummaryLastRecomputedAt:  st.now,
	}
	prevSummary, err := o.Store.GetSummary(ctx, st.studentID, subj.SubjectID, classType)
	if err != nil && !repository.IsNotFound(err) {
		return errors.Wrap(err, "get summary")
	}
	if prevSummary != nil && prevSummary.SameFigures(summary) {
		summary.AttendanceSummaryLastRecomputedAt = prevSummary.AttendanceSummaryLastRecomputedAt
	}
	if err := o.Store.UpsertSummary(ctx, &summary); err != nil {
		return errors.Wrap(err, "upsert summary")
	}

	prediction := predModel.AttendancePredictionModel{
		AttendancePredictionStudentID:           st.studentID,
		AttendancePredictionSubjectID:           subj.SubjectID,
		AttendancePredictionBatchID:             st.sc.StudentContextBatchID,
		AttendancePredictionCurrentPresent:      present,
		AttendancePredictionCurrentTotal:        total,
		AttendancePredictionCurrentPercentage:   predService.ComputePercentage(present, total),
		AttendancePredictionRequired:            o.Config.RequiredPercentage,
		AttendancePredictionRemainingClasses:    remaining,
		AttendancePredictionRemainingIsEstimate: estimate,
		AttendancePredictionMustAttend:          pred.MustAttend,
		AttendancePredictionCanBunk:             pred.CanBunk,
		AttendancePredictionRecoveryClasses:     pred.Recovery,
		AttendancePredictionStatus:              pred.Status,
		AttendancePredictionStatusTier4:         pred.StatusTier4,
		AttendancePredictionComputedAt:          st.now,
	}
	prevPred, err := o.Store.GetPrediction(ctx, st.studentID, subj.SubjectID)
	if err != nil && !repository.IsNotFound(err) {
		return errors.Wrap(err, "get prediction")
	}
	if prevPred != nil && prevPred.SameFigures(prediction) {
		prediction.AttendancePredictionComputedAt = prevPred.AttendancePredictionComputedAt
	}
	if err := o.Store.UpsertPrediction(ctx, &prediction); err != nil {
		return errors.Wrap(err, "upsert prediction")
	}
	return nil
}
