// file: internals/repository/gorm_repository.go
package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	calModel "hajri_backend/internals/features/academics/calendars/model"
	totalModel "hajri_backend/internals/features/academics/semester_totals/model"
	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	manualModel "hajri_backend/internals/features/attendance/manual_entries/model"
	predModel "hajri_backend/internals/features/attendance/predictions/model"
	logModel "hajri_backend/internals/features/attendance/recompute/model"
	snapModel "hajri_backend/internals/features/attendance/snapshots/model"
	summaryModel "hajri_backend/internals/features/attendance/summaries/model"
)

type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

var _ Store = (*GormRepository)(nil)

// Models: urutan untuk AutoMigrate.
func Models() []any {
	return []any{
		&subjectModel.SubjectModel{},
		&subjectModel.CourseOfferingModel{},
		&subjectModel.SubjectCodeMappingModel{},
		&subjectModel.TimetableSlotModel{},
		&subjectModel.StudentContextModel{},
		&calModel.CalendarExceptionModel{},
		&calModel.WeeklyOffConfigModel{},
		&calModel.TeachingPeriodModel{},
		&totalModel.SemesterSubjectTotalModel{},
		&snapModel.OCRSnapshotModel{},
		&manualModel.ManualAttendanceModel{},
		&summaryModel.AttendanceSummaryModel{},
		&predModel.AttendancePredictionModel{},
		&logModel.ComputationLogModel{},
	}
}

func (r *GormRepository) db(ctx context.Context) *gorm.DB { return r.DB.WithContext(ctx) }

/* =========================
   Reference data
   ========================= */

func (r *GormRepository) GetStudentContext(ctx context.Context, studentID uuid.UUID) (*subjectModel.StudentContextModel, error) {
	var m subjectModel.StudentContextModel
	err := r.db(ctx).
		Where("student_context_student_id = ?", studentID).
		Take(&m).Error
	if err != nil {
		return nil, translateError(err, "get student context")
	}
	return &m, nil
}

func (r *GormRepository) ListStudentContexts(ctx context.Context) ([]subjectModel.StudentContextModel, error) {
	var rows []subjectModel.StudentContextModel
	err := r.db(ctx).
		Order("student_context_student_id ASC").
		Find(&rows).Error
	return rows, translateError(err, "list student contexts")
}

func (r *GormRepository) ListStudentsByAcademicYear(ctx context.Context, academicYear string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db(ctx).
		Table("student_contexts sc").
		Joins("JOIN teaching_periods tp ON tp.teaching_period_semester_id = sc.student_context_semester_id").
		Where("tp.teaching_period_academic_year = ?", academicYear).
		Order("sc.student_context_student_id ASC").
		Pluck("sc.student_context_student_id", &ids).Error
	return ids, translateError(err, "list students by academic year")
}

func (r *GormRepository) ListOfferedSubjects(ctx context.Context, batchID uuid.UUID) ([]subjectModel.SubjectModel, error) {
	var rows []subjectModel.SubjectModel
	err := r.db(ctx).
		Where(`subject_id IN (
		  SELECT course_offering_subject_id
		  FROM course_offerings
		  WHERE course_offering_batch_id = ?
		)`, batchID).
		Order("subject_code ASC, subject_id ASC").
		Find(&rows).Error
	return rows, translateError(err, "list offered subjects")
}

func (r *GormRepository) GetSubject(ctx context.Context, subjectID uuid.UUID) (*subjectModel.SubjectModel, error) {
	var m subjectModel.SubjectModel
	if err := r.db(ctx).Where("subject_id = ?", subjectID).Take(&m).Error; err != nil {
		return nil, translateError(err, "get subject")
	}
	return &m, nil
}

func (r *GormRepository) FindSubjectMapping(ctx context.Context, batchID, semesterID uuid.UUID, ocrCode string) (*subjectModel.SubjectCodeMappingModel, error) {
	var m subjectModel.SubjectCodeMappingModel
	err := r.db(ctx).
		Where("subject_code_mapping_batch_id = ? AND subject_code_mapping_semester_id = ? AND subject_code_mapping_ocr_code = ?",
			batchID, semesterID, strings.TrimSpace(ocrCode)).
		Take(&m).Error
	if err != nil {
		return nil, translateError(err, "find subject mapping")
	}
	return &m, nil
}

func (r *GormRepository) FindSubjectByCode(ctx context.Context, semesterID uuid.UUID, code string, caseInsensitive bool) (*subjectModel.SubjectModel, error) {
	var m subjectModel.SubjectModel
	q := r.db(ctx).Where("subject_semester_id = ?", semesterID)
	if caseInsensitive {
		q = q.Where("LOWER(subject_code) = LOWER(?)", strings.TrimSpace(code))
	} else {
		q = q.Where("subject_code = ?", strings.TrimSpace(code))
	}
	if err := q.Order("subject_code ASC").Take(&m).Error; err != nil {
		return nil, translateError(err, "find subject by code")
	}
	return &m, nil
}

func (r *GormRepository) ListPublishedSlots(ctx context.Context, batchID uuid.UUID) ([]subjectModel.TimetableSlotModel, error) {
	var rows []subjectModel.TimetableSlotModel
	err := r.db(ctx).
		Where("timetable_slot_batch_id = ? AND timetable_slot_is_published = TRUE", batchID).
		Order("timetable_slot_subject_id ASC, timetable_slot_day_of_week ASC").
		Find(&rows).Error
	return rows, translateError(err, "list published slots")
}

func (r *GormRepository) GetTeachingPeriod(ctx context.Context, semesterID uuid.UUID) (*calModel.TeachingPeriodModel, error) {
	var m calModel.TeachingPeriodModel
	if err := r.db(ctx).Where("teaching_period_semester_id = ?", semesterID).Take(&m).Error; err != nil {
		return nil, translateError(err, "get teaching period")
	}
	return &m, nil
}

func (r *GormRepository) GetWeeklyOffConfig(ctx context.Context, academicYear string) (*calModel.WeeklyOffConfigModel, error) {
	var m calModel.WeeklyOffConfigModel
	if err := r.db(ctx).Where("weekly_off_config_academic_year = ?", academicYear).Take(&m).Error; err != nil {
		return nil, translateError(err, "get weekly off config")
	}
	return &m, nil
}

func (r *GormRepository) ListCalendarExceptions(ctx context.Context, academicYear string) ([]calModel.CalendarExceptionModel, error) {
	var rows []calModel.CalendarExceptionModel
	err := r.db(ctx).
		Where("calendar_exception_academic_year = ?", academicYear).
		Order("calendar_exception_start_date ASC, calendar_exception_id ASC").
		Find(&rows).Error
	return rows, translateError(err, "list calendar exceptions")
}

func (r *GormRepository) CreateCalendarException(ctx context.Context, m *calModel.CalendarExceptionModel) error {
	if m.CalendarExceptionID == uuid.Nil {
		m.CalendarExceptionID = uuid.New()
	}
	return translateError(r.db(ctx).Create(m).Error, "create calendar exception")
}

func (r *GormRepository) GetCalendarException(ctx context.Context, id uuid.UUID) (*calModel.CalendarExceptionModel, error) {
	var m calModel.CalendarExceptionModel
	if err := r.db(ctx).Where("calendar_exception_id = ?", id).Take(&m).Error; err != nil {
		return nil, translateError(err, "get calendar exception")
	}
	return &m, nil
}

func (r *GormRepository) DeleteCalendarException(ctx context.Context, id uuid.UUID) error {
	res := r.db(ctx).Where("calendar_exception_id = ?", id).Delete(&calModel.CalendarExceptionModel{})
	if res.Error != nil {
		return translateError(res.Error, "delete calendar exception")
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "delete calendar exception")
	}
	return nil
}

/* =========================
   Semester totals
   ========================= */

func (r *GormRepository) UpsertSemesterTotals(ctx context.Context, rows []totalModel.SemesterSubjectTotalModel) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for i := range rows {
		if rows[i].SemesterSubjectTotalID == uuid.Nil {
			rows[i].SemesterSubjectTotalID = uuid.New()
		}
	}
	err := r.db(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "semester_subject_total_batch_id"},
				{Name: "semester_subject_total_semester_id"},
				{Name: "semester_subject_total_subject_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"semester_subject_total_class_type",
				"semester_subject_total_slots_per_week",
				"semester_subject_total_classes",
				"semester_subject_total_calculation_details",
				"semester_subject_total_calculated_at",
			}),
		}).
		CreateInBatches(&rows, 200).Error
	if err != nil {
		return 0, translateError(err, "upsert semester totals")
	}
	return len(rows), nil
}

func (r *GormRepository) DeleteSemesterTotalsExcept(ctx context.Context, batchID, semesterID uuid.UUID, keep []uuid.UUID) (int, error) {
	q := r.db(ctx).
		Where("semester_subject_total_batch_id = ? AND semester_subject_total_semester_id = ?", batchID, semesterID)
	if len(keep) > 0 {
		q = q.Where("semester_subject_total_subject_id NOT IN ?", keep)
	}
	res := q.Delete(&totalModel.SemesterSubjectTotalModel{})
	if res.Error != nil {
		return 0, translateError(res.Error, "delete semester totals")
	}
	return int(res.RowsAffected), nil
}

func (r *GormRepository) ListSemesterTotals(ctx context.Context, batchID, semesterID uuid.UUID) ([]totalModel.SemesterSubjectTotalModel, error) {
	var rows []totalModel.SemesterSubjectTotalModel
	err := r.db(ctx).
		Where("semester_subject_total_batch_id = ? AND semester_subject_total_semester_id = ?", batchID, semesterID).
		Order("semester_subject_total_subject_id ASC").
		Find(&rows).Error
	return rows, translateError(err, "list semester totals")
}

func (r *GormRepository) GetSemesterTotal(ctx context.Context, batchID, semesterID, subjectID uuid.UUID) (*totalModel.SemesterSubjectTotalModel, error) {
	var m totalModel.SemesterSubjectTotalModel
	err := r.db(ctx).
		Where("semester_subject_total_batch_id = ? AND semester_subject_total_semester_id = ? AND semester_subject_total_subject_id = ?",
			batchID, semesterID, subjectID).
		Take(&m).Error
	if err != nil {
		return nil, translateError(err, "get semester total")
	}
	return &m, nil
}

/* =========================
   Snapshots
   ========================= */

func (r *GormRepository) LatestSnapshot(ctx context.Context, studentID, batchID uuid.UUID) (*snapModel.OCRSnapshotModel, error) {
	var m snapModel.OCRSnapshotModel
	err := r.db(ctx).
		Where("ocr_snapshot_student_id = ? AND ocr_snapshot_batch_id = ?", studentID, batchID).
		Order("ocr_snapshot_confirmed_at DESC, ocr_snapshot_id DESC").
		Take(&m).Error
	if err != nil {
		return nil, translateError(err, "latest snapshot")
	}
	return &m, nil
}

func (r *GormRepository) InsertSnapshot(ctx context.Context, m *snapModel.OCRSnapshotModel) error {
	if m.OCRSnapshotID == uuid.Nil {
		m.OCRSnapshotID = uuid.New()
	}
	return translateError(r.db(ctx).Create(m).Error, "insert snapshot")
}

/* =========================
   Manual entries
   ========================= */

func (r *GormRepository) FindManualEntry(ctx context.Context, key ManualEntryKey) (*manualModel.ManualAttendanceModel, error) {
	var m manualModel.ManualAttendanceModel
	err := r.db(ctx).
		Where(`manual_attendance_student_id = ?
		   AND manual_attendance_subject_id = ?
		   AND manual_attendance_event_date = ?
		   AND manual_attendance_class_type = ?
		   AND manual_attendance_period_slot = ?`,
			key.StudentID, key.SubjectID, key.EventDate.Format("2006-01-02"), key.ClassType, key.PeriodSlot).
		Take(&m).Error
	if err != nil {
		return nil, translateError(err, "find manual entry")
	}
	return &m, nil
}

func (r *GormRepository) GetManualEntry(ctx context.Context, id uuid.UUID) (*manualModel.ManualAttendanceModel, error) {
	var m manualModel.ManualAttendanceModel
	if err := r.db(ctx).Where("manual_attendance_id = ?", id).Take(&m).Error; err != nil {
		return nil, translateError(err, "get manual entry")
	}
	return &m, nil
}

func (r *GormRepository) InsertManualEntry(ctx context.Context, m *manualModel.ManualAttendanceModel) error {
	if m.ManualAttendanceID == uuid.Nil {
		m.ManualAttendanceID = uuid.New()
	}
	return translateError(r.db(ctx).Create(m).Error, "insert manual entry")
}

func (r *GormRepository) SaveManualEntries(ctx context.Context, inserts, updates []*manualModel.ManualAttendanceModel) error {
	return r.db(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &GormRepository{DB: tx}
		for _, m := range inserts {
			if err := txRepo.InsertManualEntry(ctx, m); err != nil {
				return err
			}
		}
		for _, m := range updates {
			if err := txRepo.UpdateManualEntry(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepository) UpdateManualEntry(ctx context.Context, m *manualModel.ManualAttendanceModel) error {
	res := r.db(ctx).
		Model(&manualModel.ManualAttendanceModel{}).
		Where("manual_attendance_id = ?", m.ManualAttendanceID).
		Updates(map[string]any{
			"manual_attendance_snapshot_id": m.ManualAttendanceSnapshotID,
			"manual_attendance_status":      m.ManualAttendanceStatus,
			"manual_attendance_note":        m.ManualAttendanceNote,
			"manual_attendance_period_slot": m.ManualAttendancePeriodSlot,
			"manual_attendance_updated_at":  gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return translateError(res.Error, "update manual entry")
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "update manual entry")
	}
	return nil
}

func (r *GormRepository) DeleteManualEntry(ctx context.Context, id uuid.UUID) error {
	res := r.db(ctx).Where("manual_attendance_id = ?", id).Delete(&manualModel.ManualAttendanceModel{})
	if res.Error != nil {
		return translateError(res.Error, "delete manual entry")
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "delete manual entry")
	}
	return nil
}

func (r *GormRepository) ListManualEntries(ctx context.Context, f ManualEntryFilter) ([]manualModel.ManualAttendanceModel, int64, error) {
	q := r.db(ctx).
		Model(&manualModel.ManualAttendanceModel{}).
		Where("manual_attendance_student_id = ?", f.StudentID)
	if f.SubjectID != nil {
		q = q.Where("manual_attendance_subject_id = ?", *f.SubjectID)
	}
	if f.SnapshotID != nil {
		q = q.Where("manual_attendance_snapshot_id = ?", *f.SnapshotID)
	}
	if f.From != nil {
		q = q.Where("manual_attendance_event_date >= ?", f.From.Format("2006-01-02"))
	}
	if f.To != nil {
		q = q.Where("manual_attendance_event_date <= ?", f.To.Format("2006-01-02"))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count manual entries")
	}

	q = q.Order("manual_attendance_event_date DESC, manual_attendance_period_slot ASC, manual_attendance_id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var rows []manualModel.ManualAttendanceModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "list manual entries")
	}
	return rows, total, nil
}

/* =========================
   Derived rows
   ========================= */

func (r *GormRepository) GetSummary(ctx context.Context, studentID, subjectID uuid.UUID, classType subjectModel.ClassType) (*summaryModel.AttendanceSummaryModel, error) {
	var m summaryModel.AttendanceSummaryModel
	err := r.db(ctx).
		Where("attendance_summary_student_id = ? AND attendance_summary_subject_id = ? AND attendance_summary_class_type = ?",
			studentID, subjectID, classType).
		Take(&m).Error
	if err != nil {
		return nil, translateError(err, "get summary")
	}
	return &m, nil
}

func (r *GormRepository) FindSummaryForSubject(ctx context.Context, studentID, subjectID uuid.UUID) (*summaryModel.AttendanceSummaryModel, error) {
	var m summaryModel.AttendanceSummaryModel
	err := r.db(ctx).
		Where("attendance_summary_student_id = ? AND attendance_summary_subject_id = ?", studentID, subjectID).
		Order("attendance_summary_last_recomputed_at DESC").
		Take(&m).Error
	if err != nil {
		return nil, translateError(err, "find summary for subject")
	}
	return &m, nil
}

func (r *GormRepository) UpsertSummary(ctx context.Context, m *summaryModel.AttendanceSummaryModel) error {
	if m.AttendanceSummaryID == uuid.Nil {
		m.AttendanceSummaryID = uuid.New()
	}
	err := r.db(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "attendance_summary_student_id"},
				{Name: "attendance_summary_subject_id"},
				{Name: "attendance_summary_class_type"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"attendance_summary_batch_id",
				"attendance_summary_semester_id",
				"attendance_summary_snapshot_id",
				"attendance_summary_snapshot_at",
				"attendance_summary_snapshot_present",
				"attendance_summary_snapshot_total",
				"attendance_summary_manual_present",
				"attendance_summary_manual_absent",
				"attendance_summary_manual_total",
				"attendance_summary_current_present",
				"attendance_summary_current_total",
				"attendance_summary_current_percentage",
				"attendance_summary_last_recomputed_at",
			}),
		}).
		Create(m).Error
	return translateError(err, "upsert summary")
}

func (r *GormRepository) ListSummaries(ctx context.Context, studentID, batchID uuid.UUID) ([]summaryModel.AttendanceSummaryModel, error) {
	var rows []summaryModel.AttendanceSummaryModel
	err := r.db(ctx).
		Where("attendance_summary_student_id = ? AND attendance_summary_batch_id = ?", studentID, batchID).
		Order("attendance_summary_subject_id ASC, attendance_summary_class_type ASC").
		Find(&rows).Error
	return rows, translateError(err, "list summaries")
}

func (r *GormRepository) GetPrediction(ctx context.Context, studentID, subjectID uuid.UUID) (*predModel.AttendancePredictionModel, error) {
	var m predModel.AttendancePredictionModel
	err := r.db(ctx).
		Where("attendance_prediction_student_id = ? AND attendance_prediction_subject_id = ?", studentID, subjectID).
		Take(&m).Error
	if err != nil {
		return nil, translateError(err, "get prediction")
	}
	return &m, nil
}

func (r *GormRepository) UpsertPrediction(ctx context.Context, m *predModel.AttendancePredictionModel) error {
	if m.AttendancePredictionID == uuid.Nil {
		m.AttendancePredictionID = uuid.New()
	}
	err := r.db(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "attendance_prediction_student_id"},
				{Name: "attendance_prediction_subject_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"attendance_prediction_batch_id",
				"attendance_prediction_current_present",
				"attendance_prediction_current_total",
				"attendance_prediction_current_percentage",
				"attendance_prediction_required_percentage",
				"attendance_prediction_remaining_classes",
				"attendance_prediction_remaining_is_estimate",
				"attendance_prediction_must_attend",
				"attendance_prediction_can_bunk",
				"attendance_prediction_recovery_classes",
				"attendance_prediction_status",
				"attendance_prediction_status_tier4",
				"attendance_prediction_computed_at",
			}),
		}).
		Create(m).Error
	return translateError(err, "upsert prediction")
}

func (r *GormRepository) ListPredictions(ctx context.Context, studentID, batchID uuid.UUID) ([]predModel.AttendancePredictionModel, error) {
	var rows []predModel.AttendancePredictionModel
	err := r.db(ctx).
		Where("attendance_prediction_student_id = ? AND attendance_prediction_batch_id = ?", studentID, batchID).
		Order("attendance_prediction_subject_id ASC").
		Find(&rows).Error
	return rows, translateError(err, "list predictions")
}

func (r *GormRepository) InsertComputationLog(ctx context.Context, m *logModel.ComputationLogModel) error {
	if m.ComputationLogID == uuid.Nil {
		m.ComputationLogID = uuid.New()
	}
	return translateError(r.db(ctx).Create(m).Error, "insert computation log")
}

func (r *GormRepository) ListComputationLogs(ctx context.Context, studentID uuid.UUID, limit int) ([]logModel.ComputationLogModel, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []logModel.ComputationLogModel
	err := r.db(ctx).
		Where("computation_log_student_id = ?", studentID).
		Order("computation_log_created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, translateError(err, "list computation logs")
}
