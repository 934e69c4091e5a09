package routes

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-kit/log"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calModel "hajri_backend/internals/features/academics/calendars/model"
	totalService "hajri_backend/internals/features/academics/semester_totals/service"
	subjectModel "hajri_backend/internals/features/academics/subjects/model"
	manualService "hajri_backend/internals/features/attendance/manual_entries/service"
	predService "hajri_backend/internals/features/attendance/predictions/service"
	rcService "hajri_backend/internals/features/attendance/recompute/service"
	snapService "hajri_backend/internals/features/attendance/snapshots/service"
	summaryService "hajri_backend/internals/features/attendance/summaries/service"
	helper "hajri_backend/internals/helpers"
	"hajri_backend/internals/repository"
	routeDetails "hajri_backend/internals/route/details"
)

const testSecret = "route-secret"

type envelope struct {
	Success   bool           `json:"success"`
	ErrorCode string         `json:"error_code"`
	Data      map[string]any `json:"data"`
}

func token(t *testing.T, sub uuid.UUID, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub.String(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func newTestApp(t *testing.T) (*fiber.App, *repository.MemoryRepository, uuid.UUID) {
	t.Helper()
	logger := log.NewNopLogger()
	repo := repository.NewMemoryRepository()

	student, batch, semester := uuid.New(), uuid.New(), uuid.New()
	repo.PutStudentContext(subjectModel.StudentContextModel{StudentContextStudentID: student, StudentContextBatchID: batch, StudentContextSemesterID: semester})
	repo.PutTeachingPeriod(calModel.TeachingPeriodModel{
		TeachingPeriodSemesterID:   semester,
		TeachingPeriodAcademicYear: "2024-25",
		TeachingPeriodStartDate:    time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		TeachingPeriodEndDate:      time.Date(2025, 4, 27, 0, 0, 0, 0, time.UTC),
	})

	orch := rcService.NewOrchestrator(repo, rcService.DefaultConfig(), nil, logger)
	d := rcService.NewDispatcher(orch.Recompute, 2, nil, logger)
	d.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.Close(ctx)
	})

	deps := routeDetails.Deps{
		Store:         repo,
		Snapshots:     snapService.NewService(repo, logger),
		ManualEntries: manualService.NewService(repo, logger),
		Summaries:     summaryService.NewReader(repo, 3),
		Predictions:   predService.NewReader(repo, 3),
		Dispatcher:    d,
		Calculator:    totalService.NewCalculator(repo, logger),
		Validate:      helper.NewValidator(),
		Logger:        logger,
	}

	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler(logger)})
	SetupRoutes(app, deps, Options{
		JWTSecret: testSecret,
		Health:    func(context.Context) error { return nil },
		Logger:    logger,
	})
	return app, repo, student
}

func do(t *testing.T, app *fiber.App, method, path, tok, body string) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	_ = sonic.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func TestSetupRoutes_Groups(t *testing.T) {
	app, _, student := newTestApp(t)
	studentTok := token(t, student, "student")
	adminTok := token(t, uuid.New(), "admin")

	tests := []struct {
		name   string
		method string
		path   string
		tok    string
		want   int
	}{
		{"health", fiber.MethodGet, "/health", "", fiber.StatusOK},
		{"user without token", fiber.MethodGet, "/api/u/attendance/summary", "", fiber.StatusUnauthorized},
		{"admin route as student", fiber.MethodGet, "/api/a/calendar/non-teaching?academic_year=2024-25&from=2025-01-01&to=2025-01-31", studentTok, fiber.StatusForbidden},
		{"user route as admin", fiber.MethodGet, "/api/u/predictions", adminTok, fiber.StatusForbidden},
		{"summary ok", fiber.MethodGet, "/api/u/attendance/summary", studentTok, fiber.StatusOK},
		{"predictions ok", fiber.MethodGet, "/api/u/predictions", studentTok, fiber.StatusOK},
		{"latest snapshot missing", fiber.MethodGet, "/api/u/snapshots/latest", studentTok, fiber.StatusBadRequest},
		{"logs empty", fiber.MethodGet, "/api/u/engine/logs", studentTok, fiber.StatusOK},
		{"non-teaching needs range", fiber.MethodGet, "/api/a/calendar/non-teaching?academic_year=2024-25", adminTok, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := do(t, app, tt.method, tt.path, tt.tok, "")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendarRoutes(t *testing.T) {
	app, repo, student := newTestApp(t)
	studentTok := token(t, student, "student")
	adminTok := token(t, uuid.New(), "admin")

	// 2025-01-26 hari Minggu
	code, env := do(t, app, fiber.MethodGet, "/api/u/calendar/teaching-day?date=2025-01-26", studentTok, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, false, env.Data["is_teaching_day"])

	code, env = do(t, app, fiber.MethodGet, "/api/u/calendar/teaching-day?date=2025-01-27", studentTok, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, env.Data["is_teaching_day"])

	code, _ = do(t, app, fiber.MethodGet, "/api/u/calendar/teaching-day?date=27-01-2025", studentTok, "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	// exception baru → hari Senin tsb jadi libur + recompute di-trigger
	code, env = do(t, app, fiber.MethodPost, "/api/a/calendar/exceptions", adminTok,
		`{"academic_year":"2024-25","kind":"holiday","name":"Campus Day","start_date":"2025-01-27"}`)
	require.Equal(t, fiber.StatusCreated, code)
	assert.EqualValues(t, 1, env.Data["students_affected"])
	assert.EqualValues(t, 1, env.Data["recompute_triggered"])

	code, env = do(t, app, fiber.MethodGet, "/api/u/calendar/teaching-day?date=2025-01-27", studentTok, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, false, env.Data["is_teaching_day"])

	code, env = do(t, app, fiber.MethodGet, "/api/a/calendar/non-teaching?academic_year=2024-25&from=2025-01-26&to=2025-01-27", adminTok, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.EqualValues(t, 2, env.Data["non_teaching_days_count"])
	assert.EqualValues(t, 0, env.Data["teaching_days"])

	ex, err := repo.ListCalendarExceptions(context.Background(), "2024-25")
	require.NoError(t, err)
	require.Len(t, ex, 1)

	code, _ = do(t, app, fiber.MethodDelete, "/api/a/calendar/exceptions/"+ex[0].CalendarExceptionID.String(), adminTok, "")
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = do(t, app, fiber.MethodDelete, "/api/a/calendar/exceptions/"+ex[0].CalendarExceptionID.String(), adminTok, "")
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = do(t, app, fiber.MethodPost, "/api/a/calendar/exceptions", adminTok,
		`{"academic_year":"2024-25","kind":"party","name":"x","start_date":"2025-02-01"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
}
