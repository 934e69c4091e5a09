package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"hajri_backend/internals/features/academics/semester_totals/service"
)

// cronLogger meneruskan log internal robfig/cron ke go-kit.
type cronLogger struct{ l log.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	level.Debug(c.l).Log(append([]interface{}{"msg", msg}, keysAndValues...)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	level.Error(c.l).Log(append([]interface{}{"msg", msg, "err", err}, keysAndValues...)...)
}

// StartSemesterTotalsCron menjadwalkan RecalculateAll. Schedule kosong → scheduler tidak dijalankan (nil, nil).
// Caller wajib Stop() saat shutdown.
func StartSemesterTotalsCron(schedule string, calc *service.Calculator, logger log.Logger) (*cron.Cron, error) {
	if strings.TrimSpace(schedule) == "" {
		level.Info(logger).Log("msg", "[SEMESTER-TOTALS] cron disabled")
		return nil, nil
	}
	logger = log.With(logger, "component", "semester_totals_cron")
	cl := cronLogger{l: logger}

	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		start := time.Now()
		n, err := calc.RecalculateAll(ctx)
		if err != nil {
			level.Error(logger).Log("msg", "[SEMESTER-TOTALS] recalculate failed", "rows", n, "err", err)
			return
		}
		level.Info(logger).Log("msg", "[SEMESTER-TOTALS] done", "rows", n, "dur", time.Since(start))
	})
	if err != nil {
		return nil, errors.Wrapf(err, "add cron %q", schedule)
	}
	level.Info(logger).Log("msg", "[SEMESTER-TOTALS] started", "schedule", schedule)
	c.Start()
	return c, nil
}
