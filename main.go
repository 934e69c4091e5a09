package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hajri_backend/internals/configs"
	database "hajri_backend/internals/databases"
	totalScheduler "hajri_backend/internals/features/academics/semester_totals/scheduler"
	totalService "hajri_backend/internals/features/academics/semester_totals/service"
	manualService "hajri_backend/internals/features/attendance/manual_entries/service"
	predService "hajri_backend/internals/features/attendance/predictions/service"
	rcService "hajri_backend/internals/features/attendance/recompute/service"
	snapService "hajri_backend/internals/features/attendance/snapshots/service"
	summaryService "hajri_backend/internals/features/attendance/summaries/service"
	helper "hajri_backend/internals/helpers"
	"hajri_backend/internals/helpers/dbtime"
	"hajri_backend/internals/helpers/logs"
	middlewares "hajri_backend/internals/middlewares"
	"hajri_backend/internals/repository"
	routes "hajri_backend/internals/route"
	routeDetails "hajri_backend/internals/route/details"
	"hajri_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	cfg, err := configs.LoadEngineConfig()
	if err != nil {
		level.Error(logs.New(os.Stderr, "info")).Log("msg", "config tidak valid", "err", err)
		os.Exit(1)
	}
	logger := logs.Init(cfg.LogLevel)
	dbtime.SetAppLocation(cfg.Location())

	// 🔌 store: postgres (default) atau memory untuk local run
	store, health := openStore(cfg, logger)
	if err := seeds.RunAllSeeds(context.Background(), database.DB, store, cfg.SeedFile, logger); err != nil {
		level.Error(logger).Log("msg", "seed gagal", "err", err)
		os.Exit(1)
	}

	// 📈 metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := rcService.NewMetrics(reg)

	// ⚙️ engine
	orch := rcService.NewOrchestrator(store, rcService.Config{
		RequiredPercentage:     cfg.RequiredPercentage,
		FallbackRemainingWeeks: cfg.FallbackRemainingWeeks,
	}, metrics, logger)
	dispatcher := rcService.NewDispatcher(orch.Recompute, cfg.RecomputeWorkers, metrics, logger)
	dispatcher.Start()

	calc := totalService.NewCalculator(store, logger)
	calc.Concurrency = cfg.RecomputeWorkers

	// ⏱ scheduler setelah store siap
	cr, err := totalScheduler.StartSemesterTotalsCron(cfg.SemesterTotalsCron, calc, logger)
	if err != nil {
		level.Error(logger).Log("msg", "cron gagal start", "err", err)
		os.Exit(1)
	}

	manual := manualService.NewService(store, logger)
	manual.MaxBulkEntries = cfg.MaxBulkEntries

	deps := routeDetails.Deps{
		Store:         store,
		Snapshots:     snapService.NewService(store, logger),
		ManualEntries: manual,
		Summaries:     summaryService.NewReader(store, cfg.StatusTiers),
		Predictions:   predService.NewReader(store, cfg.StatusTiers),
		Dispatcher:    dispatcher,
		Calculator:    calc,
		Validate:      helper.Validate,
		Logger:        logger,
	}

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.ErrorHandler(logger),
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing
	app.Use(requestID(logger))

	middlewares.SetupMiddlewares(app, cfg.AppTimezone)

	routes.SetupRoutes(app, deps, routes.Options{
		JWTSecret: configs.JWTSecret,
		Health:    health,
		Metrics:   adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		Logger:    logger,
	})

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 60 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		level.Info(logger).Log("msg", "listening", "port", cfg.Port, "store", cfg.StoreBackend)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			level.Error(logger).Log("msg", "server error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown: HTTP → dispatcher (drain) → cron → DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	level.Info(logger).Log("msg", "shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if err := dispatcher.Close(ctx); err != nil {
		level.Warn(logger).Log("msg", "dispatcher drain", "err", err)
	}
	if cr != nil {
		<-cr.Stop().Done()
	}
	database.Close()
}

func openStore(cfg configs.EngineConfig, logger log.Logger) (repository.Store, routes.HealthCheck) {
	if cfg.StoreBackend == "memory" {
		level.Warn(logger).Log("msg", "STORE_BACKEND=memory, data hilang saat restart")
		return repository.NewMemoryRepository(), nil
	}

	dbCfg, err := configs.LoadDBConfig()
	if err != nil {
		level.Error(logger).Log("msg", "db config tidak valid", "err", err)
		os.Exit(1)
	}
	if err := database.ConnectDB(dbCfg, logger); err != nil {
		level.Error(logger).Log("msg", "db connect", "err", err)
		os.Exit(1)
	}
	database.TunePool(logger)
	if err := database.Migrate(); err != nil {
		level.Error(logger).Log("msg", "migrate", "err", err)
		os.Exit(1)
	}
	database.WarmUpQueries(logger)

	return repository.NewGormRepository(database.DB), func(context.Context) error { return database.Ping() }
}

// requestID: X-Request-ID + timeout guard untuk UserContext.
func requestID(logger log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()

		// recompute sinkron bisa lebih lama dari query biasa
		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()
		c.SetUserContext(ctx)

		err := c.Next()
		level.Debug(logger).Log("msg", "[REQ]", "id", id, "method", c.Method(), "url", c.OriginalURL(), "status", c.Response().StatusCode(), "dur", time.Since(start))
		return err
	}
}
