package configs

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // APP_TIMEZONE tetap resolve di container tanpa zoneinfo

	"github.com/caarlos0/env/v11"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"hajri_backend/internals/helpers/logs"
)

var (
	JWTSecret string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	boot := logs.New(os.Stderr, "info")
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			level.Warn(boot).Log("msg", "tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			level.Info(boot).Log("msg", ".env file berhasil dimuat")
		}
	} else {
		level.Info(boot).Log("msg", "running in Railway, menggunakan ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	if JWTSecret == "" {
		level.Error(boot).Log("msg", "JWT_SECRET belum diset")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// =======================
// ENGINE CONFIG
// =======================

type EngineConfig struct {
	RequiredPercentage     float64 `env:"REQUIRED_PERCENTAGE"      envDefault:"75"`
	AppTimezone            string  `env:"APP_TIMEZONE"             envDefault:"Asia/Kolkata"`
	StatusTiers            int     `env:"STATUS_TIERS"             envDefault:"3"`
	RecomputeWorkers       int     `env:"RECOMPUTE_WORKERS"        envDefault:"4"`
	MaxBulkEntries         int     `env:"MAX_BULK_ENTRIES"         envDefault:"50"`
	FallbackRemainingWeeks int     `env:"FALLBACK_REMAINING_WEEKS" envDefault:"8"`
	SemesterTotalsCron     string  `env:"SEMESTER_TOTALS_CRON"     envDefault:"30 1 * * *"`
	LogLevel               string  `env:"LOG_LEVEL"                envDefault:"info"`
	StoreBackend           string  `env:"STORE_BACKEND"            envDefault:"postgres"` // postgres | memory
	Port                   string  `env:"PORT"                     envDefault:"3000"`
	SeedFile               string  `env:"SEED_FILE"`               // JSON data referensi, opsional

	location *time.Location
}

// Location = zona waktu aplikasi (hasil LoadEngineConfig).
func (c EngineConfig) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// LoadEngineConfig parse ENV + validasi. Nilai tidak valid → error (fail fast di main).
func LoadEngineConfig() (EngineConfig, error) {
	var cfg EngineConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Wrap(err, "parse engine config")
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		return cfg, errors.Wrapf(err, "APP_TIMEZONE %q", cfg.AppTimezone)
	}
	cfg.location = loc
	return cfg, nil
}

func (c EngineConfig) validate() error {
	var problems []string
	if c.RequiredPercentage <= 0 || c.RequiredPercentage > 100 {
		problems = append(problems, fmt.Sprintf("REQUIRED_PERCENTAGE must be in (0,100], got %v", c.RequiredPercentage))
	}
	if c.StatusTiers != 3 && c.StatusTiers != 4 {
		problems = append(problems, fmt.Sprintf("STATUS_TIERS must be 3 or 4, got %d", c.StatusTiers))
	}
	if c.RecomputeWorkers < 1 {
		problems = append(problems, "RECOMPUTE_WORKERS must be >= 1")
	}
	if c.MaxBulkEntries < 1 {
		problems = append(problems, "MAX_BULK_ENTRIES must be >= 1")
	}
	if c.FallbackRemainingWeeks < 0 {
		problems = append(problems, "FALLBACK_REMAINING_WEEKS must be >= 0")
	}
	if strings.TrimSpace(c.SemesterTotalsCron) != "" {
		if _, err := cron.ParseStandard(c.SemesterTotalsCron); err != nil {
			problems = append(problems, fmt.Sprintf("SEMESTER_TOTALS_CRON: %v", err))
		}
	}
	if !logs.ValidLevel(c.LogLevel) {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q tidak dikenal", c.LogLevel))
	}
	switch c.StoreBackend {
	case "postgres", "memory":
	default:
		problems = append(problems, fmt.Sprintf("STORE_BACKEND must be postgres or memory, got %q", c.StoreBackend))
	}
	if len(problems) > 0 {
		return errors.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// =======================
// DATABASE CONFIG
// =======================

type DBConfig struct {
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Host     string `env:"DB_HOST"    envDefault:"localhost"`
	Port     string `env:"DB_PORT"    envDefault:"5432"`
	Name     string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"require"`
}

func LoadDBConfig() (DBConfig, error) {
	cfg, err := env.ParseAs[DBConfig]()
	if err != nil {
		return cfg, errors.Wrap(err, "parse db config")
	}
	return cfg, nil
}

// DSN + statement_timeout; PreferSimpleProtocol di sisi driver (PgBouncer friendly)
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=hajri&options=-c%%20statement_timeout%%3D5000",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
	Logger        log.Logger
}

func NewGormLogger(l log.Logger) gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
		Logger:        log.With(l, "component", "gorm"),
	}
}

func (l *GormLogger) LogMode(lvl gormLogger.LogLevel) gormLogger.Interface {
	cp := *l
	cp.LogLevel = lvl
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		level.Info(l.Logger).Log("msg", fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		level.Warn(l.Logger).Log("msg", fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		level.Error(l.Logger).Log("msg", fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error && !errors.Is(err, gormLogger.ErrRecordNotFound):
		level.Error(l.Logger).Log("msg", "[ERROR]", "file", file, "err", err, "elapsed", elapsed, "rows", rows, "sql", sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		level.Warn(l.Logger).Log("msg", "[SLOW SQL]", "file", file, "elapsed", elapsed, "rows", rows, "sql", sql)
	case l.LogLevel >= gormLogger.Info:
		level.Debug(l.Logger).Log("msg", "[QUERY]", "file", file, "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}
