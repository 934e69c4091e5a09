package database

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hajri_backend/internals/configs"
	"hajri_backend/internals/repository"
)

var DB *gorm.DB

func ConnectDB(cfg configs.DBConfig, logger log.Logger) error {
	level.Info(logger).Log("msg", "koneksi ke PostgreSQL...", "host", cfg.Host, "db", cfg.Name)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger: configs.NewGormLogger(logger),
	})
	if err != nil {
		return errors.Wrap(err, "gagal konek DB")
	}
	DB = db
	level.Info(logger).Log("msg", "DB connected")
	return nil
}

func TunePool(logger log.Logger) {
	sqlDB, err := DB.DB()
	if err != nil {
		level.Warn(logger).Log("msg", "pool tune err", "err", err)
		return
	}
	// recompute worker + request HTTP berbagi pool yang sama
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Migrate membuat/menyesuaikan semua tabel engine + referensi.
func Migrate() error {
	if err := DB.AutoMigrate(repository.Models()...); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}

func WarmUpQueries(logger log.Logger) {
	go func() {
		time.Sleep(500 * time.Millisecond) // beri waktu server naik
		if err := Ping(); err != nil {
			level.Warn(logger).Log("msg", "warm-up ping err", "err", err)
			return
		}
		// query paling sering: context mahasiswa
		if err := DB.Exec("SELECT 1 FROM student_contexts LIMIT 1").Error; err != nil {
			level.Warn(logger).Log("msg", "warm-up query err", "err", err)
		}
	}()
}

// Ping dipakai warm-up & /health.
func Ping() error {
	if DB == nil {
		return errors.New("database belum terkoneksi")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close menutup pool; aman dipanggil walau DB belum pernah dibuka.
func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
