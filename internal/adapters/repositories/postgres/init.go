package postgres

import (
	"fmt"
	"time"

	"github.com/iwtcode/spiroBench/internal/adapters/repositories/postgres/flow_curve"
	"github.com/iwtcode/spiroBench/internal/config"
	"github.com/iwtcode/spiroBench/internal/domain/entities"
	"github.com/iwtcode/spiroBench/internal/interfaces"
	"github.com/iwtcode/spiroBench/internal/middleware/logging"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Repository struct {
	interfaces.FlowCurveRepository
}

// NewRepository создает БД кривых при необходимости, выполняет миграции и возвращает репозиторий.
func NewRepository(cfg *config.AppConfig, appLogger *logging.Logger) (interfaces.FlowCurveRepository, error) {
	log := appLogger.WithPrefix("DB")

	if err := ensureDatabase(cfg.Database, log); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn(cfg.Database, cfg.Database.DBName)), &gorm.Config{
		Logger:         newGormLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open curve database %q: %w", cfg.Database.DBName, err)
	}

	if err := db.AutoMigrate(&entities.FlowCurve{}); err != nil {
		return nil, fmt.Errorf("curve table migration failed: %w", err)
	}
	log.Info("Curve storage ready", "db_name", cfg.Database.DBName)

	return &Repository{
		FlowCurveRepository: flow_curve.NewFlowCurveRepository(db),
	}, nil
}

func dsn(c config.DatabaseConfig, dbName string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.Username, c.Password, dbName, c.Port)
}

// ensureDatabase создает целевую БД через служебную 'postgres', если ее нет.
func ensureDatabase(c config.DatabaseConfig, log *logging.Logger) error {
	admin, err := gorm.Open(postgres.Open(dsn(c, "postgres")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to maintenance database: %w", err)
	}
	defer func() {
		if sqlDB, err := admin.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	var exists bool
	if err := admin.Raw("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = ?)", c.DBName).Scan(&exists).Error; err != nil {
		return fmt.Errorf("failed to check database %q: %w", c.DBName, err)
	}
	if exists {
		return nil
	}

	log.Info("Database not found. Creating...", "db_name", c.DBName)
	if err := admin.Exec(fmt.Sprintf("CREATE DATABASE %q", c.DBName)).Error; err != nil {
		return fmt.Errorf("failed to create database %q: %w", c.DBName, err)
	}
	return nil
}

func newGormLogger(log *logging.Logger) logger.Interface {
	level := logger.Warn
	if log.ShouldLog("DEBUG") {
		level = logger.Info
	}
	return logger.New(gormWriter{log}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// gormWriter направляет SQL-лог gorm в логгер приложения.
type gormWriter struct {
	logger *logging.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Debug(fmt.Sprintf(format, args...))
}
