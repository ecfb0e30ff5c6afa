package database

import (
	"fmt"

	"github.com/geordievannese/garuda-calculator/server/internal/config"
	logging "github.com/geordievannese/garuda-calculator/server/internal/logging"
	"github.com/geordievannese/garuda-calculator/server/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds the Postgres connection string.
func DSN(dbConf config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)
}

// Init connects to Postgres and migrates the prediction log.
func Init(log *zap.Logger, dbConf config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	db, err := gorm.Open(postgres.Open(DSN(dbConf)), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully.", zap.String("host", dbConf.Host), zap.String("dbname", dbConf.DBName))

	if err := runMigrations(db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func runMigrations(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(&models.PredictionLog{}); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	log.Info("Database migrations completed successfully.")

	// Dashboards read the log newest-first.
	idx := `CREATE INDEX IF NOT EXISTS idx_prediction_logs_created ON prediction_logs (created_at DESC);`
	if err := db.Exec(idx).Error; err != nil {
		return fmt.Errorf("failed to create index on prediction_logs: %w", err)
	}
	return nil
}
