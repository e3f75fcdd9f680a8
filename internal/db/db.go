package db

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhpack/jobtrack/internal/models"
)

// New creates a new GORM database connection using the provided DSN.
func New(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)

	logger.Info("connected to database")
	return database, nil
}

// Migrate creates or updates every table the application owns.
func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.Profile{},
		&models.Machine{},
		&models.Process{},
		&models.JobCard{},
		&models.SubJobCard{},
		&models.JobProcess{},
	)
}
