package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhpack/jobtrack/internal/models"
	"github.com/zhpack/jobtrack/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(
		&models.Profile{},
		&models.Machine{},
		&models.Process{},
		&models.JobCard{},
		&models.SubJobCard{},
		&models.JobProcess{},
	))
	return database
}

func seedCatalog(t *testing.T, database *gorm.DB, names ...string) map[string]int {
	t.Helper()
	ids := make(map[string]int, len(names))
	for _, name := range names {
		process := models.Process{ProcessName: name}
		require.NoError(t, database.Create(&process).Error)
		ids[name] = process.ProcessID
	}
	return ids
}

func seedProfile(t *testing.T, database *gorm.DB, code string, role models.Role, roles ...string) *models.Profile {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	profile := &models.Profile{
		FullName:     "Test " + code,
		EmployeeCode: code,
		Role:         role,
		Roles:        roles,
		PasswordHash: string(hash),
	}
	require.NoError(t, database.Create(profile).Error)
	return profile
}

func newSubmissionService(database *gorm.DB) *SubmissionService {
	return NewSubmissionService(
		repository.NewProfileRepository(database),
		repository.NewJobRepository(database),
		repository.NewProcessRepository(database),
		repository.NewJobProcessRepository(database),
		nil,
		zap.NewNop(),
	)
}

func newWorkService(database *gorm.DB) *WorkService {
	return NewWorkService(
		repository.NewJobProcessRepository(database),
		repository.NewJobRepository(database),
		repository.NewMachineRepository(database),
		nil,
		zap.NewNop(),
	)
}

func countRows(t *testing.T, database *gorm.DB, model any, jobID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, database.Model(model).Where("job_id = ?", jobID).Count(&count).Error)
	return count
}

func testContext() context.Context { return context.Background() }
