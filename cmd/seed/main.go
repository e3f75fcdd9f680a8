package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/config"
	"github.com/zhpack/jobtrack/internal/db"
	"github.com/zhpack/jobtrack/internal/logger"
	"github.com/zhpack/jobtrack/internal/models"
)

// processCatalog is the fixed set of production stage names, in seeding
// order. Process ids are assigned serially from this order.
var processCatalog = []string{
	"Pre_Press",
	"Plates",
	"Printing",
	"Card_Cutting",
	"Pasting",
	"Sorting",
	"Joint",
	"Die_Cutting",
	"Foil",
	"Screen_Printing",
	"Embose",
	"Double_Tape",
	"Varnish: Shine",
	"Varnish: Matte",
	"Lamination: Matte",
	"Lamination: Shine",
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	database, err := db.New(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}
	if err := db.Migrate(database); err != nil {
		zlog.Fatal("auto migrate", zap.Error(err))
	}

	ctx := context.Background()
	if err := seedProcesses(ctx, database); err != nil {
		zlog.Fatal("seed processes", zap.Error(err))
	}
	if err := seedDefaultMachine(ctx, database, cfg.DefaultMachine); err != nil {
		zlog.Fatal("seed default machine", zap.Error(err))
	}
	if err := seedAdmin(ctx, database, cfg.SeedAdminCode, cfg.SeedAdminPass); err != nil {
		zlog.Fatal("seed admin", zap.Error(err))
	}
	zlog.Info("seeding complete")
}

func seedProcesses(ctx context.Context, database *gorm.DB) error {
	for _, name := range processCatalog {
		var existing models.Process
		err := database.WithContext(ctx).First(&existing, "process_name = ?", name).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := database.WithContext(ctx).Create(&models.Process{ProcessName: name}).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedDefaultMachine(ctx context.Context, database *gorm.DB, id string) error {
	var existing models.Machine
	err := database.WithContext(ctx).First(&existing, "id = ?", id).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	capacity := 1000
	days := 6
	return database.WithContext(ctx).Create(&models.Machine{
		ID:            id,
		Name:          "Main Press",
		Size:          "standard",
		Capacity:      &capacity,
		AvailableDays: &days,
		Description:   "house default machine",
	}).Error
}

func seedAdmin(ctx context.Context, database *gorm.DB, code, password string) error {
	var existing models.Profile
	err := database.WithContext(ctx).First(&existing, "employee_code = ?", code).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return database.WithContext(ctx).Create(&models.Profile{
		FullName:     "Administrator",
		EmployeeCode: code,
		Role:         models.RoleAdmin,
		Roles:        models.RoleList{},
		PasswordHash: string(hash),
	}).Error
}
