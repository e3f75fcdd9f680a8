package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/models"
)

// ProfileRepository provides persistence access for Profile entities.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs a repository using the provided gorm DB.
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create persists the profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(profile).Error)
}

// Update persists the modified profile.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(profile).Error)
}

// Delete removes the profile by id.
func (r *ProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.WithStack(r.db.WithContext(ctx).Delete(&models.Profile{}, "id = ?", id).Error)
}

// FindByID returns the profile by identity id.
func (r *ProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &profile, nil
}

// FindByEmployeeCode returns the profile holding the given login handle.
func (r *ProfileRepository) FindByEmployeeCode(ctx context.Context, code string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "employee_code = ?", code).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &profile, nil
}

// EmployeeCodeExists reports whether any profile already uses the code,
// excluding the given id when updating.
func (r *ProfileRepository) EmployeeCodeExists(ctx context.Context, code string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Profile{}).Where("employee_code = ?", code)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, errors.WithStack(err)
	}
	return count > 0, nil
}

// ListWorkers returns all non-admin profiles, newest first.
func (r *ProfileRepository) ListWorkers(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Where("role <> ?", models.RoleAdmin).
		Order("created_at desc").
		Find(&profiles).Error
	return profiles, errors.WithStack(err)
}
