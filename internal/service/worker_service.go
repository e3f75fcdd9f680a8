package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/models"
	"github.com/zhpack/jobtrack/internal/repository"
)

const minPasswordLength = 6

// Worker CRUD validation errors surfaced verbatim to the admin dashboard.
var (
	ErrEmployeeCodeTaken = errors.New("employee code already exists")
	ErrNoRolesSelected   = errors.New("at least one role must be selected")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters")
	ErrWorkerNotFound    = errors.New("worker not found")
)

// CreateWorkerRequest is the admin create form payload.
type CreateWorkerRequest struct {
	FullName     string   `json:"full_name" binding:"required"`
	EmployeeCode string   `json:"employee_code" binding:"required"`
	Roles        []string `json:"roles"`
	Password     string   `json:"password" binding:"required"`
}

// UpdateWorkerRequest is the admin edit form payload. Password is optional
// and re-hashed only when supplied.
type UpdateWorkerRequest struct {
	ID           uuid.UUID `json:"id" binding:"required"`
	FullName     string    `json:"full_name" binding:"required"`
	EmployeeCode string    `json:"employee_code" binding:"required"`
	Roles        []string  `json:"roles"`
	Password     string    `json:"password"`
}

// WorkerService implements the admin worker-profile CRUD.
type WorkerService struct {
	profiles *repository.ProfileRepository
	auth     *AuthService
}

// NewWorkerService builds a service with dependencies.
func NewWorkerService(profiles *repository.ProfileRepository, auth *AuthService) *WorkerService {
	return &WorkerService{profiles: profiles, auth: auth}
}

// List returns all worker profiles, newest first.
func (s *WorkerService) List(ctx context.Context) ([]models.Profile, error) {
	return s.profiles.ListWorkers(ctx)
}

// Create validates and persists a new worker profile with a hashed password.
func (s *WorkerService) Create(ctx context.Context, req CreateWorkerRequest) (*models.Profile, error) {
	if len(req.Roles) == 0 {
		return nil, ErrNoRolesSelected
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	taken, err := s.profiles.EmployeeCodeExists(ctx, req.EmployeeCode, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmployeeCodeTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	profile := &models.Profile{
		FullName:     req.FullName,
		EmployeeCode: req.EmployeeCode,
		Role:         models.RoleWorker,
		Roles:        req.Roles,
		PasswordHash: string(hash),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Update validates and persists changes to a worker profile.
func (s *WorkerService) Update(ctx context.Context, req UpdateWorkerRequest) (*models.Profile, error) {
	if len(req.Roles) == 0 {
		return nil, ErrNoRolesSelected
	}
	profile, err := s.profiles.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	taken, err := s.profiles.EmployeeCodeExists(ctx, req.EmployeeCode, req.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmployeeCodeTaken
	}

	profile.FullName = req.FullName
	profile.EmployeeCode = req.EmployeeCode
	profile.Roles = req.Roles
	if req.Password != "" {
		if len(req.Password) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		profile.PasswordHash = string(hash)
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	s.auth.InvalidateEmployeeCode(ctx, profile.ID)
	return profile, nil
}

// Delete removes a worker profile.
func (s *WorkerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.profiles.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkerNotFound
		}
		return err
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	s.auth.InvalidateEmployeeCode(ctx, id)
	return nil
}
