package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/models"
)

// ProcessRepository reads the static process catalog.
type ProcessRepository struct {
	db *gorm.DB
}

// NewProcessRepository constructs a repository using the provided gorm DB.
func NewProcessRepository(db *gorm.DB) *ProcessRepository {
	return &ProcessRepository{db: db}
}

// List returns the whole catalog ordered by id.
func (r *ProcessRepository) List(ctx context.Context) ([]models.Process, error) {
	var processes []models.Process
	err := r.db.WithContext(ctx).Order("process_id").Find(&processes).Error
	return processes, errors.WithStack(err)
}

// FindByNames returns the catalog rows matching the given stage names.
func (r *ProcessRepository) FindByNames(ctx context.Context, names []string) ([]models.Process, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var processes []models.Process
	err := r.db.WithContext(ctx).Where("process_name IN ?", names).Find(&processes).Error
	return processes, errors.WithStack(err)
}

// NamesByID returns a process id to display name lookup for the whole catalog.
func (r *ProcessRepository) NamesByID(ctx context.Context) (map[int]string, error) {
	processes, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(processes))
	for _, p := range processes {
		names[p.ProcessID] = p.ProcessName
	}
	return names, nil
}
