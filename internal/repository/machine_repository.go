package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/models"
)

// MachineRepository provides persistence access for Machine entities.
type MachineRepository struct {
	db *gorm.DB
}

// NewMachineRepository constructs a repository using the provided gorm DB.
func NewMachineRepository(db *gorm.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

// Create persists the machine.
func (r *MachineRepository) Create(ctx context.Context, machine *models.Machine) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(machine).Error)
}

// Update persists the modified machine.
func (r *MachineRepository) Update(ctx context.Context, machine *models.Machine) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(machine).Error)
}

// Delete removes the machine by id.
func (r *MachineRepository) Delete(ctx context.Context, id string) error {
	return errors.WithStack(r.db.WithContext(ctx).Delete(&models.Machine{}, "id = ?", id).Error)
}

// FindByID returns the machine by id.
func (r *MachineRepository) FindByID(ctx context.Context, id string) (*models.Machine, error) {
	var machine models.Machine
	if err := r.db.WithContext(ctx).First(&machine, "id = ?", id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &machine, nil
}

// List returns all machines ordered by display name.
func (r *MachineRepository) List(ctx context.Context) ([]models.Machine, error) {
	var machines []models.Machine
	err := r.db.WithContext(ctx).Order("name").Find(&machines).Error
	return machines, errors.WithStack(err)
}

// NamesByID returns a machine id to display name lookup for the given ids.
func (r *MachineRepository) NamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var machines []models.Machine
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&machines).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	for _, m := range machines {
		names[m.ID] = m.Name
	}
	return names, nil
}
