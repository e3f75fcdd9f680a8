package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/models"
)

// JobProcessRepository provides persistence access for the per-process work
// items floor workers act on.
type JobProcessRepository struct {
	db *gorm.DB
}

// NewJobProcessRepository constructs a repository using the provided gorm DB.
func NewJobProcessRepository(db *gorm.DB) *JobProcessRepository {
	return &JobProcessRepository{db: db}
}

// CreateBatch persists all work items of one submission in one batch.
func (r *JobProcessRepository) CreateBatch(ctx context.Context, rows []models.JobProcess) error {
	if len(rows) == 0 {
		return nil
	}
	return errors.WithStack(r.db.WithContext(ctx).Create(&rows).Error)
}

// DeleteByJob removes all work items of a job, used by rollback.
func (r *JobProcessRepository) DeleteByJob(ctx context.Context, jobID string) error {
	return errors.WithStack(r.db.WithContext(ctx).Delete(&models.JobProcess{}, "job_id = ?", jobID).Error)
}

// FindByID returns the work item by record id.
func (r *JobProcessRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.JobProcess, error) {
	var row models.JobProcess
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &row, nil
}

// ListByProcess returns all work items for one process, newest first,
// optionally scoped to one machine.
func (r *JobProcessRepository) ListByProcess(ctx context.Context, processID int, machineID string) ([]models.JobProcess, error) {
	q := r.db.WithContext(ctx).Where("process_id = ?", processID)
	if machineID != "" {
		q = q.Where("machine_id = ?", machineID)
	}
	var rows []models.JobProcess
	err := q.Order("created_at desc").Find(&rows).Error
	return rows, errors.WithStack(err)
}

// ListAll returns every work item across all processes ordered by last update,
// for the reporting views.
func (r *JobProcessRepository) ListAll(ctx context.Context) ([]models.JobProcess, error) {
	var rows []models.JobProcess
	err := r.db.WithContext(ctx).Order("updated_at desc").Find(&rows).Error
	return rows, errors.WithStack(err)
}

// Complete flips the matching work items to completed and stamps the acting
// employee code. The machine scope applies only when machineID is non-empty.
// The matched rows are returned post-update so callers can publish them.
func (r *JobProcessRepository) Complete(ctx context.Context, jobID, subJobID string, processID int, machineID, employeeCode string) ([]models.JobProcess, error) {
	now := time.Now().UTC()
	q := r.db.WithContext(ctx).Model(&models.JobProcess{}).
		Where("job_id = ? AND sub_job_id = ? AND process_id = ?", jobID, subJobID, processID)
	if machineID != "" {
		q = q.Where("machine_id = ?", machineID)
	}
	updates := map[string]any{
		"status":        models.JobProcessCompleted,
		"employee_code": employeeCode,
		"updated_at":    now,
	}
	if err := q.Updates(updates).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return r.findMatching(ctx, jobID, subJobID, processID, machineID)
}

// Undo resets the work item to pending and clears the stored employee code.
func (r *JobProcessRepository) Undo(ctx context.Context, id uuid.UUID) (*models.JobProcess, error) {
	updates := map[string]any{
		"status":        models.JobProcessPending,
		"employee_code": nil,
		"updated_at":    time.Now().UTC(),
	}
	res := r.db.WithContext(ctx).Model(&models.JobProcess{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errors.WithStack(gorm.ErrRecordNotFound)
	}
	return r.FindByID(ctx, id)
}

func (r *JobProcessRepository) findMatching(ctx context.Context, jobID, subJobID string, processID int, machineID string) ([]models.JobProcess, error) {
	q := r.db.WithContext(ctx).
		Where("job_id = ? AND sub_job_id = ? AND process_id = ?", jobID, subJobID, processID)
	if machineID != "" {
		q = q.Where("machine_id = ?", machineID)
	}
	var rows []models.JobProcess
	err := q.Find(&rows).Error
	return rows, errors.WithStack(err)
}
