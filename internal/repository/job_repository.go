package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/models"
)

// JobRepository covers the job_cards and sub_job_cards tables that together
// describe one customer order.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository constructs a repository using the provided gorm DB.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// CreateJobCard persists the job card header.
func (r *JobRepository) CreateJobCard(ctx context.Context, card *models.JobCard) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(card).Error)
}

// DeleteJobCard removes the job card, used by the submission rollback path.
func (r *JobRepository) DeleteJobCard(ctx context.Context, jobID string) error {
	return errors.WithStack(r.db.WithContext(ctx).Delete(&models.JobCard{}, "job_id = ?", jobID).Error)
}

// FindJobCard returns the job card by its client-chosen id.
func (r *JobRepository) FindJobCard(ctx context.Context, jobID string) (*models.JobCard, error) {
	var card models.JobCard
	if err := r.db.WithContext(ctx).First(&card, "job_id = ?", jobID).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &card, nil
}

// CustomerNames returns a job id to customer name lookup for the given jobs.
func (r *JobRepository) CustomerNames(ctx context.Context, jobIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(jobIDs))
	if len(jobIDs) == 0 {
		return names, nil
	}
	var cards []models.JobCard
	if err := r.db.WithContext(ctx).Where("job_id IN ?", jobIDs).Find(&cards).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	for _, c := range cards {
		names[c.JobID] = c.CustomerName
	}
	return names, nil
}

// CreateSubJobCards persists all sub-job cards of one submission in one batch.
func (r *JobRepository) CreateSubJobCards(ctx context.Context, cards []models.SubJobCard) error {
	if len(cards) == 0 {
		return nil
	}
	return errors.WithStack(r.db.WithContext(ctx).Create(&cards).Error)
}

// DeleteSubJobCards removes all sub-job cards of a job, used by rollback.
func (r *JobRepository) DeleteSubJobCards(ctx context.Context, jobID string) error {
	return errors.WithStack(r.db.WithContext(ctx).Delete(&models.SubJobCard{}, "job_id = ?", jobID).Error)
}

// ListSubJobCards returns the sub-job cards of one job.
func (r *JobRepository) ListSubJobCards(ctx context.Context, jobID string) ([]models.SubJobCard, error) {
	var cards []models.SubJobCard
	err := r.db.WithContext(ctx).Where("job_id = ?", jobID).Find(&cards).Error
	return cards, errors.WithStack(err)
}

// SubJobDescriptions returns a (job id, sub-job id) keyed description lookup
// across all jobs, for the reporting views.
func (r *JobRepository) SubJobDescriptions(ctx context.Context) (map[string]string, error) {
	var cards []models.SubJobCard
	if err := r.db.WithContext(ctx).Find(&cards).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	descriptions := make(map[string]string, len(cards))
	for _, c := range cards {
		descriptions[c.JobID+"-"+c.SubJobID] = c.Description
	}
	return descriptions, nil
}
