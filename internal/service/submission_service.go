package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zhpack/jobtrack/internal/models"
	"github.com/zhpack/jobtrack/internal/realtime"
	"github.com/zhpack/jobtrack/internal/repository"
)

// ErrProfileNotFound is returned when the submitting identity has no profile
// row, so no employee code can be attached to the submission.
var ErrProfileNotFound = errors.New("user profile not found")

// SubJobRequest is one sub-job descriptor of a job-card submission.
type SubJobRequest struct {
	SubJobID     string           `json:"sub_job_id"`
	Color        string           `json:"color"`
	CardSize     string           `json:"card_size"`
	CardQuantity int              `json:"card_quantity"`
	ItemQuantity int              `json:"item_quantity"`
	Description  string           `json:"description"`
	Processes    map[string]bool  `json:"processes"`
	MachineID    MachineSelection `json:"machine_id"`
}

// SubmitJobRequest is the composite job-card submission the job form sends.
type SubmitJobRequest struct {
	UserUID      uuid.UUID       `json:"user_uid" binding:"required"`
	JobID        string          `json:"job_id" binding:"required"`
	CustomerName string          `json:"customer_name" binding:"required"`
	StartDate    string          `json:"start_date" binding:"required"`
	RequiredDate string          `json:"required_date" binding:"required"`
	SubJobs      []SubJobRequest `json:"sub_jobs"`
}

// SubmissionResult reports what one successful submission created.
type SubmissionResult struct {
	JobID          string    `json:"job_id"`
	JobCode        string    `json:"job_code"`
	SubJobsCount   int       `json:"sub_jobs_count"`
	ProcessesCount int       `json:"processes_count"`
	CreatedBy      uuid.UUID `json:"created_by"`
	EmployeeCode   string    `json:"employee_code"`
}

// SubmissionService turns one job-card submission into rows across the three
// job tables. The all-or-nothing intent is enforced by compensating deletes
// rather than a database transaction, matching the sequential insert order.
type SubmissionService struct {
	profiles  *repository.ProfileRepository
	jobs      *repository.JobRepository
	processes *repository.ProcessRepository
	work      *repository.JobProcessRepository
	feed      *realtime.Feed
	logger    *zap.Logger
}

// NewSubmissionService builds a service with dependencies.
func NewSubmissionService(
	profiles *repository.ProfileRepository,
	jobs *repository.JobRepository,
	processes *repository.ProcessRepository,
	work *repository.JobProcessRepository,
	feed *realtime.Feed,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		profiles:  profiles,
		jobs:      jobs,
		processes: processes,
		work:      work,
		feed:      feed,
		logger:    logger,
	}
}

// Submit runs the four-step fan-out insert: job card, sub-job cards, process
// lookup and machine resolution, then the work-item batch. Any failure after
// the job card exists rolls back everything written for this submission.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitJobRequest) (*SubmissionResult, error) {
	profile, err := s.profiles.FindByID(ctx, req.UserUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	card := &models.JobCard{
		JobID:        req.JobID,
		CustomerName: req.CustomerName,
		StartDate:    req.StartDate,
		RequiredDate: req.RequiredDate,
		CreatedBy:    profile.ID,
	}
	if err := s.jobs.CreateJobCard(ctx, card); err != nil {
		return nil, errors.Wrap(err, "create job card")
	}

	result := &SubmissionResult{
		JobID:        card.JobID,
		JobCode:      card.JobCode,
		CreatedBy:    profile.ID,
		EmployeeCode: profile.EmployeeCode,
	}
	if len(req.SubJobs) == 0 {
		return result, nil
	}

	subJobs := make([]models.SubJobCard, 0, len(req.SubJobs))
	for _, sub := range req.SubJobs {
		subJobs = append(subJobs, models.SubJobCard{
			JobID:        card.JobID,
			SubJobID:     sub.SubJobID,
			JobCode:      card.JobCode,
			Description:  sub.Description,
			Color:        sub.Color,
			CardSize:     sub.CardSize,
			CardQuantity: sub.CardQuantity,
			ItemQuantity: sub.ItemQuantity,
		})
	}
	if err := s.jobs.CreateSubJobCards(ctx, subJobs); err != nil {
		s.rollback(ctx, card.JobID, false)
		return nil, errors.Wrap(err, "create sub job cards")
	}
	result.SubJobsCount = len(subJobs)

	workItems := s.buildWorkItems(ctx, card.JobID, req.SubJobs)
	if err := s.work.CreateBatch(ctx, workItems); err != nil {
		s.rollback(ctx, card.JobID, true)
		return nil, errors.Wrap(err, "create job processes")
	}
	result.ProcessesCount = len(workItems)

	for i := range workItems {
		s.feed.JobProcessChanged(ctx, realtime.EventCreated, &workItems[i])
	}
	return result, nil
}

// buildWorkItems derives one pending work item per (sub-job, selected
// process). A catalog lookup failure for one sub-job is logged and skipped so
// that sub-job contributes zero work items; it does not fail the submission.
func (s *SubmissionService) buildWorkItems(ctx context.Context, jobID string, subJobs []SubJobRequest) []models.JobProcess {
	var items []models.JobProcess
	for _, sub := range subJobs {
		var selected []string
		for name, on := range sub.Processes {
			if on {
				selected = append(selected, name)
			}
		}
		if len(selected) == 0 {
			continue
		}

		catalog, err := s.processes.FindByNames(ctx, selected)
		if err != nil {
			s.logger.Error("process catalog lookup failed, skipping sub-job",
				zap.String("job_id", jobID),
				zap.String("sub_job_id", sub.SubJobID),
				zap.Error(err))
			continue
		}
		for _, process := range catalog {
			items = append(items, models.JobProcess{
				JobID:     jobID,
				SubJobID:  sub.SubJobID,
				ProcessID: process.ProcessID,
				MachineID: ResolveMachine(process.ProcessName, sub.MachineID, DefaultMachineMap),
				Status:    models.JobProcessPending,
			})
		}
	}
	return items
}

// rollback issues the compensating deletes for a failed submission: work
// items never exist at this point or were never written, so only the sub-job
// cards (when present) and the job card are removed, in that order.
func (s *SubmissionService) rollback(ctx context.Context, jobID string, subJobsInserted bool) {
	if subJobsInserted {
		if err := s.jobs.DeleteSubJobCards(ctx, jobID); err != nil {
			s.logger.Error("rollback sub job cards", zap.String("job_id", jobID), zap.Error(err))
		}
	}
	if err := s.jobs.DeleteJobCard(ctx, jobID); err != nil {
		s.logger.Error("rollback job card", zap.String("job_id", jobID), zap.Error(err))
	}
}
