package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/zhpack/jobtrack/internal/models"
	"github.com/zhpack/jobtrack/internal/realtime"
	"github.com/zhpack/jobtrack/internal/repository"
)

// WorkItem is one work-view row decorated with the parent job's customer
// name, which the job_processes table does not carry.
type WorkItem struct {
	models.JobProcess
	CustomerName string `json:"customer_name"`
}

// CompleteRequest identifies the work items one completion action targets.
// MachineID narrows the match for machine-scoped stage views (printing).
type CompleteRequest struct {
	JobID     string `json:"job_id" binding:"required"`
	SubJobID  string `json:"sub_job_id" binding:"required"`
	ProcessID int    `json:"process_id" binding:"required"`
	MachineID string `json:"machine_id"`
}

// MachineGroup is the printing-jobs rendering: all work items of one machine.
type MachineGroup struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Jobs []MachineGroupJob `json:"jobs"`
}

// MachineGroupJob is one row inside a machine group.
type MachineGroupJob struct {
	ID       uuid.UUID               `json:"id"`
	JobID    string                  `json:"jobId"`
	SubJobID string                  `json:"subJobId"`
	Status   models.JobProcessStatus `json:"status"`
}

// WorkService backs the per-stage work views: listing a process's items,
// completing them, and undoing a completion from the reporting screens.
type WorkService struct {
	work     *repository.JobProcessRepository
	jobs     *repository.JobRepository
	machines *repository.MachineRepository
	feed     *realtime.Feed
	logger   *zap.Logger
}

// NewWorkService builds a service with dependencies.
func NewWorkService(
	work *repository.JobProcessRepository,
	jobs *repository.JobRepository,
	machines *repository.MachineRepository,
	feed *realtime.Feed,
	logger *zap.Logger,
) *WorkService {
	return &WorkService{work: work, jobs: jobs, machines: machines, feed: feed, logger: logger}
}

// List returns the work items of one process, newest first, optionally scoped
// to a machine, with customer names joined in via one batched lookup. A
// non-empty search term keeps only rows whose job id or customer name
// contains it, case-insensitively.
func (s *WorkService) List(ctx context.Context, processID int, machineID, search string) ([]WorkItem, error) {
	rows, err := s.work.ListByProcess(ctx, processID, machineID)
	if err != nil {
		return nil, err
	}
	items, err := s.decorate(ctx, rows)
	if err != nil {
		return nil, err
	}
	return filterWorkItems(items, search), nil
}

// Complete marks the matching work items completed on behalf of the acting
// employee. Completing an already-completed item is not guarded against: the
// latest completion wins and refreshes the stamp.
func (s *WorkService) Complete(ctx context.Context, req CompleteRequest, employeeCode string) ([]models.JobProcess, error) {
	if employeeCode == "" {
		return nil, errors.New("could not identify your employee code")
	}
	rows, err := s.work.Complete(ctx, req.JobID, req.SubJobID, req.ProcessID, req.MachineID, employeeCode)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.Errorf("no work item matches job %s sub-job %s", req.JobID, req.SubJobID)
	}
	for i := range rows {
		s.feed.JobProcessChanged(ctx, realtime.EventUpdated, &rows[i])
	}
	return rows, nil
}

// Undo resets one work item to pending and clears its employee code.
func (s *WorkService) Undo(ctx context.Context, id uuid.UUID) (*models.JobProcess, error) {
	row, err := s.work.Undo(ctx, id)
	if err != nil {
		return nil, err
	}
	s.feed.JobProcessChanged(ctx, realtime.EventUpdated, row)
	return row, nil
}

// PrintingJobs groups every work item by its assigned machine for the
// machine-load overview. Items whose machine no longer resolves fall into an
// "Unknown Machine" group.
func (s *WorkService) PrintingJobs(ctx context.Context) ([]MachineGroup, error) {
	rows, err := s.work.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0)
	seen := make(map[string]bool)
	for _, row := range rows {
		if row.MachineID != nil && !seen[*row.MachineID] {
			seen[*row.MachineID] = true
			ids = append(ids, *row.MachineID)
		}
	}
	names, err := s.machines.NamesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*MachineGroup)
	order := make([]string, 0)
	for _, row := range rows {
		machineID := ""
		if row.MachineID != nil {
			machineID = *row.MachineID
		}
		group, ok := groups[machineID]
		if !ok {
			name := names[machineID]
			if name == "" {
				name = "Unknown Machine"
			}
			group = &MachineGroup{ID: machineID, Name: name}
			groups[machineID] = group
			order = append(order, machineID)
		}
		group.Jobs = append(group.Jobs, MachineGroupJob{
			ID:       row.ID,
			JobID:    row.JobID,
			SubJobID: row.SubJobID,
			Status:   row.Status,
		})
	}

	out := make([]MachineGroup, 0, len(order))
	for _, id := range order {
		out = append(out, *groups[id])
	}
	return out, nil
}

func (s *WorkService) decorate(ctx context.Context, rows []models.JobProcess) ([]WorkItem, error) {
	ids := make([]string, 0)
	seen := make(map[string]bool)
	for _, row := range rows {
		if !seen[row.JobID] {
			seen[row.JobID] = true
			ids = append(ids, row.JobID)
		}
	}
	customers, err := s.jobs.CustomerNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]WorkItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, WorkItem{JobProcess: row, CustomerName: customers[row.JobID]})
	}
	return items, nil
}

func filterWorkItems(items []WorkItem, search string) []WorkItem {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return items
	}
	filtered := make([]WorkItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.JobID), term) ||
			strings.Contains(strings.ToLower(item.CustomerName), term) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
