package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zhpack/jobtrack/internal/models"
	"github.com/zhpack/jobtrack/internal/repository"
)

// Report filter tabs.
const (
	FilterAll       = "all"
	FilterPending   = "pending"
	FilterCompleted = "completed"
)

// ReportRow is one work item joined in memory with catalog and job data.
type ReportRow struct {
	ID           uuid.UUID               `json:"id"`
	JobID        string                  `json:"job_id"`
	SubJobID     string                  `json:"sub_job_id"`
	ProcessID    int                     `json:"process_id"`
	ProcessName  string                  `json:"process_name"`
	Status       models.JobProcessStatus `json:"status"`
	EmployeeCode string                  `json:"employee_code"`
	UpdatedAt    string                  `json:"updated_at"`
	CompletedBy  string                  `json:"completed_by"`
}

// ReportGroup aggregates one sub-job's work items with a completion ratio,
// backing both the compact strip and the expandable detailed rendering.
type ReportGroup struct {
	JobID        string      `json:"job_id"`
	SubJobID     string      `json:"sub_job_id"`
	CustomerName string      `json:"customer_name"`
	Description  string      `json:"description"`
	Completed    int         `json:"completed"`
	Total        int         `json:"total"`
	Processes    []ReportRow `json:"processes"`
}

// Report is the full response of the reporting view.
type Report struct {
	Rows   []ReportRow   `json:"rows"`
	Groups []ReportGroup `json:"groups"`
}

// ReportService aggregates all work items across all processes for the
// read-only reporting view.
type ReportService struct {
	work      *repository.JobProcessRepository
	jobs      *repository.JobRepository
	processes *repository.ProcessRepository
}

// NewReportService builds a service with dependencies.
func NewReportService(
	work *repository.JobProcessRepository,
	jobs *repository.JobRepository,
	processes *repository.ProcessRepository,
) *ReportService {
	return &ReportService{work: work, jobs: jobs, processes: processes}
}

// Build reads every work item, joins customer names, sub-job descriptions and
// process display names, then applies search and the group-level status
// filter. Search runs before the status filter. A group passes "completed"
// only when every member is completed, and "pending" only when every member
// is pending; a mixed group appears under neither.
func (s *ReportService) Build(ctx context.Context, status, search string) (*Report, error) {
	rows, err := s.work.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	jobIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, row := range rows {
		if !seen[row.JobID] {
			seen[row.JobID] = true
			jobIDs = append(jobIDs, row.JobID)
		}
	}
	customers, err := s.jobs.CustomerNames(ctx, jobIDs)
	if err != nil {
		return nil, err
	}
	descriptions, err := s.jobs.SubJobDescriptions(ctx)
	if err != nil {
		return nil, err
	}
	processNames, err := s.processes.NamesByID(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Rows: []ReportRow{}, Groups: []ReportGroup{}}
	groupIndex := make(map[string]int)
	term := strings.ToLower(strings.TrimSpace(search))

	for _, row := range rows {
		customer := customers[row.JobID]
		if term != "" &&
			!strings.Contains(strings.ToLower(row.JobID), term) &&
			!strings.Contains(strings.ToLower(customer), term) {
			continue
		}

		mapped := mapReportRow(row, processNames)
		report.Rows = append(report.Rows, mapped)

		key := row.JobID + "_" + row.SubJobID
		idx, ok := groupIndex[key]
		if !ok {
			report.Groups = append(report.Groups, ReportGroup{
				JobID:        row.JobID,
				SubJobID:     row.SubJobID,
				CustomerName: customer,
				Description:  descriptions[row.JobID+"-"+row.SubJobID],
			})
			idx = len(report.Groups) - 1
			groupIndex[key] = idx
		}
		group := &report.Groups[idx]
		group.Processes = append(group.Processes, mapped)
		group.Total++
		if row.Status == models.JobProcessCompleted {
			group.Completed++
		}
	}

	if status != "" && status != FilterAll {
		filtered := report.Groups[:0]
		for _, group := range report.Groups {
			if groupMatchesStatus(group, status) {
				filtered = append(filtered, group)
			}
		}
		report.Groups = filtered
	}
	return report, nil
}

func groupMatchesStatus(group ReportGroup, status string) bool {
	switch status {
	case FilterCompleted:
		return group.Completed == group.Total
	case FilterPending:
		return group.Completed == 0
	default:
		return true
	}
}

func mapReportRow(row models.JobProcess, processNames map[int]string) ReportRow {
	name := processNames[row.ProcessID]
	if name == "" {
		name = fmt.Sprintf("Process %d", row.ProcessID)
	}
	mapped := ReportRow{
		ID:          row.ID,
		JobID:       row.JobID,
		SubJobID:    row.SubJobID,
		ProcessID:   row.ProcessID,
		ProcessName: name,
		Status:      row.Status,
		UpdatedAt:   row.UpdatedAt.Format("2006-01-02 15:04:05"),
		CompletedBy: "Not completed",
	}
	if row.EmployeeCode != nil {
		mapped.EmployeeCode = *row.EmployeeCode
	}
	if row.Status == models.JobProcessCompleted && mapped.EmployeeCode != "" {
		mapped.CompletedBy = fmt.Sprintf("%s (%s)", mapped.EmployeeCode, mapped.UpdatedAt)
	}
	return mapped
}
