package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobCard is one customer order. The job id is chosen by the submitting admin
// and must be unique; the job code is assigned server side on insert.
type JobCard struct {
	JobID        string    `gorm:"primaryKey;column:job_id;size:64" json:"job_id"`
	JobCode      string    `gorm:"column:job_code;size:32" json:"job_code"`
	CustomerName string    `json:"customer_name"`
	StartDate    string    `json:"start_date"`
	RequiredDate string    `json:"required_date"`
	CreatedBy    uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns the job code, standing in for the generated column the
// original datastore provided.
func (j *JobCard) BeforeCreate(tx *gorm.DB) error {
	if j.JobCode == "" {
		j.JobCode = "JC-" + strings.ToUpper(uuid.New().String()[:8])
	}
	return nil
}

// SubJobCard belongs to exactly one JobCard. The sub-job id is assigned by the
// submitting client as an incrementing counter and is unique within its parent.
type SubJobCard struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        string    `gorm:"column:job_id;size:64;uniqueIndex:idx_job_sub" json:"job_id"`
	SubJobID     string    `gorm:"column:sub_job_id;size:64;uniqueIndex:idx_job_sub" json:"sub_job_id"`
	JobCode      string    `gorm:"column:job_code;size:32" json:"job_code"`
	Description  string    `json:"description"`
	Color        string    `json:"color"`
	CardSize     string    `json:"card_size"`
	CardQuantity int       `json:"card_quantity"`
	ItemQuantity int       `json:"item_quantity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate populates the primary key.
func (s *SubJobCard) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// JobProcessStatus is the two-state life cycle of a work item.
type JobProcessStatus string

const (
	JobProcessPending   JobProcessStatus = "pending"
	JobProcessCompleted JobProcessStatus = "completed"
)

// JobProcess is the unit of work a floor worker acts on: one selected process
// on one sub-job, optionally pinned to a machine. The employee code is empty
// while pending and stamped by whoever completes the item.
type JobProcess struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        string           `gorm:"column:job_id;size:64;index" json:"job_id"`
	SubJobID     string           `gorm:"column:sub_job_id;size:64" json:"sub_job_id"`
	ProcessID    int              `gorm:"column:process_id;index" json:"process_id"`
	MachineID    *string          `gorm:"column:machine_id;size:64;index" json:"machine_id"`
	Status       JobProcessStatus `gorm:"size:16;index" json:"status"`
	EmployeeCode *string          `gorm:"column:employee_code;size:64" json:"employee_code"`
	AssignedTo   *string          `gorm:"column:assigned_to;size:64" json:"assigned_to"`
	StartTime    *time.Time       `json:"start_time"`
	EndTime      *time.Time       `json:"end_time"`
	Notes        *string          `json:"notes"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// BeforeCreate populates the primary key and the pending status.
func (p *JobProcess) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = JobProcessPending
	}
	return nil
}
