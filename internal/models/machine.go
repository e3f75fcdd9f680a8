package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Machine is a production machine referenced by job processes.
type Machine struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:128" json:"name"`
	Size          string    `json:"size"`
	Capacity      *int      `json:"capacity"`
	AvailableDays *int      `json:"available_days"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not supply one. Seeded
// machines use short fixed ids that the default assignment table refers to.
func (m *Machine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// Process is static catalog data naming a production stage. Seeded out of
// band by cmd/seed and read-only afterwards.
type Process struct {
	ProcessID   int    `gorm:"primaryKey;autoIncrement;column:process_id" json:"process_id"`
	ProcessName string `gorm:"uniqueIndex;column:process_name;size:64" json:"process_name"`
}

// TableName keeps the catalog table name plural.
func (Process) TableName() string { return "processes" }
