package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Role is the primary role of a profile.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

// CapabilityRoles is the fixed vocabulary of capability tags a worker may hold.
var CapabilityRoles = []string{
	"printing", "pasting", "lamination", "prepress", "plates",
	"card_cutting", "sorting", "varnish", "joint", "die_cutting",
	"foil", "screen_printing", "embose", "double_tape", "machineinfo",
}

// RoleList stores a set of capability tags as a JSON array column so the same
// model works on Postgres and SQLite.
type RoleList []string

// Value implements driver.Valuer.
func (r RoleList) Value() (driver.Value, error) {
	if r == nil {
		r = RoleList{}
	}
	b, err := json.Marshal(r)
	return string(b), errors.WithStack(err)
}

// Scan implements sql.Scanner.
func (r *RoleList) Scan(src any) error {
	if src == nil {
		*r = RoleList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return errors.WithStack(json.Unmarshal(v, r))
	case string:
		return errors.WithStack(json.Unmarshal([]byte(v), r))
	default:
		return errors.Errorf("unsupported roles column type %T", src)
	}
}

// Contains reports whether the list holds the given capability tag.
func (r RoleList) Contains(role string) bool {
	for _, v := range r {
		if v == role {
			return true
		}
	}
	return false
}

// Profile maps an authenticated identity to an employee code, a primary role
// and the capability roles that gate per-stage pages.
type Profile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName     string    `json:"full_name"`
	EmployeeCode string    `gorm:"uniqueIndex;size:64" json:"employee_code"`
	Role         Role      `gorm:"size:16" json:"role"`
	Roles        RoleList  `gorm:"type:text" json:"roles"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate is a GORM hook that populates the primary key and defaults.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Role == "" {
		p.Role = RoleWorker
	}
	return nil
}

// IsAdmin reports whether the primary role bypasses capability gating.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// HasCapability reports whether the profile may access a page gated by the
// given capability tag. Admin bypasses all gating.
func (p *Profile) HasCapability(role string) bool {
	return p.IsAdmin() || p.Roles.Contains(role)
}
