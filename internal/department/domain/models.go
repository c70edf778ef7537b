// Package domain contains core types for organizational units.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrDepartmentNotFound = errors.New("department not found")

// Department is a named organizational unit, unique per (org, name).
// EmployeeCount is denormalized: the provisioning path increments it
// optimistically and does not reconcile drift.
type Department struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID  `gorm:"column:org_id;not null;uniqueIndex:uq_departments_org_name,priority:1" json:"organization_id"`
	Name          string        `gorm:"type:text;not null;uniqueIndex:uq_departments_org_name,priority:2" json:"name"`
	ManagerID     *snowflake.ID `gorm:"column:manager_id" json:"manager_id,omitempty"`
	EmployeeCount int64         `gorm:"not null;default:0" json:"employee_count"`
	Active        bool          `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Department) TableName() string { return "departments" }
