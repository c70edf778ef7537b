// Package domain contains the HR-facing employee record, distinct from the
// authentication-facing user account.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeExists   = errors.New("employee already exists")
)

// Status tracks employment state. There is no stored "invited" status: a
// pending hire is represented by an unconsumed invite token and the
// absence of an employee row.
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusTerminated Status = "terminated"
)

// Employee is unique per (org, employee number) and per (org, email).
type Employee struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID  `gorm:"column:org_id;not null;uniqueIndex:uq_employees_org_employee_id,priority:1;uniqueIndex:uq_employees_org_email,priority:1" json:"organization_id"`
	EmployeeID string        `gorm:"column:employee_id;type:text;not null;uniqueIndex:uq_employees_org_employee_id,priority:2" json:"employee_id"`
	Email      string        `gorm:"type:text;not null;uniqueIndex:uq_employees_org_email,priority:2" json:"email"`
	FirstName  string        `gorm:"type:text;not null;default:''" json:"first_name"`
	LastName   string        `gorm:"type:text;not null;default:''" json:"last_name"`
	Phone      string        `gorm:"type:text;not null;default:''" json:"phone,omitempty"`
	Department string        `gorm:"type:text;not null;default:''" json:"department"`
	Position   string        `gorm:"type:text;not null;default:''" json:"position,omitempty"`
	HireDate   *time.Time    `gorm:"column:hire_date" json:"hire_date,omitempty"`
	Salary     *float64      `gorm:"column:salary" json:"-"`
	Status     Status        `gorm:"type:text;not null;default:'active'" json:"status"`
	ManagerID  *snowflake.ID `gorm:"column:manager_id" json:"manager_id,omitempty"`
	UserID     *snowflake.ID `gorm:"column:user_id" json:"user_id,omitempty"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Employee) TableName() string { return "employees" }
