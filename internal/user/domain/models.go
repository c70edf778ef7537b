// Package domain contains core types for user accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is tenant-scoped. The owner role is assigned at organization
// bootstrap and never reassigned afterwards.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Valid reports whether the role is one an invite may carry.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEmployee:
		return true
	default:
		return false
	}
}

// User represents an authenticated principal. Email is unique across the
// whole system, not per tenant. Users are never hard-deleted, only
// deactivated.
type User struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	Email         string       `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash  *string      `gorm:"type:text"`
	FirstName     string       `gorm:"type:text;not null;default:''"`
	LastName      string       `gorm:"type:text;not null;default:''"`
	Role          Role         `gorm:"type:text;not null"`
	OrgID         snowflake.ID `gorm:"column:org_id;not null;index"`
	EmailVerified bool         `gorm:"not null;default:false"`
	Active        bool         `gorm:"not null;default:true"`
	LastLoginAt   *time.Time   `gorm:"column:last_login_at"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// View is the wire shape returned to clients, without the password hash.
type View struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Role          Role       `json:"role"`
	OrgID         string     `json:"organization_id"`
	EmailVerified bool       `json:"email_verified"`
	Active        bool       `json:"active"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToView strips credentials from a user record.
func (u *User) ToView() View {
	return View{
		ID:            u.ID.String(),
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		OrgID:         u.OrgID.String(),
		EmailVerified: u.EmailVerified,
		Active:        u.Active,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}
