// Package domain contains core types for single-use capability tokens.
package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Kind partitions tokens by the action they authorize.
type Kind string

const (
	KindEmailVerification Kind = "email_verification"
	KindPasswordReset     Kind = "password_reset"
	KindInvite            Kind = "invite"
)

// Standard TTLs used by callers.
const (
	EmailVerificationTTL = 24 * time.Hour
	PasswordResetTTL     = time.Hour
	InviteTTL            = 7 * 24 * time.Hour
)

// Token represents a single-use capability grant. A consumed or expired
// token never authorizes an action.
type Token struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	Value     string         `gorm:"type:text;not null;uniqueIndex"`
	Kind      Kind           `gorm:"type:text;not null;index:idx_tokens_email_kind,priority:2"`
	Email     string         `gorm:"type:text;not null;default:'';index:idx_tokens_email_kind,priority:1"`
	Role      string         `gorm:"type:text;not null;default:''"`
	OrgID     *snowflake.ID  `gorm:"column:org_id"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	Consumed  bool           `gorm:"not null;default:false"`
	ExpiresAt time.Time      `gorm:"not null;index"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Token) TableName() string { return "tokens" }

// EmployeeProvisioning carries the pending employee record embedded in an
// invite token. It is only present on invite-kind tokens minted through the
// HRM flow.
type EmployeeProvisioning struct {
	EmployeeID       string   `json:"employee_id"`
	Department       string   `json:"department"`
	Position         string   `json:"position"`
	HireDate         string   `json:"hire_date"`
	Phone            string   `json:"phone,omitempty"`
	Salary           *float64 `json:"salary,omitempty"`
	ManagerID        *int64   `json:"manager_id,omitempty"`
	Address          string   `json:"address,omitempty"`
	EmergencyContact string   `json:"emergency_contact,omitempty"`
}

// MarshalPayload encodes an employee-provisioning payload for storage.
func MarshalPayload(p *EmployeeProvisioning) (datatypes.JSON, error) {
	if p == nil {
		return nil, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// EmployeePayload decodes the employee-provisioning payload, returning nil
// when the token carries none.
func (t *Token) EmployeePayload() (*EmployeeProvisioning, error) {
	if len(t.Payload) == 0 {
		return nil, nil
	}
	var p EmployeeProvisioning
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Expired reports whether the token's expiry has passed at the given time.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
