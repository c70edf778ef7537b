// Package domain contains the invite orchestration types. An invite has no
// stored state field; its state is derived from the token record and user
// existence.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamgate/internal/credentials"
	tokendomain "github.com/smallbiznis/teamgate/internal/token/domain"
	userdomain "github.com/smallbiznis/teamgate/internal/user/domain"
)

// State is the derived lifecycle of an invite.
type State string

const (
	// StatePending: token exists, unconsumed, unexpired, no user with that
	// email.
	StatePending State = "pending"
	// StateExpired: token exists, unconsumed, expiry passed. Terminal; only
	// re-issuance creates a fresh pending invite.
	StateExpired State = "expired"
	// StateAccepted: token consumed and a user exists with that email.
	// Terminal.
	StateAccepted State = "accepted"
	// StateSuperseded: a user with that email already exists while the
	// token was never consumed.
	StateSuperseded State = "superseded"
)

// IssueRequest drives invite issuance. Employee, when set, defers an
// employee record until acceptance.
type IssueRequest struct {
	InviterID   snowflake.ID
	InviterName string
	OrgID       snowflake.ID
	OrgName     string
	Email       string
	Role        userdomain.Role
	FirstName   string
	LastName    string
	Employee    *tokendomain.EmployeeProvisioning
}

// PendingInvite summarizes a successful issuance for display.
type PendingInvite struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AcceptRequest drives invite acceptance.
type AcceptRequest struct {
	TokenValue string
	Password   string
	FirstName  string
	LastName   string
}

// AcceptResult is the created account plus session credentials.
type AcceptResult struct {
	User        userdomain.View   `json:"user"`
	Credentials *credentials.Pair `json:"tokens"`
}
