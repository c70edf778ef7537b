package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// IssueRequest describes a token to mint. Payload is only honored for
// invite-kind tokens.
type IssueRequest struct {
	Kind    Kind
	TTL     time.Duration
	Email   string
	Role    string
	OrgID   *snowflake.ID
	Payload *EmployeeProvisioning
}

type Service interface {
	Issue(ctx context.Context, req IssueRequest) (*Token, error)
	// ValidateAndConsume marks the token consumed and returns it. The
	// consumption is atomic: under concurrent calls with the same value
	// exactly one succeeds.
	ValidateAndConsume(ctx context.Context, value string, kind Kind) (*Token, error)
	// Delete removes a token outright. Used as compensation when invite
	// notification dispatch fails after the token was persisted.
	Delete(ctx context.Context, value string) error
	// Find returns the token without consuming it. Lookup miss maps to
	// ErrInvalidOrExpired.
	Find(ctx context.Context, value string) (*Token, error)
	ListPending(ctx context.Context, orgID snowflake.ID, kind Kind) ([]Token, error)
}
