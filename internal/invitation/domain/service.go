package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	tokendomain "github.com/smallbiznis/teamgate/internal/token/domain"
)

type Service interface {
	// Issue mints an invite token and dispatches the invite email. When
	// dispatch fails the token is deleted again and ErrDispatchFailed is
	// returned.
	Issue(ctx context.Context, req IssueRequest) (*PendingInvite, error)
	// Accept consumes the token, creates the account, conditionally
	// provisions department and employee records, and issues credentials.
	// Token consumption is not rolled back when a later step fails; a
	// burnt invite must be re-issued.
	Accept(ctx context.Context, req AcceptRequest) (*AcceptResult, error)
	// StateOf derives the invite lifecycle state for operators.
	StateOf(ctx context.Context, tokenValue string) (State, error)
	// ListPending lists unconsumed, unexpired invites for an organization.
	ListPending(ctx context.Context, orgID snowflake.ID) ([]tokendomain.Token, error)
}
