package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// CreateRequest describes an account to create. EmailVerified is true on
// the invite-acceptance path because trust transfers from the invite
// channel.
type CreateRequest struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	Role          Role
	OrgID         snowflake.ID
	EmailVerified bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	// Authenticate verifies the password and records the login time.
	// Lookup miss and bad password collapse into ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*User, error)
	VerifyEmail(ctx context.Context, id snowflake.ID) error
	ResetPassword(ctx context.Context, id snowflake.ID, password string) error
	Deactivate(ctx context.Context, id snowflake.ID) error
}
