package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	// Upsert inserts the department or, when (org, name) already exists,
	// increments its employee count by one. Returns the resulting row.
	Upsert(ctx context.Context, dept *Department) (*Department, error)
	FindByName(ctx context.Context, orgID snowflake.ID, name string) (*Department, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]Department, error)
}

type Service interface {
	// Ensure idempotently guarantees a department exists before an
	// employee attaches, incrementing its employee count.
	Ensure(ctx context.Context, orgID snowflake.ID, name string) (*Department, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]Department, error)
}
