package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamgate/pkg/db/pagination"
)

type Repository interface {
	Create(ctx context.Context, employee *Employee) error
	FindByEmployeeID(ctx context.Context, orgID snowflake.ID, employeeID string) (*Employee, error)
	FindByEmail(ctx context.Context, orgID snowflake.ID, email string) (*Employee, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]Employee, error)
	// List pages through the org's employees in id order.
	List(ctx context.Context, orgID snowflake.ID, p pagination.Pagination) ([]Employee, *pagination.PageInfo, error)
}
