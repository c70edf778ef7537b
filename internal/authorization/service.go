package authorization

import "context"

// Service answers whether an actor may perform an action on an object
// within an organization. Decisions are scoped per org via casbin
// domains so a role granted in one org carries nothing into another.
type Service interface {
	Authorize(ctx context.Context, actor string, orgID string, object string, action string) error
}
