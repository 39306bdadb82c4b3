package queries

import (
	"context"

	"keystone/contexts/identity-access/identity-service/domain/entities"
	"keystone/contexts/identity-access/identity-service/ports"
)

// ListUsersQuery narrows results to the given ids when ScopeToIDs is set.
// The authorization pipeline supplies the scope for contributor-filtered
// list requests; the filter must be honored verbatim.
type ListUsersQuery struct {
	ScopeToIDs bool
	IDs        []string
}

type ListUsersUseCase struct {
	Users ports.UserRepository
}

func (u ListUsersUseCase) Execute(ctx context.Context, query ListUsersQuery) ([]entities.User, error) {
	filter := ports.UserFilter{}
	if query.ScopeToIDs {
		filter.IDs = query.IDs
		if filter.IDs == nil {
			filter.IDs = []string{}
		}
	}
	return u.Users.List(ctx, filter)
}
