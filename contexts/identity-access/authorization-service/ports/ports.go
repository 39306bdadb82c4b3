package ports

import (
	"context"
	"time"

	"keystone/contexts/identity-access/authorization-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// RouteRepository is the datastore contract for route-permission records.
// Find results come back with roles populated.
type RouteRepository interface {
	FindRouteByName(ctx context.Context, name string) (entities.Route, error)
	ListRoutes(ctx context.Context) ([]entities.Route, error)
	CreateRoute(ctx context.Context, route entities.Route) (entities.Route, error)
	UpdateRoute(ctx context.Context, route entities.Route) (entities.Route, error)
	DeleteRoute(ctx context.Context, routeID string) error
	AttachRole(ctx context.Context, routeID string, roleID string) error
}

// RoleRepository seeds and resolves the well-known role records.
type RoleRepository interface {
	FindRoleByName(ctx context.Context, name string) (entities.Role, error)
	CreateRole(ctx context.Context, role entities.Role) (entities.Role, error)
}

// ContributorSource resolves ownership relations on target collections.
type ContributorSource interface {
	// Contributors returns the user ids listed as contributors on one
	// entity of the collection.
	Contributors(ctx context.Context, collection string, entityID string) ([]string, error)
	// ContributedIDs returns the entity ids of the collection the user
	// contributes to. A user with no contributions gets an empty slice.
	ContributedIDs(ctx context.Context, collection string, userID string) ([]string, error)
}
