package queries

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"keystone/contexts/identity-access/authorization-service/application"
	"keystone/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/authorization-service/domain/errors"
	"keystone/contexts/identity-access/authorization-service/ports"
)

// UserCollection is the collection name carrying user records. The
// ownership branch treats it specially: a caller may only touch their
// own record, never another user's, regardless of contributor links.
const UserCollection = "user"

type AuthorizeQuery struct {
	Caller entities.Caller
	// RouteName is the normalized "<lowercase-verb> <path>" request name.
	RouteName string
	// TargetCollection names the collection the route operates on, when
	// the route addresses one ("user", "article", ...). Empty for routes
	// with no resource semantics.
	TargetCollection string
	// TargetID is the specific entity addressed by the request, empty
	// for list and collection-level calls.
	TargetID string
}

// AuthorizeUseCase evaluates a request against the persisted route
// registry. The checks run in fixed precedence order and the first
// matching branch decides.
type AuthorizeUseCase struct {
	Routes       ports.RouteRepository
	Contributors ports.ContributorSource
	Logger       *slog.Logger
}

func (u AuthorizeUseCase) Execute(ctx context.Context, query AuthorizeQuery) (entities.Decision, error) {
	logger := application.ResolveLogger(u.Logger)

	route, err := u.Routes.FindRouteByName(ctx, strings.TrimSpace(query.RouteName))
	if err != nil {
		if errors.Is(err, domainerrors.ErrRouteNotFound) {
			return entities.Decision{}, domainerrors.ErrRouteNotFound
		}
		return entities.Decision{}, err
	}
	caller := query.Caller

	// Admin bypass is total: flags and grants are never consulted.
	if !caller.Anonymous() && caller.HasRole("admin") {
		return entities.Decision{}, nil
	}

	if route.IsPublic {
		return entities.Decision{}, nil
	}

	if caller.Anonymous() {
		return entities.Decision{}, domainerrors.ErrNotAuthenticated
	}

	if route.RegisteredAuthorized && !route.ContributorsAuthorized {
		return entities.Decision{}, nil
	}

	if route.ContributorsAuthorized {
		return u.decideOwnership(ctx, logger, caller, route, query)
	}

	for _, role := range caller.Roles {
		if route.HasRole(role) {
			return entities.Decision{}, nil
		}
	}
	return entities.Decision{}, domainerrors.ErrNotAuthorized
}

func (u AuthorizeUseCase) decideOwnership(
	ctx context.Context,
	logger *slog.Logger,
	caller entities.Caller,
	route entities.Route,
	query AuthorizeQuery,
) (entities.Decision, error) {
	switch {
	case query.TargetCollection == UserCollection && query.TargetID != "":
		if query.TargetID == caller.UserID {
			return entities.Decision{}, nil
		}
		return entities.Decision{}, domainerrors.ErrNotAuthorized

	case query.TargetID != "":
		contributors, err := u.Contributors.Contributors(ctx, query.TargetCollection, query.TargetID)
		if err != nil {
			return entities.Decision{}, err
		}
		for _, userID := range contributors {
			if userID == caller.UserID {
				return entities.Decision{}, nil
			}
		}
		return entities.Decision{}, domainerrors.ErrNotAuthorized

	case route.Verb == "get":
		// List calls are never denied outright; instead the result set
		// is narrowed to the caller's own entities.
		ids, err := u.Contributors.ContributedIDs(ctx, query.TargetCollection, caller.UserID)
		if err != nil {
			return entities.Decision{}, err
		}
		if ids == nil {
			ids = []string{}
		}
		logger.Debug("list scoped to contributed entities",
			"event", "authz_list_scoped",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"route", route.Name,
			"user_id", caller.UserID,
			"scoped_count", len(ids),
		)
		return entities.Decision{ScopeToContributed: true, ContributedIDs: ids}, nil

	default:
		return entities.Decision{}, domainerrors.ErrNotAuthorized
	}
}
