package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"keystone/contexts/identity-access/authorization-service/application"
	"keystone/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/authorization-service/domain/errors"
	"keystone/contexts/identity-access/authorization-service/ports"
)

// DeclaredRoute is one configured route target keyed by its normalized
// "<lowercase-verb> <path>" name.
type DeclaredRoute struct {
	Controller string
	Action     string
	Policies   []string
}

type SyncRoutesCommand struct {
	Declared map[string]DeclaredRoute
}

type SyncReport struct {
	Created []string
	Updated int
	Deleted int
}

const (
	adminPathPrefix = "/admin"
	authPathPrefix  = "/auth"
	userPathPrefix  = "/user"
)

// Roles seeded before the first reconciliation pass. Exactly one role
// carries the admin name; the rest back the fallback grant check.
var seedRoleNames = []string{"admin", "registered", "contributor", "public"}

var (
	ownerMutatingVerbs = map[string]bool{"put": true, "delete": true}
	selfServiceVerbs   = map[string]bool{"put": true, "delete": true}
)

// SyncRoutesUseCase reconciles persisted route records against the
// declared configuration. It runs before the server accepts traffic and
// is single-flight: concurrent calls collapse into one pass.
type SyncRoutesUseCase struct {
	Routes ports.RouteRepository
	Roles  ports.RoleRepository
	Clock  ports.Clock
	IDs    ports.IDGenerator
	Logger *slog.Logger

	flight singleflight.Group
}

func (u *SyncRoutesUseCase) Execute(ctx context.Context, cmd SyncRoutesCommand) (SyncReport, error) {
	result, err, _ := u.flight.Do("sync-routes", func() (any, error) {
		return u.reconcile(ctx, cmd.Declared)
	})
	if err != nil {
		return SyncReport{}, err
	}
	return result.(SyncReport), nil
}

func (u *SyncRoutesUseCase) reconcile(ctx context.Context, declared map[string]DeclaredRoute) (SyncReport, error) {
	logger := application.ResolveLogger(u.Logger)

	roles, err := u.seedRoles(ctx)
	if err != nil {
		return SyncReport{}, err
	}

	persisted, err := u.Routes.ListRoutes(ctx)
	if err != nil {
		return SyncReport{}, err
	}
	byName := make(map[string]entities.Route, len(persisted))
	for _, route := range persisted {
		byName[route.Name] = route
	}

	report := SyncReport{}

	// Deletion pass: drop records no longer declared.
	for name, route := range byName {
		if _, ok := declared[name]; ok {
			continue
		}
		if err := u.Routes.DeleteRoute(ctx, route.RouteID); err != nil {
			return SyncReport{}, err
		}
		delete(byName, name)
		report.Deleted++
	}

	// Upsert pass: refresh controller/action/verb, create the missing.
	for name, target := range declared {
		verb, _ := splitRouteName(name)
		if existing, ok := byName[name]; ok {
			existing.Controller = target.Controller
			existing.Action = target.Action
			existing.Verb = verb
			if _, err := u.Routes.UpdateRoute(ctx, existing); err != nil {
				return SyncReport{}, err
			}
			report.Updated++
			continue
		}

		routeID, err := u.IDs.NewID(ctx)
		if err != nil {
			return SyncReport{}, err
		}
		created, err := u.Routes.CreateRoute(ctx, entities.Route{
			RouteID:    routeID,
			Name:       name,
			Controller: target.Controller,
			Action:     target.Action,
			Verb:       verb,
		})
		if err != nil {
			return SyncReport{}, err
		}
		byName[name] = created
		report.Created = append(report.Created, name)
	}

	// Default-permission pass: only routes created this run receive
	// flags, keeping re-runs convergent on an unchanged configuration.
	for _, name := range report.Created {
		route := byName[name]
		verb, path := splitRouteName(name)
		if strings.HasPrefix(path, adminPathPrefix) {
			continue
		}

		applyDefaultFlags(&route, verb, path)
		if _, err := u.Routes.UpdateRoute(ctx, route); err != nil {
			return SyncReport{}, err
		}
		// Admin access is attached explicitly as a safety net even
		// though the engine's bypass never reads it.
		if err := u.Routes.AttachRole(ctx, route.RouteID, roles["admin"].RoleID); err != nil {
			return SyncReport{}, err
		}
	}

	logger.Info("route registry synchronized",
		"event", "authz_routes_synced",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"created", len(report.Created),
		"updated", report.Updated,
		"deleted", report.Deleted,
	)
	return report, nil
}

func (u *SyncRoutesUseCase) seedRoles(ctx context.Context) (map[string]entities.Role, error) {
	roles := make(map[string]entities.Role, len(seedRoleNames))
	for _, name := range seedRoleNames {
		role, err := u.Roles.FindRoleByName(ctx, name)
		if errors.Is(err, domainerrors.ErrRoleNotFound) {
			roleID, idErr := u.IDs.NewID(ctx)
			if idErr != nil {
				return nil, idErr
			}
			role, err = u.Roles.CreateRole(ctx, entities.Role{RoleID: roleID, Name: name})
		}
		if err != nil {
			return nil, err
		}
		roles[name] = role
	}
	return roles, nil
}

func applyDefaultFlags(route *entities.Route, verb string, path string) {
	switch {
	case strings.HasPrefix(path, authPathPrefix):
		route.IsPublic = true
	case verb == "get":
		route.IsPublic = true
		route.RegisteredAuthorized = true
		route.ContributorsAuthorized = true
	case strings.HasPrefix(path, userPathPrefix) && ownerMutatingVerbs[verb]:
		route.ContributorsAuthorized = true
		if selfServiceVerbs[verb] {
			route.RegisteredAuthorized = true
		}
	default:
		route.ContributorsAuthorized = true
	}
}

func splitRouteName(name string) (verb string, path string) {
	verb, path, _ = strings.Cut(strings.TrimSpace(name), " ")
	return strings.ToLower(verb), path
}
