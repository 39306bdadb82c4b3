package authorizationservice

import (
	"log/slog"

	"keystone/contexts/identity-access/authorization-service/adapters/memory"
	"keystone/contexts/identity-access/authorization-service/application/commands"
	"keystone/contexts/identity-access/authorization-service/application/queries"
	"keystone/contexts/identity-access/authorization-service/ports"
)

// Module is the composition surface for route permissions. SyncRoutes
// must complete before the HTTP listener starts consulting Authorize.
type Module struct {
	Authorize  queries.AuthorizeUseCase
	SyncRoutes *commands.SyncRoutesUseCase
	Store      *memory.Store
}

type Dependencies struct {
	Routes       ports.RouteRepository
	Roles        ports.RoleRepository
	Contributors ports.ContributorSource
	Clock        ports.Clock
	IDs          ports.IDGenerator
	Logger       *slog.Logger
}

// NewModule wires the authorization use-cases against explicit ports.
func NewModule(deps Dependencies) Module {
	return Module{
		Authorize: queries.AuthorizeUseCase{
			Routes:       deps.Routes,
			Contributors: deps.Contributors,
			Logger:       deps.Logger,
		},
		SyncRoutes: &commands.SyncRoutesUseCase{
			Routes: deps.Routes,
			Roles:  deps.Roles,
			Clock:  deps.Clock,
			IDs:    deps.IDs,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the use cases against the in-memory store.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Routes:       store,
		Roles:        store,
		Contributors: store,
		Clock:        store,
		IDs:          store,
		Logger:       logger,
	})
	module.Store = store
	return module
}
