package articleservice

import (
	"log/slog"

	"keystone/contexts/content/article-service/adapters/memory"
	"keystone/contexts/content/article-service/application"
	"keystone/contexts/content/article-service/ports"
)

// Module is the composition surface for the article collection.
type Module struct {
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repo   ports.ArticleRepository
	Clock  ports.Clock
	IDs    ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Service: application.Service{
			Repo:   deps.Repo,
			Clock:  deps.Clock,
			IDs:    deps.IDs,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the service against the in-memory store. The
// store doubles as the contributor source for the authorization engine.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:   store,
		Clock:  store,
		IDs:    store,
		Logger: logger,
	})
	module.Store = store
	return module
}
