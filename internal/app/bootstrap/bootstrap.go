package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	articleservice "keystone/contexts/content/article-service"
	articlepostgres "keystone/contexts/content/article-service/adapters/postgres"
	authorizationservice "keystone/contexts/identity-access/authorization-service"
	authzmemory "keystone/contexts/identity-access/authorization-service/adapters/memory"
	authzpostgres "keystone/contexts/identity-access/authorization-service/adapters/postgres"
	"keystone/contexts/identity-access/authorization-service/application/commands"
	identityservice "keystone/contexts/identity-access/identity-service"
	identityevents "keystone/contexts/identity-access/identity-service/adapters/events"
	"keystone/contexts/identity-access/identity-service/adapters/mail"
	identitymemory "keystone/contexts/identity-access/identity-service/adapters/memory"
	identitypostgres "keystone/contexts/identity-access/identity-service/adapters/postgres"
	identityports "keystone/contexts/identity-access/identity-service/ports"
	tokenapp "keystone/contexts/identity-access/token-service/application"
	"keystone/internal/platform/config"
	"keystone/internal/platform/db"
	"keystone/internal/platform/httpserver"
	"keystone/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

// BuildAPI wires the modules against Postgres when POSTGRES_DSN is set,
// and against the in-memory adapters otherwise. The route registry is
// reconciled before the listener is returned; a failed sync aborts the
// boot rather than serving with stale route records.
func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	bus := messaging.NewBus(logger)
	mailer := mail.NewLogMailer(logger)
	publisher := identityevents.NewPublisher(bus, logger)

	var (
		pg       *db.Postgres
		identity identityservice.Module
		authz    authorizationservice.Module
		articles articleservice.Module
	)

	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}

		identityRepo := identitypostgres.NewRepository(pg.DB, logger)
		identity = identityservice.NewModule(identityservice.Dependencies{
			Users:      identityRepo,
			Passports:  identityRepo,
			Roles:      identityRepo,
			Clock:      identitypostgres.SystemClock{},
			IDs:        identitypostgres.UUIDGenerator{},
			Mailer:     mailer,
			Events:     publisher,
			BcryptCost: cfg.BcryptCost,
			Logger:     logger,
		})

		authzRepo := authzpostgres.NewRepository(pg.DB, logger)
		authz = authorizationservice.NewModule(authorizationservice.Dependencies{
			Routes:       authzRepo,
			Roles:        authzRepo,
			Contributors: authzRepo,
			Clock:        authzpostgres.SystemClock{},
			IDs:          authzpostgres.UUIDGenerator{},
			Logger:       logger,
		})

		articles = articleservice.NewModule(articleservice.Dependencies{
			Repo:   articlepostgres.NewRepository(pg.DB, logger),
			Clock:  articlepostgres.SystemClock{},
			IDs:    articlepostgres.UUIDGenerator{},
			Logger: logger,
		})
	} else {
		logger.Warn("no POSTGRES_DSN configured, using in-memory storage",
			"event", "bootstrap_memory_mode",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)

		identityStore := identitymemory.NewStore()
		identity = identityservice.NewModule(identityservice.Dependencies{
			Users:      identityStore,
			Passports:  identityStore,
			Roles:      identityStore,
			Clock:      identityStore,
			IDs:        identityStore,
			Mailer:     mailer,
			Events:     publisher,
			BcryptCost: cfg.BcryptCost,
			Logger:     logger,
		})
		identity.Store = identityStore

		articles = articleservice.NewInMemoryModule(logger)

		authzStore := authzmemory.NewStore()
		authz = authorizationservice.NewModule(authorizationservice.Dependencies{
			Routes:       authzStore,
			Roles:        authzStore,
			Contributors: articles.Store,
			Clock:        authzStore,
			IDs:          authzStore,
			Logger:       logger,
		})
		authz.Store = authzStore
	}

	report, err := authz.SyncRoutes.Execute(context.Background(), commands.SyncRoutesCommand{
		Declared: declaredRoutes(),
	})
	if err != nil {
		if pg != nil {
			_ = pg.Close()
		}
		return nil, fmt.Errorf("sync route registry: %w", err)
	}
	logger.Info("route registry reconciled",
		"event", "bootstrap_routes_synced",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"created", len(report.Created),
		"updated", report.Updated,
		"deleted", report.Deleted,
	)

	watchRegistrations(bus, mailer, logger)

	tokens := tokenapp.Service{
		Secret: cfg.TokenSecret,
		TTL:    cfg.TokenTTL,
		Logger: logger,
	}
	server := httpserver.New(tokens, identity, authz, articles, cfg.FrontendURL, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// declaredRoutes adapts the configured route table to the synchronizer's
// command shape.
func declaredRoutes() map[string]commands.DeclaredRoute {
	declared := make(map[string]commands.DeclaredRoute)
	for name, target := range config.Routes() {
		declared[name] = commands.DeclaredRoute{
			Controller: target.Controller,
			Action:     target.Action,
			Policies:   target.Policies,
		}
	}
	return declared
}

// watchRegistrations sends the welcome mail off the request path. A
// dropped event costs a greeting, never a registration.
func watchRegistrations(bus *messaging.Bus, mailer identityports.Mailer, logger *slog.Logger) {
	sub := bus.Subscribe(identityevents.TopicUserRegistered, 64)
	go func() {
		for envelope := range sub {
			payload, ok := envelope.Payload.(map[string]string)
			if !ok || payload["email"] == "" {
				continue
			}
			greeting := fmt.Sprintf("Welcome, %s!", payload["username"])
			if err := mailer.Send(context.Background(), identityports.Mail{
				To:      payload["email"],
				Subject: "Welcome",
				Text:    greeting,
				HTML:    greeting,
			}); err != nil {
				logger.Error("welcome mail delivery failed",
					"event", "bootstrap_welcome_mail_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"user_id", envelope.EntityID,
					"error", err.Error(),
				)
			}
		}
	}()
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
