package identityservice

import (
	"log/slog"

	"keystone/contexts/identity-access/identity-service/adapters/memory"
	"keystone/contexts/identity-access/identity-service/application/commands"
	"keystone/contexts/identity-access/identity-service/application/queries"
	"keystone/contexts/identity-access/identity-service/domain/services"
	"keystone/contexts/identity-access/identity-service/ports"
)

// Module is the composition surface for user and passport management.
// Store is exposed only by the in-memory bootstrap for tests/inspection.
type Module struct {
	Register       commands.RegisterUseCase
	LinkProvider   commands.LinkProviderUseCase
	ForgotPassword commands.ForgotPasswordUseCase
	ResetPassword  commands.ResetPasswordUseCase
	UpdateUser     commands.UpdateUserUseCase
	DeleteUser     commands.DeleteUserUseCase
	Authenticate   queries.AuthenticateUseCase
	GetUser        queries.GetUserUseCase
	ListUsers      queries.ListUsersUseCase
	Providers      *services.ProviderRegistry
	Store          *memory.Store
}

type Dependencies struct {
	Users      ports.UserRepository
	Passports  ports.PassportRepository
	Roles      ports.RoleDirectory
	Clock      ports.Clock
	IDs        ports.IDGenerator
	Mailer     ports.Mailer
	Events     ports.EventPublisher
	BcryptCost int
	Logger     *slog.Logger
}

// NewModule wires the identity use-cases against explicit ports.
func NewModule(deps Dependencies) Module {
	hasher := services.NewHasher(deps.BcryptCost)

	return Module{
		Register: commands.RegisterUseCase{
			Users:     deps.Users,
			Passports: deps.Passports,
			Roles:     deps.Roles,
			Hasher:    hasher,
			Clock:     deps.Clock,
			IDs:       deps.IDs,
			Events:    deps.Events,
			Logger:    deps.Logger,
		},
		LinkProvider: commands.LinkProviderUseCase{
			Users:     deps.Users,
			Passports: deps.Passports,
			Clock:     deps.Clock,
			IDs:       deps.IDs,
			Events:    deps.Events,
			Logger:    deps.Logger,
		},
		ForgotPassword: commands.ForgotPasswordUseCase{
			Users:     deps.Users,
			Passports: deps.Passports,
			Clock:     deps.Clock,
			Mailer:    deps.Mailer,
			Logger:    deps.Logger,
		},
		ResetPassword: commands.ResetPasswordUseCase{
			Users:     deps.Users,
			Passports: deps.Passports,
			Hasher:    hasher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		UpdateUser: commands.UpdateUserUseCase{
			Users:  deps.Users,
			Hasher: hasher,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		DeleteUser: commands.DeleteUserUseCase{
			Users:     deps.Users,
			Passports: deps.Passports,
			Logger:    deps.Logger,
		},
		Authenticate: queries.AuthenticateUseCase{
			Users:     deps.Users,
			Passports: deps.Passports,
			Hasher:    hasher,
			Logger:    deps.Logger,
		},
		GetUser:   queries.GetUserUseCase{Users: deps.Users},
		ListUsers: queries.ListUsersUseCase{Users: deps.Users},
		Providers: services.NewProviderRegistry(services.DefaultProviders()...),
	}
}

// NewInMemoryModule wires the use cases against the in-memory store.
func NewInMemoryModule(bcryptCost int, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Users:      store,
		Passports:  store,
		Roles:      store,
		Clock:      store,
		IDs:        store,
		Mailer:     store,
		Events:     store,
		BcryptCost: bcryptCost,
		Logger:     logger,
	})
	module.Store = store
	return module
}
