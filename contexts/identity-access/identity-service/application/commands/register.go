package commands

import (
	"context"
	"log/slog"
	"strings"

	application "keystone/contexts/identity-access/identity-service/application"
	"keystone/contexts/identity-access/identity-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
	"keystone/contexts/identity-access/identity-service/domain/services"
	"keystone/contexts/identity-access/identity-service/ports"
)

// RegisterCommand contains transport-agnostic input for local registration.
type RegisterCommand struct {
	Username string
	Email    string
	Password string
}

// RegisterUseCase creates a local user with a `local` passport. The very
// first account registered on an empty datastore receives the admin role.
type RegisterUseCase struct {
	Users     ports.UserRepository
	Passports ports.PassportRepository
	Roles     ports.RoleDirectory
	Hasher    *services.Hasher
	Clock     ports.Clock
	IDs       ports.IDGenerator
	Events    ports.EventPublisher
	Logger    *slog.Logger
}

func (u RegisterUseCase) Execute(ctx context.Context, cmd RegisterCommand) (entities.User, error) {
	logger := application.ResolveLogger(u.Logger)

	cmd.Username = strings.TrimSpace(cmd.Username)
	cmd.Email = strings.TrimSpace(strings.ToLower(cmd.Email))
	if cmd.Username == "" && cmd.Email == "" {
		return entities.User{}, domainerrors.ErrMissingIdentifier
	}
	if cmd.Password == "" {
		return entities.User{}, domainerrors.ErrMissingPassword
	}
	if len(cmd.Password) < 8 {
		return entities.User{}, domainerrors.ErrPasswordTooShort
	}

	// Counted before the insert so only the first registration can win
	// the admin role.
	usersCount, err := u.Users.Count(ctx)
	if err != nil {
		return entities.User{}, err
	}

	hashed, err := u.Hasher.Hash(ctx, cmd.Password)
	if err != nil {
		return entities.User{}, err
	}

	userID, err := u.IDs.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}
	now := u.Clock.Now()
	user, err := u.Users.Create(ctx, entities.User{
		UserID:    userID,
		Username:  cmd.Username,
		Email:     cmd.Email,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return entities.User{}, err
	}

	passportID, err := u.IDs.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}
	if _, err := u.Passports.CreatePassport(ctx, entities.Passport{
		PassportID: passportID,
		Protocol:   entities.ProtocolLocal,
		Password:   hashed,
		UserID:     user.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		// Keep user and passport creation atomic from the caller's view.
		if destroyErr := u.Users.Delete(ctx, user.UserID); destroyErr != nil {
			logger.Error("register rollback failed",
				"event", "identity_register_rollback_failed",
				"module", "identity-access/identity-service",
				"layer", "application",
				"user_id", user.UserID,
				"error", destroyErr.Error(),
			)
		}
		return entities.User{}, err
	}

	if usersCount == 0 {
		adminRole, err := u.Roles.FindRoleByName(ctx, "admin")
		if err != nil {
			return entities.User{}, err
		}
		if err := u.Users.AssignRole(ctx, user.UserID, adminRole.RoleID); err != nil {
			return entities.User{}, err
		}
		logger.Info("first user granted admin",
			"event", "identity_first_user_admin",
			"module", "identity-access/identity-service",
			"layer", "application",
			"user_id", user.UserID,
		)
	}

	user, err = u.Users.FindByID(ctx, user.UserID)
	if err != nil {
		return entities.User{}, err
	}

	eventID, err := u.IDs.NewID(ctx)
	if err == nil && u.Events != nil {
		_ = u.Events.PublishUserRegistered(ctx, ports.UserRegisteredEvent{
			EventID:    eventID,
			UserID:     user.UserID,
			Username:   user.Username,
			Email:      user.Email,
			Provider:   entities.ProtocolLocal,
			OccurredAt: now,
		})
	}

	logger.Info("user registered",
		"event", "identity_user_registered",
		"module", "identity-access/identity-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return user, nil
}
