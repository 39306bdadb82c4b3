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

// UpdateUserCommand mutates profile fields. Empty fields are left as-is;
// a supplied password is hashed before persistence unless it already is.
type UpdateUserCommand struct {
	UserID   string
	Username string
	Email    string
	Password string
}

type UpdateUserUseCase struct {
	Users  ports.UserRepository
	Hasher *services.Hasher
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u UpdateUserUseCase) Execute(ctx context.Context, cmd UpdateUserCommand) (entities.User, error) {
	if strings.TrimSpace(cmd.UserID) == "" {
		return entities.User{}, domainerrors.ErrUserNotFound
	}

	user, err := u.Users.FindByID(ctx, cmd.UserID)
	if err != nil {
		return entities.User{}, err
	}

	if username := strings.TrimSpace(cmd.Username); username != "" {
		user.Username = username
	}
	if email := strings.TrimSpace(strings.ToLower(cmd.Email)); email != "" {
		user.Email = email
	}
	if cmd.Password != "" {
		if len(cmd.Password) < 8 && !services.Hashed(cmd.Password) {
			return entities.User{}, domainerrors.ErrPasswordTooShort
		}
		hashed, err := u.Hasher.Hash(ctx, cmd.Password)
		if err != nil {
			return entities.User{}, err
		}
		user.Password = hashed
	}
	user.UpdatedAt = u.Clock.Now()

	updated, err := u.Users.Update(ctx, user)
	if err != nil {
		return entities.User{}, err
	}

	application.ResolveLogger(u.Logger).Info("user updated",
		"event", "identity_user_updated",
		"module", "identity-access/identity-service",
		"layer", "application",
		"user_id", updated.UserID,
	)
	return updated, nil
}
