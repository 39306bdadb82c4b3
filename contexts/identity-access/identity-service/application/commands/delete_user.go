package commands

import (
	"context"
	"log/slog"
	"strings"

	application "keystone/contexts/identity-access/identity-service/application"
	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
	"keystone/contexts/identity-access/identity-service/ports"
)

type DeleteUserUseCase struct {
	Users     ports.UserRepository
	Passports ports.PassportRepository
	Logger    *slog.Logger
}

// Execute removes the user and every passport bound to it.
func (u DeleteUserUseCase) Execute(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domainerrors.ErrUserNotFound
	}
	if err := u.Passports.DeleteByUserID(ctx, userID); err != nil {
		return err
	}
	if err := u.Users.Delete(ctx, userID); err != nil {
		return err
	}
	application.ResolveLogger(u.Logger).Info("user deleted",
		"event", "identity_user_deleted",
		"module", "identity-access/identity-service",
		"layer", "application",
		"user_id", userID,
	)
	return nil
}
