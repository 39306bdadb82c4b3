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

// ResetPasswordCommand completes a reset started by ForgotPassword. The
// code is single use and cleared on success.
type ResetPasswordCommand struct {
	Password             string
	PasswordConfirmation string
	Code                 string
}

type ResetPasswordUseCase struct {
	Users     ports.UserRepository
	Passports ports.PassportRepository
	Hasher    *services.Hasher
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (u ResetPasswordUseCase) Execute(ctx context.Context, cmd ResetPasswordCommand) (entities.User, error) {
	logger := application.ResolveLogger(u.Logger)

	if cmd.Password == "" {
		return entities.User{}, domainerrors.ErrMissingPassword
	}
	if cmd.Password != cmd.PasswordConfirmation {
		return entities.User{}, domainerrors.ErrPasswordMismatch
	}
	if len(cmd.Password) < 8 {
		return entities.User{}, domainerrors.ErrPasswordTooShort
	}
	if strings.TrimSpace(cmd.Code) == "" {
		return entities.User{}, domainerrors.ErrInvalidResetCode
	}

	passport, err := u.Passports.FindByResetCode(ctx, strings.TrimSpace(cmd.Code))
	if err != nil {
		return entities.User{}, domainerrors.ErrInvalidResetCode
	}

	hashed, err := u.Hasher.Hash(ctx, cmd.Password)
	if err != nil {
		return entities.User{}, err
	}

	now := u.Clock.Now()
	passport.Password = hashed
	passport.ResetCode = ""
	passport.UpdatedAt = now
	if _, err := u.Passports.UpdatePassport(ctx, passport); err != nil {
		return entities.User{}, err
	}

	user, err := u.Users.FindByID(ctx, passport.UserID)
	if err != nil {
		return entities.User{}, err
	}
	user.Password = hashed
	user.UpdatedAt = now
	if _, err := u.Users.Update(ctx, user); err != nil {
		return entities.User{}, err
	}

	logger.Info("password reset completed",
		"event", "identity_password_reset_completed",
		"module", "identity-access/identity-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return user, nil
}
