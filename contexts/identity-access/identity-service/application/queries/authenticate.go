package queries

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	application "keystone/contexts/identity-access/identity-service/application"
	"keystone/contexts/identity-access/identity-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
	"keystone/contexts/identity-access/identity-service/domain/services"
	"keystone/contexts/identity-access/identity-service/ports"
)

// AuthenticateQuery validates a local login. Identifier is an email or a
// username.
type AuthenticateQuery struct {
	Identifier string
	Password   string
}

type AuthenticateUseCase struct {
	Users     ports.UserRepository
	Passports ports.PassportRepository
	Hasher    *services.Hasher
	Logger    *slog.Logger
}

func (u AuthenticateUseCase) Execute(ctx context.Context, query AuthenticateQuery) (entities.User, error) {
	logger := application.ResolveLogger(u.Logger)

	identifier := strings.TrimSpace(query.Identifier)
	if identifier == "" {
		return entities.User{}, domainerrors.ErrMissingIdentifier
	}
	if query.Password == "" {
		return entities.User{}, domainerrors.ErrMissingPassword
	}

	var (
		user entities.User
		err  error
	)
	if _, addrErr := mail.ParseAddress(identifier); addrErr == nil {
		user, err = u.Users.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = u.Users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			// Same failure for unknown identifier and bad password.
			return entities.User{}, domainerrors.ErrInvalidLogin
		}
		return entities.User{}, err
	}

	passport, err := u.Passports.FindLocalByUserID(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrPassportNotFound) {
			return entities.User{}, domainerrors.ErrNoLocalPassport
		}
		return entities.User{}, err
	}

	if !u.Hasher.Verify(ctx, query.Password, passport.Password) {
		logger.Warn("login rejected",
			"event", "identity_login_rejected",
			"module", "identity-access/identity-service",
			"layer", "application",
			"user_id", user.UserID,
		)
		return entities.User{}, domainerrors.ErrInvalidLogin
	}

	logger.Info("login accepted",
		"event", "identity_login_accepted",
		"module", "identity-access/identity-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return user, nil
}
