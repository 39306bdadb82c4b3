package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	application "keystone/contexts/identity-access/identity-service/application"
	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
	"keystone/contexts/identity-access/identity-service/ports"
)

// ForgotPasswordCommand starts a password reset. ResetURL is where the
// frontend handles the emailed code.
type ForgotPasswordCommand struct {
	Email    string
	ResetURL string
}

// ForgotPasswordUseCase stores a single-use reset code on the user's local
// passport and mails a reset link.
type ForgotPasswordUseCase struct {
	Users     ports.UserRepository
	Passports ports.PassportRepository
	Clock     ports.Clock
	Mailer    ports.Mailer
	Logger    *slog.Logger
}

func (u ForgotPasswordUseCase) Execute(ctx context.Context, cmd ForgotPasswordCommand) error {
	logger := application.ResolveLogger(u.Logger)

	email := strings.TrimSpace(strings.ToLower(cmd.Email))
	if email == "" {
		return domainerrors.ErrMissingIdentifier
	}

	user, err := u.Users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	passport, err := u.Passports.FindLocalByUserID(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrPassportNotFound) {
			// The account only ever logged in through a provider.
			return domainerrors.ErrNoLocalPassport
		}
		return err
	}

	code, err := randomCode()
	if err != nil {
		return err
	}
	passport.ResetCode = code
	passport.UpdatedAt = u.Clock.Now()
	if _, err := u.Passports.UpdatePassport(ctx, passport); err != nil {
		return err
	}

	link := strings.TrimRight(cmd.ResetURL, "/") + "?code=" + code
	if err := u.Mailer.Send(ctx, ports.Mail{
		To:      user.Email,
		Subject: "Reset password",
		Text:    link,
		HTML:    link,
	}); err != nil {
		logger.Error("reset mail delivery failed",
			"event", "identity_reset_mail_failed",
			"module", "identity-access/identity-service",
			"layer", "application",
			"user_id", user.UserID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("password reset requested",
		"event", "identity_password_reset_requested",
		"module", "identity-access/identity-service",
		"layer", "application",
		"user_id", user.UserID,
	)
	return nil
}

func randomCode() (string, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
